package parser

import "errors"

var (
	// ErrUnknownSourceKind indicates an unrecognized payload format.
	ErrUnknownSourceKind = errors.New("unknown source kind")

	// ErrMalformedPayload indicates a payload that could not be decoded at all.
	// Individual malformed rows never produce this; only a payload whose
	// envelope (CSV structure, JSON syntax) is broken does.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Skip reasons recorded on the job's skipped-details histogram.
const (
	// ReasonKeywordMismatch marks rows whose content matched none of the
	// job's filter keywords.
	ReasonKeywordMismatch = "Keyword Mismatch"

	// ReasonDuplicateID marks rows whose external id or key already exists
	// for the same (environment, type).
	ReasonDuplicateID = "Duplicate ID"
)
