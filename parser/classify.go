package parser

import (
	"strings"

	"github.com/sievedata/sieve/core"
)

// ratingFields is the prioritized list of known rating/label columns.
var ratingFields = []string{
	"quality_rating",
	"rating",
	"category",
	"label",
	"score",
	"avg_score",
}

// Classify buckets a row into a quality category from whatever rating
// signal it carries.
//
// Textual labels are checked first: anything naming the top or bottom
// decile ("top 10", "selected", "rejected") wins outright. Numeric values
// are interpreted on two scales: values at most 1 are read as a 0..1
// fraction (above 0.8 is top, below 0.2 is bottom), larger values as a
// 5-point rating (4 and up is top, 2 and down is bottom). Rows with no
// recognizable signal are standard.
func Classify(row Row) core.Category {
	for _, field := range candidateRatingFields(row) {
		value, ok := row[field]
		if !ok {
			continue
		}

		if s, isString := value.(string); isString {
			if cat, matched := classifyLabel(s); matched {
				return cat
			}
		}

		if f, isNum := floatValue(value); isNum {
			return classifyNumeric(f)
		}
	}
	return core.CategoryStandard
}

// candidateRatingFields returns the known rating columns followed by any
// other column whose name mentions a rating or score.
func candidateRatingFields(row Row) []string {
	fields := make([]string, 0, len(ratingFields))
	fields = append(fields, ratingFields...)

	known := make(map[string]bool, len(ratingFields))
	for _, field := range ratingFields {
		known[field] = true
	}

	for key := range row {
		if known[key] {
			continue
		}
		lowered := strings.ToLower(key)
		if strings.Contains(lowered, "rating") || strings.Contains(lowered, "score") {
			fields = append(fields, key)
		}
	}
	return fields
}

func classifyLabel(label string) (core.Category, bool) {
	lowered := strings.ToLower(strings.TrimSpace(label))
	if lowered == "" {
		return core.CategoryStandard, false
	}

	switch {
	case strings.Contains(lowered, "top") && strings.Contains(lowered, "10"),
		strings.Contains(lowered, "selected"),
		strings.Contains(lowered, "better"):
		return core.CategoryTop10, true
	case strings.Contains(lowered, "bottom") && strings.Contains(lowered, "10"),
		strings.Contains(lowered, "rejected"),
		strings.Contains(lowered, "worse"):
		return core.CategoryBottom10, true
	}
	return core.CategoryStandard, false
}

func classifyNumeric(value float64) core.Category {
	if value < 0 {
		return core.CategoryStandard
	}

	// Fractional scores sit on a 0..1 scale, everything else is treated as
	// the common 5-point rating.
	if value <= 1 {
		switch {
		case value > 0.8:
			return core.CategoryTop10
		case value < 0.2:
			return core.CategoryBottom10
		default:
			return core.CategoryStandard
		}
	}

	switch {
	case value >= 4:
		return core.CategoryTop10
	case value <= 2:
		return core.CategoryBottom10
	default:
		return core.CategoryStandard
	}
}
