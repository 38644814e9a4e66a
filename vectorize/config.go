package vectorize

import "time"

// Config holds configuration for the embedding backfill worker.
type Config struct {
	// BatchSize is the number of records embedded per API call.
	BatchSize int

	// MaxAttempts is the number of embed attempts a record gets before it is
	// permanently annotated and excluded from further scans.
	MaxAttempts int

	// FailureBackoff is the pause after a batch in which every record failed.
	FailureBackoff time.Duration

	// EmbedTimeout bounds a single embedding API call.
	EmbedTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      50,
		MaxAttempts:    3,
		FailureBackoff: 2 * time.Second,
		EmbedTimeout:   60 * time.Second,
	}
}
