package fetch

import (
	"errors"
	"fmt"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// RateLimitError signals sustained throttling that rotation could not
// absorb. Adapters catching it save their checkpoint and end the sweep
// early so a later scheduled run can resume.
type RateLimitError struct {
	// URL is the request that was throttled, with any key redacted.
	URL string

	// Consecutive is how many 429s were seen in a row.
	Consecutive int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("fetch: rate limit exceeded after %d consecutive 429s (%s)", e.Consecutive, e.URL)
}

// Unwrap lets errors.Is(err, domain.ErrRateLimited) match.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// IsRateLimited reports whether the error chain contains a rate limit
// signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
