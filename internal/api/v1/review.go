package v1

import (
	"fmt"
	"strings"
	"time"
)

// Rating bounds for a single review. The upstream API reports star
// ratings on a fixed 1-5 scale; anything outside is a malformed entry.
const (
	MinRating = 1
	MaxRating = 5
)

// ReviewRecord is the atomic unit of the system: one customer review,
// normalized from the upstream search API response.
//
// Records are immutable once constructed and scoped to the fetch batch
// they arrived in. They carry no identity beyond that batch; nothing
// is persisted between requests.
type ReviewRecord struct {
	// ID is unique within a fetch batch. The upstream API does not
	// always provide one; the fetcher generates a fallback when absent.
	ID string `json:"id"`

	// Rating is the integer star rating, always in [MinRating, MaxRating].
	// Entries outside the range are rejected at ingestion, so consumers
	// may assume it is valid.
	Rating int `json:"rating"`

	// Text is the free-form review body. May be empty.
	Text string `json:"text"`

	// Author is the reviewer's display name. Defaults to "Anonymous".
	Author string `json:"author"`

	// PostedAt is when the review was written (date granularity is
	// sufficient). Used only for time bucketing; need not be unique
	// or ordered within a batch.
	PostedAt time.Time `json:"posted_at"`

	// HelpfulVotes is the upstream helpfulness count, never negative.
	HelpfulVotes int `json:"helpful_votes"`
}

// Validate ensures the record is well-formed for aggregation.
func (r *ReviewRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("id is required")
	}

	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("rating %d out of range [%d,%d]", r.Rating, MinRating, MaxRating)
	}

	if r.PostedAt.IsZero() {
		return fmt.Errorf("posted_at is required")
	}

	if r.HelpfulVotes < 0 {
		return fmt.Errorf("helpful_votes must not be negative")
	}

	return nil
}
