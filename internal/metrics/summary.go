package metrics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
)

// Granularity is the time-bucket width used for trend computation.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// ErrInvalidGranularity marks a caller-supplied granularity outside the
// allowed set. It is the only failure mode of this package: summaries
// over well-typed records never fail.
var ErrInvalidGranularity = errors.New("metrics: invalid granularity")

// ParseGranularity validates a raw granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("%w: %q (must be daily, weekly, or monthly)", ErrInvalidGranularity, s)
	}
}

// DateRange is the observed timestamp span of a batch.
type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// TrendPoint is one time bucket of the trend series. Empty buckets are
// emitted explicitly with ReviewCount 0 and AverageRating 0 so callers
// get a gap-free series for charting.
type TrendPoint struct {
	BucketLabel        string      `json:"bucket"`
	BucketStart        time.Time   `json:"bucket_start"`
	AverageRating      float64     `json:"average_rating"`
	ReviewCount        int         `json:"review_count"`
	RatingDistribution map[int]int `json:"rating_distribution"`
	HelpfulVotes       int         `json:"helpful_votes"`
}

// Summary is the derived metrics object. Regenerated on every request,
// never mutated after construction.
type Summary struct {
	AverageRating      float64      `json:"average_rating"`
	MedianRating       float64      `json:"median_rating"`
	TotalReviews       int          `json:"total_reviews"`
	TotalHelpfulVotes  int          `json:"total_helpful_votes"`
	RatingDistribution map[int]int  `json:"rating_distribution"`
	DateRange          *DateRange   `json:"date_range,omitempty"`
	Granularity        Granularity  `json:"granularity"`
	Trend              []TrendPoint `json:"trend"`
	Themes             []Theme      `json:"themes"`
}

// Summarize computes aggregate statistics over a batch of records.
// Records may be empty; the empty set yields a zeroed summary with all
// distribution keys present, not an error and not NaN.
func Summarize(records []v1.ReviewRecord, granularity Granularity) (*Summary, error) {
	if _, err := ParseGranularity(string(granularity)); err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalReviews:       len(records),
		RatingDistribution: newDistribution(),
		Granularity:        granularity,
		Trend:              []TrendPoint{},
		Themes:             ExtractThemes(records),
	}
	if len(records) == 0 {
		return summary, nil
	}

	ratings := make([]int, 0, len(records))
	sum := decimal.Zero
	for _, r := range records {
		ratings = append(ratings, r.Rating)
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
		summary.RatingDistribution[r.Rating]++
		summary.TotalHelpfulVotes += r.HelpfulVotes
	}

	summary.AverageRating = meanOf(sum, len(records))
	summary.MedianRating = medianOf(ratings)
	summary.DateRange = dateRangeOf(records)
	summary.Trend = buildTrend(records, granularity)

	return summary, nil
}

// newDistribution returns a star-count map with all five keys present.
func newDistribution() map[int]int {
	dist := make(map[int]int, v1.MaxRating)
	for star := v1.MinRating; star <= v1.MaxRating; star++ {
		dist[star] = 0
	}
	return dist
}

// meanOf divides with decimal arithmetic and rounds to 2 places.
// A zero count is defined as 0, never a division error.
func meanOf(sum decimal.Decimal, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(int64(count))).Round(2).InexactFloat64()
}

func medianOf(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}

	sorted := make([]int, len(ratings))
	copy(sorted, ratings)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return decimal.NewFromInt(int64(sorted[mid-1] + sorted[mid])).
		Div(decimal.NewFromInt(2)).
		InexactFloat64()
}

func dateRangeOf(records []v1.ReviewRecord) *DateRange {
	dr := &DateRange{Earliest: records[0].PostedAt, Latest: records[0].PostedAt}
	for _, r := range records[1:] {
		if r.PostedAt.Before(dr.Earliest) {
			dr.Earliest = r.PostedAt
		}
		if r.PostedAt.After(dr.Latest) {
			dr.Latest = r.PostedAt
		}
	}
	return dr
}
