package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
	"github.com/tablescope/tablescope/internal/metrics"
	"github.com/tablescope/tablescope/internal/sentiment"
	"github.com/tablescope/tablescope/internal/serpapi"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid dashboard query")

// Fetcher is the upstream review source. Satisfied by *serpapi.Client.
type Fetcher interface {
	FetchReviews(ctx context.Context, q serpapi.FetchQuery) (*serpapi.FetchResult, error)
}

// Service implements the dashboard read operations. It is stateless
// across requests: every call fetches its own batch, computes fresh
// output, and shares nothing with concurrent calls.
type Service struct {
	fetcher     Fetcher
	classifier  *sentiment.Classifier
	maxPageSize int
	nowFn       func() time.Time
}

func NewService(fetcher Fetcher, classifier *sentiment.Classifier, maxPageSize int) *Service {
	return &Service{
		fetcher:     fetcher,
		classifier:  classifier,
		maxPageSize: maxPageSize,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// PageQuery selects a window of reviews from the upstream API.
type PageQuery struct {
	Start int
	Num   int
}

// MetricsQuery adds the trend granularity to a page selection.
type MetricsQuery struct {
	PageQuery
	Granularity string
}

// Pagination echoes the requested window and what actually came back.
type Pagination struct {
	Start     int `json:"start"`
	Requested int `json:"requested"`
	Returned  int `json:"returned"`
}

// ReviewsPage is the raw-review read result.
type ReviewsPage struct {
	Reviews      []v1.ReviewRecord      `json:"reviews"`
	PlaceInfo    map[string]interface{} `json:"place_info,omitempty"`
	TotalResults int                    `json:"total_results"`
	Pagination   Pagination             `json:"pagination"`
}

// Overview is the combined dashboard tile payload. AverageRating (in
// Metrics) and the sentiment percentages are distinct measurements;
// one is not derived from the other.
type Overview struct {
	Metrics   *metrics.Summary       `json:"metrics"`
	Sentiment *sentiment.BatchResult `json:"sentiment"`
	PlaceInfo map[string]interface{} `json:"place_info,omitempty"`
}

func (q PageQuery) validate(maxPageSize int) error {
	if q.Start < 0 {
		return fmt.Errorf("%w: start must be non-negative", ErrInvalidQuery)
	}
	if q.Num < 1 || q.Num > maxPageSize {
		return fmt.Errorf("%w: num must be between 1 and %d", ErrInvalidQuery, maxPageSize)
	}
	return nil
}

// GetReviews returns one page of raw review records.
func (s *Service) GetReviews(ctx context.Context, q PageQuery) (*ReviewsPage, error) {
	if err := q.validate(s.maxPageSize); err != nil {
		return nil, err
	}

	result, err := s.fetcher.FetchReviews(ctx, serpapi.FetchQuery{Start: q.Start, Num: q.Num})
	if err != nil {
		return nil, err
	}

	return &ReviewsPage{
		Reviews:      result.Reviews,
		PlaceInfo:    result.PlaceInfo,
		TotalResults: result.TotalResults,
		Pagination: Pagination{
			Start:     q.Start,
			Requested: q.Num,
			Returned:  len(result.Reviews),
		},
	}, nil
}

// GetMetrics fetches a batch and computes aggregate rating metrics.
// A successful fetch of zero records yields an empty-but-valid summary
// (count 0), not an error.
func (s *Service) GetMetrics(ctx context.Context, q MetricsQuery) (*metrics.Summary, error) {
	granularity, err := metrics.ParseGranularity(q.Granularity)
	if err != nil {
		return nil, err
	}
	if err := q.validate(s.maxPageSize); err != nil {
		return nil, err
	}

	result, err := s.fetcher.FetchReviews(ctx, serpapi.FetchQuery{Start: q.Start, Num: q.Num})
	if err != nil {
		return nil, err
	}

	summary, err := metrics.Summarize(result.Reviews, granularity)
	if err != nil {
		return nil, err
	}

	slog.Info("Computed metrics summary",
		"reviews", summary.TotalReviews,
		"granularity", granularity,
		"trend_buckets", len(summary.Trend),
	)
	return summary, nil
}

// GetSentiment fetches a batch and classifies every review.
func (s *Service) GetSentiment(ctx context.Context, q PageQuery) (*sentiment.BatchResult, error) {
	if err := q.validate(s.maxPageSize); err != nil {
		return nil, err
	}

	result, err := s.fetcher.FetchReviews(ctx, serpapi.FetchQuery{Start: q.Start, Num: q.Num})
	if err != nil {
		return nil, err
	}

	return s.classifier.AnalyzeBatch(result.Reviews), nil
}

// GetOverview fetches once and computes metrics and sentiment from the
// same batch. The two computations are pure and independent, so they
// run in parallel.
func (s *Service) GetOverview(ctx context.Context, q MetricsQuery) (*Overview, error) {
	granularity, err := metrics.ParseGranularity(q.Granularity)
	if err != nil {
		return nil, err
	}
	if err := q.validate(s.maxPageSize); err != nil {
		return nil, err
	}

	result, err := s.fetcher.FetchReviews(ctx, serpapi.FetchQuery{Start: q.Start, Num: q.Num})
	if err != nil {
		return nil, err
	}

	overview := &Overview{PlaceInfo: result.PlaceInfo}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := metrics.Summarize(result.Reviews, granularity)
		if err != nil {
			return err
		}
		overview.Metrics = summary
		return nil
	})
	g.Go(func() error {
		overview.Sentiment = s.classifier.AnalyzeBatch(result.Reviews)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return overview, nil
}
