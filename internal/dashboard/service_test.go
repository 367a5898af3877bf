package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
	"github.com/tablescope/tablescope/internal/metrics"
	"github.com/tablescope/tablescope/internal/sentiment"
	"github.com/tablescope/tablescope/internal/serpapi"
)

// fakeFetcher returns a canned result or error and records the last query.
type fakeFetcher struct {
	result *serpapi.FetchResult
	err    error
	lastQ  serpapi.FetchQuery
	calls  int
}

func (f *fakeFetcher) FetchReviews(_ context.Context, q serpapi.FetchQuery) (*serpapi.FetchResult, error) {
	f.lastQ = q
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testRecords() []v1.ReviewRecord {
	posted := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	return []v1.ReviewRecord{
		{ID: "r1", Rating: 5, Text: "Amazing food, highly recommend", PostedAt: posted, HelpfulVotes: 2},
		{ID: "r2", Rating: 5, Text: "Great service", PostedAt: posted.AddDate(0, 0, 1)},
		{ID: "r3", Rating: 1, Text: "Terrible, avoid this place", PostedAt: posted.AddDate(0, 1, 0)},
	}
}

func newTestService(f Fetcher) *Service {
	return NewService(f, sentiment.NewClassifier(nil), 1000)
}

func TestGetReviews_ReturnsPage(t *testing.T) {
	fetcher := &fakeFetcher{result: &serpapi.FetchResult{
		Reviews:      testRecords(),
		TotalResults: 3,
		PlaceInfo:    map[string]interface{}{"name": "Chez Test"},
	}}

	page, err := newTestService(fetcher).GetReviews(context.Background(), PageQuery{Start: 10, Num: 50})
	require.NoError(t, err)

	require.Equal(t, serpapi.FetchQuery{Start: 10, Num: 50}, fetcher.lastQ)
	require.Len(t, page.Reviews, 3)
	require.Equal(t, Pagination{Start: 10, Requested: 50, Returned: 3}, page.Pagination)
	require.Equal(t, "Chez Test", page.PlaceInfo["name"])
}

func TestGetReviews_ValidatesPageQuery(t *testing.T) {
	svc := newTestService(&fakeFetcher{result: &serpapi.FetchResult{}})

	_, err := svc.GetReviews(context.Background(), PageQuery{Start: -1, Num: 10})
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.GetReviews(context.Background(), PageQuery{Start: 0, Num: 0})
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.GetReviews(context.Background(), PageQuery{Start: 0, Num: 1001})
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestGetMetrics_EmptyFetchYieldsEmptySummary(t *testing.T) {
	// A fetch that succeeds with zero records is "no data yet", not an
	// error: the summary comes back valid with count 0.
	svc := newTestService(&fakeFetcher{result: &serpapi.FetchResult{}})

	summary, err := svc.GetMetrics(context.Background(), MetricsQuery{
		PageQuery:   PageQuery{Num: 100},
		Granularity: "monthly",
	})
	require.NoError(t, err)
	require.Equal(t, 0, summary.TotalReviews)
	require.Equal(t, float64(0), summary.AverageRating)
	require.Len(t, summary.RatingDistribution, 5)
}

func TestGetMetrics_PropagatesFetchErrors(t *testing.T) {
	svc := newTestService(&fakeFetcher{err: serpapi.ErrNotFound})

	_, err := svc.GetMetrics(context.Background(), MetricsQuery{
		PageQuery:   PageQuery{Num: 100},
		Granularity: "monthly",
	})
	require.ErrorIs(t, err, serpapi.ErrNotFound)
}

func TestGetMetrics_RejectsUnknownGranularityBeforeFetching(t *testing.T) {
	fetcher := &fakeFetcher{result: &serpapi.FetchResult{}}
	svc := newTestService(fetcher)

	_, err := svc.GetMetrics(context.Background(), MetricsQuery{
		PageQuery:   PageQuery{Num: 100},
		Granularity: "hourly",
	})
	require.ErrorIs(t, err, metrics.ErrInvalidGranularity)
	require.Zero(t, fetcher.calls, "validation failures must not hit the upstream API")
}

func TestGetSentiment_ClassifiesBatch(t *testing.T) {
	svc := newTestService(&fakeFetcher{result: &serpapi.FetchResult{Reviews: testRecords()}})

	batch, err := svc.GetSentiment(context.Background(), PageQuery{Num: 100})
	require.NoError(t, err)
	require.Equal(t, 3, batch.TotalReviews)
	require.Equal(t, 2, batch.Counts[sentiment.LabelPositive])
	require.Equal(t, 1, batch.Counts[sentiment.LabelNegative])
}

func TestGetOverview_SingleFetchBothSummaries(t *testing.T) {
	fetcher := &fakeFetcher{result: &serpapi.FetchResult{Reviews: testRecords()}}
	svc := newTestService(fetcher)

	overview, err := svc.GetOverview(context.Background(), MetricsQuery{
		PageQuery:   PageQuery{Num: 100},
		Granularity: "monthly",
	})
	require.NoError(t, err)

	require.Equal(t, 1, fetcher.calls, "overview must fetch once and share the batch")
	require.NotNil(t, overview.Metrics)
	require.NotNil(t, overview.Sentiment)
	require.Equal(t, 3, overview.Metrics.TotalReviews)
	require.Equal(t, 3, overview.Sentiment.TotalReviews)

	// Star rating and sentiment are distinct measurements: 2-of-3
	// positive reviews is not the same ratio as the 3.67 mean rating.
	require.InDelta(t, 3.67, overview.Metrics.AverageRating, 0.01)
	require.InDelta(t, 66.7, overview.Sentiment.Percentages[sentiment.LabelPositive], 0.1)
}

func TestService_NoStateLeaksBetweenCalls(t *testing.T) {
	svc := newTestService(&fakeFetcher{result: &serpapi.FetchResult{Reviews: testRecords()}})

	first, err := svc.GetMetrics(context.Background(), MetricsQuery{
		PageQuery: PageQuery{Num: 100}, Granularity: "monthly",
	})
	require.NoError(t, err)

	second, err := svc.GetMetrics(context.Background(), MetricsQuery{
		PageQuery: PageQuery{Num: 100}, Granularity: "monthly",
	})
	require.NoError(t, err)

	require.Equal(t, first, second)

	// Mutating a returned summary must not affect later responses.
	first.RatingDistribution[5] = 999
	third, err := svc.GetMetrics(context.Background(), MetricsQuery{
		PageQuery: PageQuery{Num: 100}, Granularity: "monthly",
	})
	require.NoError(t, err)
	require.Equal(t, second, third)
}

func TestGetOverview_ValidationErrors(t *testing.T) {
	svc := newTestService(&fakeFetcher{result: &serpapi.FetchResult{}})

	_, err := svc.GetOverview(context.Background(), MetricsQuery{
		PageQuery: PageQuery{Num: 100}, Granularity: "yearly",
	})
	require.ErrorIs(t, err, metrics.ErrInvalidGranularity)

	_, err = svc.GetOverview(context.Background(), MetricsQuery{
		PageQuery: PageQuery{Start: -5, Num: 100}, Granularity: "daily",
	})
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestGetSentiment_PropagatesNetworkError(t *testing.T) {
	wrapped := errors.Join(serpapi.ErrNetwork)
	svc := newTestService(&fakeFetcher{err: wrapped})

	_, err := svc.GetSentiment(context.Background(), PageQuery{Num: 100})
	require.ErrorIs(t, err, serpapi.ErrNetwork)
}
