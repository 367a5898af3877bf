package sentiment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
)

func TestSummarize_EmptyBatchIsAllZeros(t *testing.T) {
	b := Summarize(nil)

	require.Equal(t, 0, b.TotalReviews)
	for _, label := range []Label{LabelPositive, LabelNegative, LabelNeutral} {
		require.Contains(t, b.Counts, label)
		require.Contains(t, b.Percentages, label)
		require.Equal(t, 0, b.Counts[label])
		require.Equal(t, float64(0), b.Percentages[label])
	}
}

func TestSummarize_PercentagesSumToHundred(t *testing.T) {
	tests := []struct {
		name   string
		labels []Label
	}{
		{
			name:   "mixed batch",
			labels: []Label{LabelPositive, LabelPositive, LabelNegative, LabelNeutral},
		},
		{
			name:   "single label",
			labels: []Label{LabelNegative},
		},
		{
			name: "thirds do not divide evenly",
			labels: []Label{
				LabelPositive, LabelNegative, LabelNeutral,
				LabelPositive, LabelNegative, LabelNeutral,
				LabelPositive,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := Summarize(tc.labels)

			sum := b.Percentages[LabelPositive] + b.Percentages[LabelNegative] + b.Percentages[LabelNeutral]
			require.InDelta(t, 100.0, sum, 0.2)

			countSum := b.Counts[LabelPositive] + b.Counts[LabelNegative] + b.Counts[LabelNeutral]
			require.Equal(t, len(tc.labels), countSum)
		})
	}
}

func TestSummarize_CountsMatchLabels(t *testing.T) {
	labels := []Label{LabelPositive, LabelPositive, LabelPositive, LabelNegative}
	b := Summarize(labels)

	require.Equal(t, 4, b.TotalReviews)
	require.Equal(t, 3, b.Counts[LabelPositive])
	require.Equal(t, 1, b.Counts[LabelNegative])
	require.Equal(t, 0, b.Counts[LabelNeutral])
	require.InDelta(t, 75.0, b.Percentages[LabelPositive], 0.01)
	require.InDelta(t, 25.0, b.Percentages[LabelNegative], 0.01)
}

func TestAnalyzeBatch_EveryRecordGetsOneLabel(t *testing.T) {
	c := NewClassifier(nil)
	posted := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []v1.ReviewRecord{
		{ID: "r1", Rating: 5, Text: "Amazing food, highly recommend", PostedAt: posted},
		{ID: "r2", Rating: 1, Text: "Awful experience, rude staff", PostedAt: posted},
		{ID: "r3", Rating: 3, Text: "", PostedAt: posted},
	}

	batch := c.AnalyzeBatch(records)

	require.Equal(t, 3, batch.TotalReviews)
	countSum := batch.Counts[LabelPositive] + batch.Counts[LabelNegative] + batch.Counts[LabelNeutral]
	require.Equal(t, len(records), countSum, "empty text is labeled neutral, never dropped")
	require.Equal(t, 1, batch.Counts[LabelNeutral])
	require.Greater(t, batch.AverageConfidence, 0.0)
	require.NotEmpty(t, batch.Summary)
}

func TestAnalyzeBatch_EmptyBatch(t *testing.T) {
	c := NewClassifier(nil)
	batch := c.AnalyzeBatch(nil)

	require.Equal(t, 0, batch.TotalReviews)
	require.Equal(t, float64(0), batch.AverageConfidence)
	require.Equal(t, ConfidenceRange{}, batch.ConfidenceRange)
	require.Empty(t, batch.Reviews)
	require.Equal(t, "No reviews to analyze", batch.Summary)
}

func TestAnalyzeBatch_AttachesPerReviewSentiment(t *testing.T) {
	c := NewClassifier(nil)
	posted := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []v1.ReviewRecord{
		{ID: "r1", Rating: 5, Text: "Amazing food, highly recommend", PostedAt: posted},
		{ID: "r2", Rating: 1, Text: "Awful experience, rude staff", PostedAt: posted},
	}

	batch := c.AnalyzeBatch(records)

	require.Len(t, batch.Reviews, len(records))
	require.Equal(t, "r1", batch.Reviews[0].ReviewID)
	require.Equal(t, LabelPositive, batch.Reviews[0].Label)
	require.Equal(t, "r2", batch.Reviews[1].ReviewID)
	require.Equal(t, LabelNegative, batch.Reviews[1].Label)

	for _, rs := range batch.Reviews {
		require.Greater(t, rs.Confidence, 0.0)
		require.LessOrEqual(t, rs.Confidence, 0.95)
	}
	require.Greater(t, batch.Reviews[0].PositiveScore, batch.Reviews[0].NegativeScore)
	require.Greater(t, batch.Reviews[1].NegativeScore, batch.Reviews[1].PositiveScore)
}

func TestAnalyzeBatch_ConfidenceRange(t *testing.T) {
	c := NewClassifier(nil)
	posted := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []v1.ReviewRecord{
		{ID: "r1", Rating: 5, Text: "Absolutely amazing, excellent and delicious, highly recommend", PostedAt: posted},
		{ID: "r2", Rating: 3, Text: "", PostedAt: posted},
	}

	batch := c.AnalyzeBatch(records)

	// Empty text is the weakest classification in the batch.
	require.Equal(t, 0.3, batch.ConfidenceRange.Min)
	require.Greater(t, batch.ConfidenceRange.Max, batch.ConfidenceRange.Min)
	require.GreaterOrEqual(t, batch.AverageConfidence, batch.ConfidenceRange.Min)
	require.LessOrEqual(t, batch.AverageConfidence, batch.ConfidenceRange.Max)
}
