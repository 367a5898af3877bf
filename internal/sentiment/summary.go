package sentiment

import (
	"fmt"

	"github.com/shopspring/decimal"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
)

// Breakdown reduces a batch of labels to counts and percentage shares.
// All three label keys are always present. Percentages sum to ~100 for
// a non-empty batch and are all 0 for an empty one.
type Breakdown struct {
	TotalReviews int               `json:"total_reviews"`
	Counts       map[Label]int     `json:"counts"`
	Percentages  map[Label]float64 `json:"percentages"`
}

// ReviewSentiment attaches a classification to the review it came from.
type ReviewSentiment struct {
	ReviewID      string  `json:"review_id"`
	Label         Label   `json:"label"`
	Confidence    float64 `json:"confidence"`
	PositiveScore float64 `json:"positive_score"`
	NegativeScore float64 `json:"negative_score"`
}

// ConfidenceRange is the spread of confidence values seen across a
// batch. Both bounds are 0 for an empty batch.
type ConfidenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// BatchResult is a Breakdown plus the per-review classifications and
// their confidence statistics.
type BatchResult struct {
	Breakdown
	AverageConfidence float64           `json:"average_confidence"`
	ConfidenceRange   ConfidenceRange   `json:"confidence_range"`
	Reviews           []ReviewSentiment `json:"reviews"`
	Summary           string            `json:"summary"`
}

var allLabels = []Label{LabelPositive, LabelNegative, LabelNeutral}

// Summarize reduces labels to a percentage breakdown. An empty batch
// yields zeros for every category, not a division error.
func Summarize(labels []Label) Breakdown {
	b := Breakdown{
		TotalReviews: len(labels),
		Counts:       make(map[Label]int, len(allLabels)),
		Percentages:  make(map[Label]float64, len(allLabels)),
	}
	for _, label := range allLabels {
		b.Counts[label] = 0
		b.Percentages[label] = 0
	}

	for _, label := range labels {
		b.Counts[label]++
	}

	if b.TotalReviews == 0 {
		return b
	}

	total := decimal.NewFromInt(int64(b.TotalReviews))
	for _, label := range allLabels {
		b.Percentages[label] = decimal.NewFromInt(int64(b.Counts[label] * 100)).
			Div(total).
			Round(1).
			InexactFloat64()
	}

	return b
}

// AnalyzeBatch classifies every record in the batch and reduces the
// labels to a breakdown. Every record yields exactly one label: empty
// text classifies as neutral rather than being dropped, so the counts
// always sum to the batch size.
func (c *Classifier) AnalyzeBatch(records []v1.ReviewRecord) *BatchResult {
	labels := make([]Label, 0, len(records))
	reviews := make([]ReviewSentiment, 0, len(records))
	confidenceSum := 0.0
	var confRange ConfidenceRange
	for i, r := range records {
		result := c.Analyze(r.Text)
		labels = append(labels, result.Label)
		confidenceSum += result.Confidence
		if i == 0 || result.Confidence < confRange.Min {
			confRange.Min = result.Confidence
		}
		if result.Confidence > confRange.Max {
			confRange.Max = result.Confidence
		}
		reviews = append(reviews, ReviewSentiment{
			ReviewID:      r.ID,
			Label:         result.Label,
			Confidence:    result.Confidence,
			PositiveScore: result.PositiveScore,
			NegativeScore: result.NegativeScore,
		})
	}

	batch := &BatchResult{
		Breakdown:       Summarize(labels),
		ConfidenceRange: confRange,
		Reviews:         reviews,
	}
	if len(records) > 0 {
		batch.AverageConfidence = decimal.NewFromFloat(confidenceSum).
			Div(decimal.NewFromInt(int64(len(records)))).
			Round(3).
			InexactFloat64()
	}
	batch.Summary = summarizeDominant(batch.Breakdown)

	return batch
}

func summarizeDominant(b Breakdown) string {
	if b.TotalReviews == 0 {
		return "No reviews to analyze"
	}

	dominant := LabelNeutral
	if b.Counts[LabelPositive] > b.Counts[LabelNegative] && b.Counts[LabelPositive] > b.Counts[LabelNeutral] {
		dominant = LabelPositive
	} else if b.Counts[LabelNegative] > b.Counts[LabelPositive] && b.Counts[LabelNegative] > b.Counts[LabelNeutral] {
		dominant = LabelNegative
	}

	return fmt.Sprintf("Overall sentiment is %s (%.1f%% of reviews)", dominant, b.Percentages[dominant])
}
