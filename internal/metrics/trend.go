package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
)

// buildTrend partitions records into granularity-aligned buckets and
// emits one point per calendar bucket between the earliest and latest
// record, in chronological order. Interior buckets with no records are
// included with zero values.
func buildTrend(records []v1.ReviewRecord, granularity Granularity) []TrendPoint {
	if len(records) == 0 {
		return []TrendPoint{}
	}

	buckets := make(map[time.Time][]v1.ReviewRecord)
	first := truncateToBucket(records[0].PostedAt, granularity)
	last := first
	for _, r := range records {
		start := truncateToBucket(r.PostedAt, granularity)
		buckets[start] = append(buckets[start], r)
		if start.Before(first) {
			first = start
		}
		if start.After(last) {
			last = start
		}
	}

	var points []TrendPoint
	for current := first; !current.After(last); current = nextBucket(current, granularity) {
		bucket := buckets[current]

		point := TrendPoint{
			BucketLabel:        bucketLabel(current, granularity),
			BucketStart:        current,
			ReviewCount:        len(bucket),
			RatingDistribution: newDistribution(),
		}

		sum := decimal.Zero
		for _, r := range bucket {
			sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
			point.RatingDistribution[r.Rating]++
			point.HelpfulVotes += r.HelpfulVotes
		}
		point.AverageRating = meanOf(sum, len(bucket))

		points = append(points, point)
	}

	return points
}

// truncateToBucket aligns a timestamp to its bucket boundary in UTC.
// Weekly buckets start on Monday; monthly on the first of the month.
func truncateToBucket(t time.Time, granularity Granularity) time.Time {
	t = t.UTC()
	year, month, day := t.Date()

	switch granularity {
	case GranularityWeekly:
		midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		offset := (int(midnight.Weekday()) + 6) % 7 // days since Monday
		return midnight.AddDate(0, 0, -offset)
	case GranularityMonthly:
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}

func nextBucket(start time.Time, granularity Granularity) time.Time {
	switch granularity {
	case GranularityWeekly:
		return start.AddDate(0, 0, 7)
	case GranularityMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

func bucketLabel(start time.Time, granularity Granularity) string {
	if granularity == GranularityMonthly {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}
