package app

import (
	"sort"

	"adlift/domain/metrics"
	"adlift/models"

	"github.com/montanaflynn/stats"
)

// ComputeSummary aggregates normalized metric records into the experiment
// list view: one overall delta per brand goal plus the strongest and
// weakest segments.
func ComputeSummary(records []metrics.MetricRecord) models.Summary {
	summary := models.Summary{
		OverallFavorability: overallDelta(records, metrics.MetricFavorability),
		OverallIntent:       overallDelta(records, metrics.MetricPurchaseIntent),
		OverallAssociations: overallDelta(records, metrics.MetricBrandAssociations),
	}
	summary.TopSegment, summary.WeakSegment = rankSegments(records)
	return summary
}

// overallDelta is the weight-averaged delta for one brand goal. Records
// without survey weights fall back to an unweighted mean so a partially
// weighted export still averages sensibly.
func overallDelta(records []metrics.MetricRecord, goal metrics.BrandMetric) float64 {
	var weightedSum, weightTotal float64
	var deltas []float64
	allWeighted := true

	for _, rec := range records {
		if rec.Metric != goal {
			continue
		}
		deltas = append(deltas, rec.Delta)
		if rec.HasWeight && rec.TotalWeight > 0 {
			weightedSum += rec.Delta * rec.TotalWeight
			weightTotal += rec.TotalWeight
		} else {
			allWeighted = false
		}
	}
	if len(deltas) == 0 {
		return 0
	}
	if allWeighted && weightTotal > 0 {
		return weightedSum / weightTotal
	}
	mean, err := stats.Mean(deltas)
	if err != nil {
		return 0
	}
	return mean
}

// rankSegments returns the segments with the highest and lowest mean delta
// across all brand goals. The "overall" pseudo-segment is excluded; ties
// break on segment name so equal inputs always rank identically.
func rankSegments(records []metrics.MetricRecord) (top, weak string) {
	bySegment := make(map[string][]float64)
	for _, rec := range records {
		if rec.Segment == "overall" {
			continue
		}
		bySegment[rec.Segment] = append(bySegment[rec.Segment], rec.Delta)
	}
	if len(bySegment) == 0 {
		return "", ""
	}

	segments := make([]string, 0, len(bySegment))
	for seg := range bySegment {
		segments = append(segments, seg)
	}
	sort.Strings(segments)

	means := make(map[string]float64, len(segments))
	for _, seg := range segments {
		mean, err := stats.Mean(bySegment[seg])
		if err != nil {
			continue
		}
		means[seg] = mean
	}

	top, weak = segments[0], segments[0]
	for _, seg := range segments[1:] {
		if means[seg] > means[top] {
			top = seg
		}
		if means[seg] < means[weak] {
			weak = seg
		}
	}
	return top, weak
}
