package metrics

import (
	"fmt"
	"strings"
)

// BrandMetric identifies the brand outcome an experiment measured.
type BrandMetric string

const (
	MetricFavorability      BrandMetric = "favorability"
	MetricPurchaseIntent    BrandMetric = "purchase_intent"
	MetricBrandAssociations BrandMetric = "brand_associations"
)

// metricAliases maps upstream spellings onto canonical metric names.
// Survey vendors export "brand_favorability"; the canonical form drops
// the redundant prefix.
var metricAliases = map[string]BrandMetric{
	"favorability":       MetricFavorability,
	"brand_favorability": MetricFavorability,
	"purchase_intent":    MetricPurchaseIntent,
	"brand_associations": MetricBrandAssociations,
}

// ParseBrandMetric converts an upstream metric name to its canonical form.
func ParseBrandMetric(s string) (BrandMetric, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := metricAliases[key]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown brand metric %q", s)
}

// AllBrandMetrics returns the canonical metrics in a stable order.
func AllBrandMetrics() []BrandMetric {
	return []BrandMetric{MetricBrandAssociations, MetricFavorability, MetricPurchaseIntent}
}

// Interval is an ordered 95% confidence interval [Lower, Upper].
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ParseInterval parses the textual interval form "[a, b]".
// Parentheses and surrounding whitespace are tolerated because upstream
// exports are inconsistent about bracket style.
func ParseInterval(s string) (Interval, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "[]()")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	parts := strings.Split(cleaned, ",")
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("interval %q: expected two comma-separated bounds", s)
	}
	var iv Interval
	if _, err := fmt.Sscanf(parts[0], "%g", &iv.Lower); err != nil {
		return Interval{}, fmt.Errorf("interval %q: bad lower bound: %w", s, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%g", &iv.Upper); err != nil {
		return Interval{}, fmt.Errorf("interval %q: bad upper bound: %w", s, err)
	}
	return iv, nil
}

// String renders the interval back to its textual form.
func (iv Interval) String() string {
	return fmt.Sprintf("[%g, %g]", iv.Lower, iv.Upper)
}

// ExcludesZero reports whether the interval excludes zero, i.e. the
// underlying effect is statistically significant at the 95% level.
func (iv Interval) ExcludesZero() bool {
	return iv.Lower > 0 || iv.Upper < 0
}

// Contains reports whether x lies within the interval, widened by tol on
// both sides.
func (iv Interval) Contains(x, tol float64) bool {
	return x >= iv.Lower-tol && x <= iv.Upper+tol
}

// HalfWidth returns the interval's half width, i.e. the margin of error
// implied by the interval.
func (iv Interval) HalfWidth() float64 {
	return (iv.Upper - iv.Lower) / 2
}

// RawRow is one statistical observation as parsed from upstream tabular
// input. All fields are strings; the Normalizer owns coercion and
// validation. Field names mirror the upstream export columns.
type RawRow struct {
	Metric              string `json:"metric"`
	Segment             string `json:"segment"`
	Breakdown           string `json:"breakdown,omitempty"`
	Delta               string `json:"delta"`
	MarginOfError       string `json:"marginOfError,omitempty"`
	CI95Interval        string `json:"ci_95_interval,omitempty"`
	BaselineMean        string `json:"baselineMean,omitempty"`
	TestGroupMean       string `json:"testGroupMean,omitempty"`
	BaselineSampleSize  string `json:"baselineSampleSize,omitempty"`
	TestGroupSampleSize string `json:"testGroupSampleSize,omitempty"`
	TotalWeight         string `json:"totalWeight,omitempty"`
}

// MetricRecord is one validated, canonical statistical observation.
// INVARIANTS:
// - CI95.Lower <= Delta <= CI95.Upper (within the normalizer tolerance)
// - MarginOfError == CI95.HalfWidth() (within the normalizer tolerance)
// - BaselineN > 0, TestN > 0
// Records are immutable once produced by the Normalizer.
type MetricRecord struct {
	Segment       string      `json:"segment"`
	Breakdown     string      `json:"breakdown,omitempty"`
	Metric        BrandMetric `json:"metric"`
	Delta         float64     `json:"delta"`
	MarginOfError float64     `json:"margin_of_error"`
	CI95          Interval    `json:"ci_95"`
	BaselineMean  float64     `json:"baseline_mean"`
	TestGroupMean float64     `json:"test_group_mean"`
	BaselineN     int         `json:"baseline_n"`
	TestN         int         `json:"test_n"`
	TotalWeight   float64     `json:"total_weight"`
	HasWeight     bool        `json:"has_weight"`

	// Derived from delta and the interval-implied standard error.
	ZScore float64 `json:"z_score"`
	PValue float64 `json:"p_value"`
}

// Significant reports whether the 95% interval excludes zero.
func (m MetricRecord) Significant() bool {
	return m.CI95.ExcludesZero()
}

// Key identifies the (segment, breakdown, metric) cell this record fills.
func (m MetricRecord) Key() string {
	return m.Segment + "\x1f" + m.Breakdown + "\x1f" + string(m.Metric)
}
