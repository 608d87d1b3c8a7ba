package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"adlift/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultTolerance bounds the numeric slack allowed when checking that a
// row's delta sits inside its own interval and that a declared margin of
// error agrees with the interval half width.
const DefaultTolerance = 1e-6

// ciZ is the two-sided 95% normal quantile used to back out the standard
// error from a margin of error.
const ciZ = 1.959963984540054

// WarningCode classifies normalization warnings.
type WarningCode string

const (
	WarningMalformedRow   WarningCode = "MALFORMED_ROW"
	WarningDuplicateRow   WarningCode = "DUPLICATE_ROW"
	WarningMarginMismatch WarningCode = "MARGIN_MISMATCH"
)

// Warning records a non-fatal problem with one input row. Bad rows never
// abort the run; they are reported alongside the surviving records.
type Warning struct {
	Code    WarningCode `json:"code"`
	Row     int         `json:"row"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s row %d: %s", w.Code, w.Row, w.Message)
}

// Normalizer validates raw metric rows into canonical MetricRecords.
type Normalizer struct {
	tolerance float64
	stdNormal distuv.Normal
}

// NewNormalizer creates a normalizer with the default tolerance.
func NewNormalizer() *Normalizer {
	return NewNormalizerWithTolerance(DefaultTolerance)
}

// NewNormalizerWithTolerance creates a normalizer with an explicit tolerance.
func NewNormalizerWithTolerance(tol float64) *Normalizer {
	return &Normalizer{
		tolerance: tol,
		stdNormal: distuv.Normal{Mu: 0, Sigma: 1},
	}
}

// Normalize converts raw rows into MetricRecords.
//
// Partial-failure semantics: rows that fail parsing or violate row-level
// invariants are reported as warnings and skipped; valid rows proceed.
// A required field missing across ALL rows is a collection-shape problem
// and aborts with core.ErrInvalidInput.
//
// If duplicates exist for the same (segment, breakdown, metric), the later
// row in input order wins and a warning is recorded. The surviving record
// keeps the first occurrence's position so output order stays stable.
func (n *Normalizer) Normalize(rows []RawRow) ([]MetricRecord, []Warning, error) {
	if err := checkShape(rows); err != nil {
		return nil, nil, err
	}

	var (
		out      []MetricRecord
		warnings []Warning
		position = make(map[string]int)
	)

	for i, raw := range rows {
		rec, rowWarnings, err := n.normalizeRow(i, raw)
		if err != nil {
			warnings = append(warnings, Warning{
				Code:    WarningMalformedRow,
				Row:     i,
				Message: err.Error(),
			})
			continue
		}
		warnings = append(warnings, rowWarnings...)

		key := rec.Key()
		if at, seen := position[key]; seen {
			warnings = append(warnings, Warning{
				Code:    WarningDuplicateRow,
				Row:     i,
				Message: fmt.Sprintf("duplicate (segment=%s, breakdown=%s, metric=%s); later row wins", rec.Segment, rec.Breakdown, rec.Metric),
			})
			out[at] = rec
			continue
		}
		position[key] = len(out)
		out = append(out, rec)
	}

	return out, warnings, nil
}

// checkShape verifies the collection-level contract: a required field
// absent from every row means the upstream export is missing a column.
func checkShape(rows []RawRow) error {
	if len(rows) == 0 {
		return nil
	}
	required := []struct {
		name string
		get  func(RawRow) string
	}{
		{"metric", func(r RawRow) string { return r.Metric }},
		{"segment", func(r RawRow) string { return r.Segment }},
		{"delta", func(r RawRow) string { return r.Delta }},
	}
	for _, field := range required {
		present := false
		for _, r := range rows {
			if strings.TrimSpace(field.get(r)) != "" {
				present = true
				break
			}
		}
		if !present {
			return core.NewInvalidInputError("metrics", fmt.Sprintf("required field %q missing from all rows", field.name))
		}
	}
	return nil
}

func (n *Normalizer) normalizeRow(row int, raw RawRow) (MetricRecord, []Warning, error) {
	metric, err := ParseBrandMetric(raw.Metric)
	if err != nil {
		return MetricRecord{}, nil, core.NewMalformedMetricError(row, err.Error())
	}

	segment := strings.TrimSpace(raw.Segment)
	if segment == "" {
		return MetricRecord{}, nil, core.NewMalformedMetricError(row, "empty segment")
	}

	delta, err := parseFloat(raw.Delta, "delta")
	if err != nil {
		return MetricRecord{}, nil, core.NewMalformedMetricError(row, err.Error())
	}

	baselineN, err := parsePositiveInt(raw.BaselineSampleSize, "baselineSampleSize")
	if err != nil {
		return MetricRecord{}, nil, core.NewMalformedMetricError(row, err.Error())
	}
	testN, err := parsePositiveInt(raw.TestGroupSampleSize, "testGroupSampleSize")
	if err != nil {
		return MetricRecord{}, nil, core.NewMalformedMetricError(row, err.Error())
	}

	ci, moe, warnings, err := n.resolveInterval(row, raw, delta)
	if err != nil {
		return MetricRecord{}, nil, err
	}

	baselineMean, _ := parseOptionalFloat(raw.BaselineMean)
	testGroupMean, _ := parseOptionalFloat(raw.TestGroupMean)

	weight, hasWeight := parseOptionalFloat(raw.TotalWeight)
	if hasWeight && weight < 0 {
		return MetricRecord{}, nil, core.NewMalformedMetricError(row, fmt.Sprintf("totalWeight %g is negative", weight))
	}

	rec := MetricRecord{
		Segment:       segment,
		Breakdown:     strings.TrimSpace(raw.Breakdown),
		Metric:        metric,
		Delta:         delta,
		MarginOfError: moe,
		CI95:          ci,
		BaselineMean:  baselineMean,
		TestGroupMean: testGroupMean,
		BaselineN:     baselineN,
		TestN:         testN,
		TotalWeight:   weight,
		HasWeight:     hasWeight,
	}
	rec.ZScore, rec.PValue = n.zAndP(delta, moe)

	return rec, warnings, nil
}

// resolveInterval reconciles the interval column against the margin of
// error column. The interval is authoritative: when a declared margin
// disagrees with the interval half width beyond tolerance, the row is
// flagged rather than silently corrected, and the interval-derived value
// is used.
func (n *Normalizer) resolveInterval(row int, raw RawRow, delta float64) (Interval, float64, []Warning, error) {
	hasCI := strings.TrimSpace(raw.CI95Interval) != ""
	declaredMOE, hasMOE := parseOptionalFloat(raw.MarginOfError)

	var ci Interval
	switch {
	case hasCI:
		parsed, err := ParseInterval(raw.CI95Interval)
		if err != nil {
			return Interval{}, 0, nil, core.NewMalformedMetricError(row, err.Error())
		}
		ci = parsed
	case hasMOE:
		if declaredMOE < 0 {
			return Interval{}, 0, nil, core.NewMalformedMetricError(row, fmt.Sprintf("marginOfError %g is negative", declaredMOE))
		}
		ci = Interval{Lower: delta - declaredMOE, Upper: delta + declaredMOE}
	default:
		return Interval{}, 0, nil, core.NewMalformedMetricError(row, "neither ci_95_interval nor marginOfError present")
	}

	if ci.Lower > ci.Upper {
		return Interval{}, 0, nil, core.NewMalformedMetricError(row, fmt.Sprintf("inverted interval %s", ci))
	}
	if !ci.Contains(delta, n.tolerance) {
		return Interval{}, 0, nil, core.NewMalformedMetricError(row, fmt.Sprintf("delta %g outside interval %s", delta, ci))
	}

	moe := ci.HalfWidth()
	var warnings []Warning
	if hasCI && hasMOE {
		if math.Abs(declaredMOE-moe) > n.tolerance*math.Max(1, math.Abs(declaredMOE)) {
			warnings = append(warnings, Warning{
				Code:    WarningMarginMismatch,
				Row:     row,
				Message: fmt.Sprintf("declared marginOfError %g disagrees with interval half width %g; interval wins", declaredMOE, moe),
			})
		} else {
			moe = declaredMOE
		}
	}
	if moe < 0 {
		return Interval{}, 0, nil, core.NewMalformedMetricError(row, fmt.Sprintf("marginOfError %g is negative", moe))
	}
	return ci, moe, warnings, nil
}

// zAndP derives the z-score and two-sided p-value from the margin of
// error, treating it as a 95% half width over a normal sampling
// distribution. A zero margin yields p=0 for nonzero deltas and p=1 for
// zero deltas.
func (n *Normalizer) zAndP(delta, moe float64) (float64, float64) {
	se := moe / ciZ
	if se <= 0 {
		if delta == 0 {
			return 0, 1
		}
		return math.Inf(sign(delta)), 0
	}
	z := delta / se
	p := 2 * n.stdNormal.Survival(math.Abs(z))
	return z, p
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

func parseFloat(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric", field, s)
	}
	return v, nil
}

func parseOptionalFloat(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parsePositiveInt(s, field string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%s is missing", field)
	}
	// Some exports write sample sizes as floats ("500.0").
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric", field, s)
	}
	v := int(f)
	if float64(v) != f {
		return 0, fmt.Errorf("%s %q is not an integer", field, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s %d is not positive", field, v)
	}
	return v, nil
}
