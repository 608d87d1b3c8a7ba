package recommend

import (
	"adlift/domain/core"
	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/themes"
)

// ============================================================================
// PIPELINE ENTITIES (transient, one engine run)
// ============================================================================

// Candidate links one metric record to at most one creative element and
// the segment themes whose keywords matched it. Candidates exist only
// during a single engine run.
type Candidate struct {
	Metric metrics.MetricRecord

	// Element is nil when no creative element overlapped any theme
	// keyword; the recommendation then falls back to a metric-plus-theme
	// justification.
	Element      creative.Element
	ElementOrder int // declaration index of Element, -1 when nil

	// MatchedThemes are the themes (prevalence order) whose keywords
	// overlap the resolved element's vocabulary.
	MatchedThemes []themes.ThemeRecord

	// SegmentThemes are all of the segment's themes in prevalence order,
	// kept for the fallback evidence path.
	SegmentThemes []themes.ThemeRecord
}

// ScoredCandidate is a Candidate plus its impact score.
type ScoredCandidate struct {
	Candidate
	ImpactScore float64
	// ConfidenceFlag is true iff the metric's 95% interval excludes zero.
	ConfidenceFlag bool
}

// ============================================================================
// OUTPUT TYPES
// ============================================================================

// RecType is the action a recommendation proposes.
type RecType string

const (
	TypeAdd    RecType = "add"
	TypeChange RecType = "change"
	TypeRemove RecType = "remove"
)

// Priority is the discrete tier assigned from the impact score.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank orders priorities for the final sort; lower is more urgent.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// SceneRef points at a time-bounded scene in the analyzed video.
type SceneRef struct {
	SceneID   string  `json:"scene_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// ElementRef is the serializable reference to a resolved creative element.
type ElementRef struct {
	Key         string        `json:"key"`
	Kind        creative.Kind `json:"kind"`
	Description string        `json:"description"`
	Scene       *SceneRef     `json:"scene,omitempty"`
}

// QuantitativeSupport summarizes the source metric record.
type QuantitativeSupport struct {
	Metric                  metrics.BrandMetric `json:"metric"`
	Delta                   float64             `json:"delta"`
	CI95                    metrics.Interval    `json:"ci_95"`
	MarginOfError           float64             `json:"margin_of_error"`
	BaselineMean            float64             `json:"baseline_mean"`
	TestGroupMean           float64             `json:"test_group_mean"`
	PValue                  float64             `json:"p_value"`
	StatisticalSignificance bool                `json:"statistical_significance"`
}

// QualitativeSupport is one supporting quote with its theme context.
type QualitativeSupport struct {
	Comment         string           `json:"comment"`
	Theme           string           `json:"theme"`
	Sentiment       themes.Sentiment `json:"sentiment"`
	ThemePrevalence float64          `json:"theme_prevalence"`
}

// JustificationFacts carries the engine-computed facts a downstream
// language-model call turns into prose. The engine never generates prose.
type JustificationFacts struct {
	Segment            string              `json:"segment"`
	BrandGoal          metrics.BrandMetric `json:"brand_goal"`
	Direction          string              `json:"direction"` // "lift" or "drop"
	DeltaPoints        float64             `json:"delta_points"`
	CI95               metrics.Interval    `json:"ci_95"`
	Significant        bool                `json:"significant"`
	ElementDescription string              `json:"element_description"`
	ThemeLabels        []string            `json:"theme_labels"`
	DominantSentiment  themes.Sentiment    `json:"dominant_sentiment,omitempty"`
	TopThemePrevalence float64             `json:"top_theme_prevalence,omitempty"`
}

// Recommendation is the engine's final output unit. Recommendations are
// produced fresh each run; Key is the only cross-run identity and is
// derived purely from content.
type Recommendation struct {
	Key       core.ContentKey     `json:"key"`
	Segment   string              `json:"segment"`
	Breakdown string              `json:"breakdown,omitempty"`
	BrandGoal metrics.BrandMetric `json:"brand_goal"`
	Type      RecType             `json:"type"`
	Priority  Priority            `json:"priority"`

	// CreativeElement is nil when no element resolved; the recommendation
	// then targets the general creative approach.
	CreativeElement *ElementRef `json:"creative_element"`

	ImpactScore         float64              `json:"impact_score"`
	QuantitativeSupport QuantitativeSupport  `json:"quantitative_support"`
	QualitativeSupport  []QualitativeSupport `json:"qualitative_support"`
	Justification       JustificationFacts   `json:"justification_facts"`
}

// fallbackElementDescription names the target when no element resolved.
const fallbackElementDescription = "General creative approach"

// Result is the self-contained output of one engine run.
type Result struct {
	Recommendations []Recommendation  `json:"recommendations"`
	Warnings        []metrics.Warning `json:"warnings,omitempty"`
}
