package heuristic

import (
	"context"
	"fmt"
	"strings"

	"adlift/domain/metrics"
	"adlift/domain/recommend"
)

// Justifier renders justification facts into prose with fixed templates.
// Same facts in, same sentence out; it stands in for the language-model
// justifier in tests, offline runs and deterministic pipelines.
type Justifier struct{}

// NewJustifier creates a template-based justifier.
func NewJustifier() *Justifier {
	return &Justifier{}
}

// Justify renders one recommendation's facts as a short paragraph.
func (j *Justifier) Justify(_ context.Context, facts recommend.JustificationFacts) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s showed a %.1f point %s in %s among %s",
		facts.ElementDescription,
		facts.DeltaPoints,
		facts.Direction,
		goalLabel(facts.BrandGoal),
		segmentLabel(facts.Segment))

	if facts.Significant {
		fmt.Fprintf(&b, " (statistically significant, 95%% CI %s)", facts.CI95.String())
	} else {
		fmt.Fprintf(&b, " (directional, 95%% CI %s)", facts.CI95.String())
	}
	b.WriteString(".")

	if len(facts.ThemeLabels) > 0 {
		fmt.Fprintf(&b, " Respondent comments cluster on %s", strings.Join(facts.ThemeLabels, ", "))
		if facts.TopThemePrevalence > 0 {
			fmt.Fprintf(&b, " (%.0f%% of segment comments", facts.TopThemePrevalence*100)
			if facts.DominantSentiment != "" {
				fmt.Fprintf(&b, ", predominantly %s", facts.DominantSentiment)
			}
			b.WriteString(")")
		}
		b.WriteString(".")
	}

	return b.String(), nil
}

func goalLabel(goal metrics.BrandMetric) string {
	return strings.ReplaceAll(string(goal), "_", " ")
}

func segmentLabel(segment string) string {
	if segment == "overall" || segment == "" {
		return "all respondents"
	}
	return strings.ReplaceAll(segment, "_", " ")
}
