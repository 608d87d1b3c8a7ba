package report

import (
	"testing"

	"adlift/domain/metrics"
	"adlift/domain/recommend"
	"adlift/domain/themes"
	"adlift/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() (*models.Experiment, []recommend.Recommendation) {
	exp := &models.Experiment{
		ID:     "exp-1",
		Title:  "Spring brand spot",
		Status: models.StatusCompleted,
		Summary: &models.Summary{
			OverallFavorability: -0.04,
			OverallIntent:       0.02,
			TopSegment:          "age_25_34",
			WeakSegment:         "age_18_24",
			RecommendationCount: 1,
		},
	}
	recs := []recommend.Recommendation{
		{
			Key:       "abc123",
			Segment:   "age_18_24",
			Breakdown: "Age",
			BrandGoal: metrics.MetricFavorability,
			Type:      recommend.TypeChange,
			Priority:  recommend.PriorityHigh,
			CreativeElement: &recommend.ElementRef{
				Key:         "scene:scene_1",
				Kind:        "scene",
				Description: "Scene scene_1 (0.0s-5.2s)",
			},
			ImpactScore: 0.12,
			QuantitativeSupport: recommend.QuantitativeSupport{
				Metric:                  metrics.MetricFavorability,
				Delta:                   -0.12,
				CI95:                    metrics.Interval{Lower: -0.17, Upper: -0.07},
				PValue:                  0.0001,
				StatisticalSignificance: true,
			},
			QualitativeSupport: []recommend.QualitativeSupport{
				{Comment: "Felt too corporate", Theme: "authenticity", Sentiment: themes.SentimentNegative, ThemePrevalence: 0.45},
			},
		},
	}
	return exp, recs
}

func TestMarkdownExport(t *testing.T) {
	exp, recs := sampleRun()

	out, err := NewMarkdownExporter().Export(exp, recs)
	require.NoError(t, err)
	md := string(out)

	assert.Contains(t, md, "# Creative Recommendations: Spring brand spot")
	assert.Contains(t, md, "Strongest segment: age_25_34")
	assert.Contains(t, md, "### 1. [HIGH] Change: Scene scene_1 (0.0s-5.2s)")
	assert.Contains(t, md, "delta -0.120, 95% CI [-0.17, -0.07]")
	assert.Contains(t, md, "> Felt too corporate")
	assert.Contains(t, md, "45% prevalence, negative")
}

func TestMarkdownExport_EmptyRun(t *testing.T) {
	exp, _ := sampleRun()

	out, err := NewMarkdownExporter().Export(exp, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No recommendations cleared the impact thresholds")
}

func TestHTMLExport(t *testing.T) {
	exp, recs := sampleRun()

	out, err := NewHTMLExporter().Export(exp, recs)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Spring brand spot")
	assert.Contains(t, html, "<blockquote>")
}

func TestExport_Deterministic(t *testing.T) {
	exp, recs := sampleRun()
	e := NewMarkdownExporter()

	a, err := e.Export(exp, recs)
	require.NoError(t, err)
	b, err := e.Export(exp, recs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
