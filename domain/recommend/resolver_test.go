package recommend

import (
	"testing"

	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/themes"
)

func record(segment string, metric metrics.BrandMetric, delta, lower, upper, weight float64) metrics.MetricRecord {
	return metrics.MetricRecord{
		Segment:       segment,
		Metric:        metric,
		Delta:         delta,
		CI95:          metrics.Interval{Lower: lower, Upper: upper},
		MarginOfError: (upper - lower) / 2,
		BaselineN:     480,
		TestN:         500,
		TotalWeight:   weight,
		HasWeight:     weight > 0,
	}
}

func theme(segment, label string, prevalence float64, sentiment themes.Sentiment, keywords ...string) themes.ThemeRecord {
	return themes.ThemeRecord{
		Segment:              segment,
		ThemeLabel:           label,
		Keywords:             keywords,
		Prevalence:           prevalence,
		Sentiment:            sentiment,
		RepresentativeQuotes: []string{"quote for " + label},
		CommentCount:         1,
	}
}

func TestResolver_PicksHighestOverlap(t *testing.T) {
	r := NewResolver(DefaultConfig())
	m := record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500)
	segThemes := []themes.ThemeRecord{
		theme("seg", "authenticity", 0.5, themes.SentimentNegative, "corporate", "scripted"),
	}
	elements := []creative.Element{
		creative.SceneElement{SceneID: "s1", StartTime: 0, EndTime: 5.2, VisualTags: []string{"corporate"}},
		creative.SceneElement{SceneID: "s2", StartTime: 6, EndTime: 12, VisualTags: []string{"corporate", "scripted"}},
	}

	cand := r.Resolve(m, segThemes, elements)
	scene, ok := cand.Element.(creative.SceneElement)
	if !ok || scene.SceneID != "s2" {
		t.Fatalf("expected s2 (overlap 2), got %v", cand.Element)
	}
	if len(cand.MatchedThemes) != 1 || cand.MatchedThemes[0].ThemeLabel != "authenticity" {
		t.Errorf("matched themes = %v", cand.MatchedThemes)
	}
}

func TestResolver_TopThreeThemesOnly(t *testing.T) {
	r := NewResolver(DefaultConfig())
	m := record("seg", metrics.MetricFavorability, 0.06, 0.01, 0.11, 100)
	segThemes := []themes.ThemeRecord{
		theme("seg", "a", 0.5, themes.SentimentPositive, "alpha"),
		theme("seg", "b", 0.4, themes.SentimentPositive, "beta"),
		theme("seg", "c", 0.3, themes.SentimentPositive, "gamma"),
		theme("seg", "d", 0.2, themes.SentimentPositive, "delta"),
	}
	elements := []creative.Element{
		creative.AttributeElement{Attribute: creative.KindMessaging, Value: "tagline", Tags: []string{"delta"}},
	}

	cand := r.Resolve(m, segThemes, elements)
	if cand.Element != nil {
		t.Errorf("keyword from the 4th theme must not match, got %v", cand.Element)
	}
}

func TestResolver_TieBreaks(t *testing.T) {
	r := NewResolver(DefaultConfig())
	m := record("seg", metrics.MetricFavorability, -0.07, -0.12, -0.02, 100)
	segThemes := []themes.ThemeRecord{
		theme("seg", "tone", 0.5, themes.SentimentNegative, "corporate"),
	}

	t.Run("earliest scene wins", func(t *testing.T) {
		elements := []creative.Element{
			creative.SceneElement{SceneID: "late", StartTime: 10, EndTime: 15, VisualTags: []string{"corporate"}},
			creative.SceneElement{SceneID: "early", StartTime: 2, EndTime: 5, VisualTags: []string{"corporate"}},
		}
		cand := r.Resolve(m, segThemes, elements)
		if scene := cand.Element.(creative.SceneElement); scene.SceneID != "early" {
			t.Errorf("expected early scene, got %s", scene.SceneID)
		}
	})

	t.Run("scene beats attribute", func(t *testing.T) {
		elements := []creative.Element{
			creative.AttributeElement{Attribute: creative.KindAudioTone, Value: "formal", Tags: []string{"corporate"}},
			creative.SceneElement{SceneID: "s1", StartTime: 3, EndTime: 6, VisualTags: []string{"corporate"}},
		}
		cand := r.Resolve(m, segThemes, elements)
		if _, ok := cand.Element.(creative.SceneElement); !ok {
			t.Errorf("scene must win a tie against an attribute, got %v", cand.Element)
		}
	})

	t.Run("attributes by declaration order", func(t *testing.T) {
		elements := []creative.Element{
			creative.AttributeElement{Attribute: creative.KindAudioTone, Value: "formal", Tags: []string{"corporate"}},
			creative.AttributeElement{Attribute: creative.KindMessaging, Value: "b2b pitch", Tags: []string{"corporate"}},
		}
		cand := r.Resolve(m, segThemes, elements)
		if attr := cand.Element.(creative.AttributeElement); attr.Attribute != creative.KindAudioTone {
			t.Errorf("first declared attribute must win, got %v", attr)
		}
		if cand.ElementOrder != 0 {
			t.Errorf("element order = %d", cand.ElementOrder)
		}
	})
}

func TestResolver_NoOverlapYieldsNilElement(t *testing.T) {
	r := NewResolver(DefaultConfig())
	m := record("seg", metrics.MetricFavorability, -0.07, -0.12, -0.02, 100)
	segThemes := []themes.ThemeRecord{
		theme("seg", "tone", 0.5, themes.SentimentNegative, "corporate"),
	}
	elements := []creative.Element{
		creative.SceneElement{SceneID: "s1", StartTime: 0, EndTime: 5, VisualTags: []string{"beach", "sunset"}},
	}

	cand := r.Resolve(m, segThemes, elements)
	if cand.Element != nil {
		t.Errorf("zero overlap must resolve to nil, got %v", cand.Element)
	}
	if cand.ElementOrder != -1 {
		t.Errorf("element order = %d, want -1", cand.ElementOrder)
	}
	if len(cand.SegmentThemes) != 1 {
		t.Error("segment themes must be retained for the fallback evidence path")
	}
}

func TestResolver_TranscriptTokensMatch(t *testing.T) {
	r := NewResolver(DefaultConfig())
	m := record("seg", metrics.MetricFavorability, -0.07, -0.12, -0.02, 100)
	segThemes := []themes.ThemeRecord{
		theme("seg", "tone", 0.5, themes.SentimentNegative, "innovation"),
	}
	elements := []creative.Element{
		creative.SceneElement{
			SceneID: "s1", StartTime: 0, EndTime: 5,
			VisualTags: []string{"office"},
			Transcript: "Driving Innovation, together.",
		},
	}

	cand := r.Resolve(m, segThemes, elements)
	if cand.Element == nil {
		t.Fatal("transcript token should match case-insensitively")
	}
}
