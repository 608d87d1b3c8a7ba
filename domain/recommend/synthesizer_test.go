package recommend

import (
	"testing"

	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/themes"
)

func scored(m metrics.MetricRecord, el creative.Element, matched, segment []themes.ThemeRecord, impact float64) ScoredCandidate {
	order := -1
	if el != nil {
		order = 0
	}
	return ScoredCandidate{
		Candidate: Candidate{
			Metric:        m,
			Element:       el,
			ElementOrder:  order,
			MatchedThemes: matched,
			SegmentThemes: segment,
		},
		ImpactScore:    impact,
		ConfidenceFlag: m.Significant(),
	}
}

func TestSynthesizer_TypeDerivation(t *testing.T) {
	syn := NewSynthesizer(DefaultConfig())
	scene := creative.SceneElement{SceneID: "s1", StartTime: 0, EndTime: 5, VisualTags: []string{"corporate"}}
	dislikedScene := creative.SceneElement{SceneID: "s2", StartTime: 5, EndTime: 9, VisualTags: []string{"jingle", "annoying"}}

	negTheme := theme("seg", "authenticity", 0.45, themes.SentimentNegative, "corporate", "annoying")
	weakNegTheme := theme("seg", "authenticity", 0.2, themes.SentimentNegative, "corporate", "annoying")
	posTheme := theme("seg", "humor", 0.5, themes.SentimentPositive, "funny")

	cases := []struct {
		name string
		sc   ScoredCandidate
		want RecType
	}{
		{
			"negative delta with element is change",
			scored(record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500),
				scene, []themes.ThemeRecord{negTheme}, []themes.ThemeRecord{negTheme}, 0.12),
			TypeChange,
		},
		{
			"disliked element with prevalent negative theme is remove",
			scored(record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500),
				dislikedScene, []themes.ThemeRecord{negTheme}, []themes.ThemeRecord{negTheme}, 0.12),
			TypeRemove,
		},
		{
			"disliked element below prevalence threshold stays change",
			scored(record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500),
				dislikedScene, []themes.ThemeRecord{weakNegTheme}, []themes.ThemeRecord{weakNegTheme}, 0.12),
			TypeChange,
		},
		{
			"positive delta without element is add",
			scored(record("seg", metrics.MetricFavorability, 0.09, 0.03, 0.15, 500),
				nil, nil, []themes.ThemeRecord{posTheme}, 0.09),
			TypeAdd,
		},
		{
			"positive delta with element is reinforcement change",
			scored(record("seg", metrics.MetricFavorability, 0.09, 0.03, 0.15, 500),
				scene, []themes.ThemeRecord{posTheme}, []themes.ThemeRecord{posTheme}, 0.09),
			TypeChange,
		},
		{
			"negative delta without element is change",
			scored(record("seg", metrics.MetricPurchaseIntent, -0.06, -0.11, -0.01, 500),
				nil, nil, []themes.ThemeRecord{negTheme}, 0.06),
			TypeChange,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := syn.Synthesize([]ScoredCandidate{tc.sc})
			if len(recs) != 1 {
				t.Fatalf("expected 1 recommendation, got %d", len(recs))
			}
			if recs[0].Type != tc.want {
				t.Errorf("type = %s, want %s", recs[0].Type, tc.want)
			}
		})
	}
}

func TestSynthesizer_PriorityTiers(t *testing.T) {
	syn := NewSynthesizer(DefaultConfig())
	segTheme := []themes.ThemeRecord{theme("seg", "tone", 0.5, themes.SentimentNegative, "corporate")}

	cases := []struct {
		impact float64
		want   Priority
	}{
		{0.12, PriorityHigh},
		{0.08, PriorityHigh},
		{0.05, PriorityMedium},
		{0.03, PriorityMedium},
		{0.02, PriorityLow},
	}
	for _, tc := range cases {
		sc := scored(record("seg", metrics.MetricFavorability, -0.10, -0.14, -0.06, 500), nil, nil, segTheme, tc.impact)
		recs := syn.Synthesize([]ScoredCandidate{sc})
		if recs[0].Priority != tc.want {
			t.Errorf("impact %g: priority = %s, want %s", tc.impact, recs[0].Priority, tc.want)
		}
	}
}

func TestSynthesizer_FallbackEvidence(t *testing.T) {
	syn := NewSynthesizer(DefaultConfig())
	segThemes := []themes.ThemeRecord{
		theme("seg", "authenticity", 0.5, themes.SentimentNegative, "corporate"),
		theme("seg", "humor", 0.3, themes.SentimentPositive, "funny"),
	}
	sc := scored(record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500), nil, nil, segThemes, 0.12)

	recs := syn.Synthesize([]ScoredCandidate{sc})
	rec := recs[0]
	if rec.CreativeElement != nil {
		t.Fatal("creative element must be nil")
	}
	if rec.Justification.ElementDescription != "General creative approach" {
		t.Errorf("element description = %q", rec.Justification.ElementDescription)
	}
	// Falls back to the single highest-prevalence theme only.
	if len(rec.QualitativeSupport) != 1 || rec.QualitativeSupport[0].Theme != "authenticity" {
		t.Errorf("qualitative support = %v", rec.QualitativeSupport)
	}
}

func TestSynthesizer_MergeSameElement(t *testing.T) {
	syn := NewSynthesizer(DefaultConfig())
	scene := creative.SceneElement{SceneID: "s1", StartTime: 0, EndTime: 5, VisualTags: []string{"corporate"}}

	themeA := theme("seg", "authenticity", 0.5, themes.SentimentNegative, "corporate")
	themeB := theme("seg", "tone", 0.3, themes.SentimentNegative, "corporate")
	themeB.RepresentativeQuotes = []string{"quote for tone"}

	a := record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500)
	b := record("seg", metrics.MetricPurchaseIntent, -0.06, -0.10, -0.02, 500)
	b.Breakdown = "Gender"

	scA := scored(a, scene, []themes.ThemeRecord{themeA}, []themes.ThemeRecord{themeA}, 0.12)
	scB := scored(b, scene, []themes.ThemeRecord{themeB}, []themes.ThemeRecord{themeB}, 0.06)

	recs := syn.Synthesize([]ScoredCandidate{scA, scB})
	if len(recs) != 1 {
		t.Fatalf("same (segment, goal, element) must merge, got %d", len(recs))
	}
	rec := recs[0]
	if rec.ImpactScore != 0.12 {
		t.Errorf("merged impact = %g, want the greater 0.12", rec.ImpactScore)
	}
	if len(rec.QualitativeSupport) != 2 {
		t.Fatalf("merged support should union both themes, got %v", rec.QualitativeSupport)
	}
	if rec.QualitativeSupport[0].Theme != "authenticity" {
		t.Errorf("most prevalent theme's quotes come first, got %s", rec.QualitativeSupport[0].Theme)
	}
}

func TestSynthesizer_MergeIdempotent(t *testing.T) {
	syn := NewSynthesizer(DefaultConfig())
	scene := creative.SceneElement{SceneID: "s1", StartTime: 0, EndTime: 5, VisualTags: []string{"corporate"}}
	th := theme("seg", "authenticity", 0.5, themes.SentimentNegative, "corporate")

	a := record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500)
	b := record("seg", metrics.MetricPurchaseIntent, -0.06, -0.10, -0.02, 500)
	b.Breakdown = "Gender"

	set := []ScoredCandidate{
		scored(a, scene, []themes.ThemeRecord{th}, []themes.ThemeRecord{th}, 0.12),
		scored(b, scene, []themes.ThemeRecord{th}, []themes.ThemeRecord{th}, 0.06),
	}

	once := syn.Synthesize(set)
	twice := syn.Synthesize(set)
	if len(once) != len(twice) {
		t.Fatalf("merge must be idempotent: %d vs %d", len(once), len(twice))
	}
	if once[0].Key != twice[0].Key || once[0].ImpactScore != twice[0].ImpactScore {
		t.Error("repeated synthesis must produce identical recommendations")
	}
}

func TestSynthesizer_QuoteCap(t *testing.T) {
	syn := NewSynthesizer(DefaultConfig())
	th := theme("seg", "authenticity", 0.5, themes.SentimentNegative, "corporate")
	th.RepresentativeQuotes = []string{"q1", "q2", "q3", "q4", "q5"}
	scene := creative.SceneElement{SceneID: "s1", StartTime: 0, EndTime: 5, VisualTags: []string{"corporate"}}

	sc := scored(record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500),
		scene, []themes.ThemeRecord{th}, []themes.ThemeRecord{th}, 0.12)

	recs := syn.Synthesize([]ScoredCandidate{sc})
	if got := len(recs[0].QualitativeSupport); got != 3 {
		t.Errorf("qualitative support capped at 3, got %d", got)
	}
}

func TestSynthesizer_JustificationFacts(t *testing.T) {
	syn := NewSynthesizer(DefaultConfig())
	th := theme("seg", "authenticity", 0.45, themes.SentimentNegative, "corporate")
	scene := creative.SceneElement{SceneID: "s1", StartTime: 0, EndTime: 5.2, VisualTags: []string{"corporate"}}

	sc := scored(record("seg", metrics.MetricPurchaseIntent, -0.12, -0.16, -0.08, 500),
		scene, []themes.ThemeRecord{th}, []themes.ThemeRecord{th}, 0.12)

	facts := syn.Synthesize([]ScoredCandidate{sc})[0].Justification
	if facts.Direction != "drop" {
		t.Errorf("direction = %s", facts.Direction)
	}
	if facts.DeltaPoints != -12 {
		t.Errorf("delta points = %g", facts.DeltaPoints)
	}
	if !facts.Significant {
		t.Error("facts must flag significance")
	}
	if facts.DominantSentiment != themes.SentimentNegative || facts.TopThemePrevalence != 0.45 {
		t.Errorf("theme facts = %s %g", facts.DominantSentiment, facts.TopThemePrevalence)
	}
}
