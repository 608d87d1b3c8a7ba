package recommend

import (
	"sort"

	"adlift/domain/core"
	"adlift/domain/creative"
	"adlift/domain/themes"
)

// Synthesizer converts scored candidates into typed recommendations,
// attaches supporting evidence and merges candidates that point at the
// same (segment, brandGoal, creativeElement). Merging is idempotent:
// synthesizing twice over the same candidate set yields the same output.
type Synthesizer struct {
	cfg Config
}

// NewSynthesizer creates a synthesizer with the given policy config.
func NewSynthesizer(cfg Config) *Synthesizer {
	return &Synthesizer{cfg: cfg.withDefaults()}
}

// Synthesize builds the (unranked) recommendation set.
func (s *Synthesizer) Synthesize(scored []ScoredCandidate) []Recommendation {
	merged := make(map[string]Recommendation)
	order := make([]string, 0, len(scored))

	for _, sc := range scored {
		rec := s.build(sc)
		key := mergeKey(rec)
		existing, seen := merged[key]
		if !seen {
			merged[key] = rec
			order = append(order, key)
			continue
		}
		merged[key] = s.merge(existing, rec)
	}

	out := make([]Recommendation, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return out
}

// mergeKey groups candidates referencing the same segment, goal and
// element. The element part is its stable reference key; unresolved
// elements group under the empty key per segment/goal.
func mergeKey(rec Recommendation) string {
	elementKey := ""
	if rec.CreativeElement != nil {
		elementKey = rec.CreativeElement.Key
	}
	return rec.Segment + "\x1f" + string(rec.BrandGoal) + "\x1f" + elementKey
}

func (s *Synthesizer) build(sc ScoredCandidate) Recommendation {
	recType := s.deriveType(sc)
	elementRef := elementRefOf(sc)
	support := s.qualitativeSupport(sc)

	description := fallbackElementDescription
	if sc.Element != nil {
		description = sc.Element.Description()
	}

	direction := "lift"
	if sc.Metric.Delta < 0 {
		direction = "drop"
	}

	themeLabels := make([]string, 0, len(support))
	seenLabels := make(map[string]struct{})
	for _, q := range support {
		if _, dup := seenLabels[q.Theme]; !dup {
			themeLabels = append(themeLabels, q.Theme)
			seenLabels[q.Theme] = struct{}{}
		}
	}

	facts := JustificationFacts{
		Segment:            sc.Metric.Segment,
		BrandGoal:          sc.Metric.Metric,
		Direction:          direction,
		DeltaPoints:        sc.Metric.Delta * 100,
		CI95:               sc.Metric.CI95,
		Significant:        sc.ConfidenceFlag,
		ElementDescription: description,
		ThemeLabels:        themeLabels,
	}
	if top := topTheme(sc); top != nil {
		facts.DominantSentiment = top.Sentiment
		facts.TopThemePrevalence = top.Prevalence
	}

	elementKey := ""
	if elementRef != nil {
		elementKey = elementRef.Key
	}

	return Recommendation{
		Key:             core.NewContentKey(sc.Metric.Segment, string(sc.Metric.Metric), elementKey, string(recType)),
		Segment:         sc.Metric.Segment,
		Breakdown:       sc.Metric.Breakdown,
		BrandGoal:       sc.Metric.Metric,
		Type:            recType,
		Priority:        s.priorityFor(sc.ImpactScore),
		CreativeElement: elementRef,
		ImpactScore:     sc.ImpactScore,
		QuantitativeSupport: QuantitativeSupport{
			Metric:                  sc.Metric.Metric,
			Delta:                   sc.Metric.Delta,
			CI95:                    sc.Metric.CI95,
			MarginOfError:           sc.Metric.MarginOfError,
			BaselineMean:            sc.Metric.BaselineMean,
			TestGroupMean:           sc.Metric.TestGroupMean,
			PValue:                  sc.Metric.PValue,
			StatisticalSignificance: sc.ConfidenceFlag,
		},
		QualitativeSupport: support,
		Justification:      facts,
	}
}

// negativePolarityMarkers are tag tokens that mark a creative element as
// actively disliked rather than merely associated with a weak signal.
// A negative drop against an element without one of these markers is a
// "change" (rework it), not a "remove".
var negativePolarityMarkers = map[string]struct{}{
	"dislike": {}, "disliked": {}, "hate": {}, "hated": {},
	"annoying": {}, "irritating": {}, "cringe": {}, "boring": {},
	"skip": {}, "skipped": {}, "offputting": {}, "off_putting": {},
}

// deriveType maps the signal direction and theme sentiment onto an action:
//   - negative delta escalates from "change" to "remove" when the matched
//     element's tag vocabulary carries a polarity marker showing the
//     element is actively disliked AND its top theme is negative with
//     prevalence at or above the remove threshold
//   - positive delta with no matched element is an "add" (amplify what is
//     missing); with a matched element it is a "change" framed as
//     reinforcement
func (s *Synthesizer) deriveType(sc ScoredCandidate) RecType {
	if sc.Metric.Delta < 0 {
		if sc.Element != nil && hasPolarityMarker(sc.Element.MatchTokens()) {
			if top := topTheme(sc); top != nil &&
				top.Sentiment == themes.SentimentNegative &&
				top.Prevalence >= s.cfg.RemoveSentimentPrevalence {
				return TypeRemove
			}
		}
		return TypeChange
	}
	if sc.Element == nil {
		return TypeAdd
	}
	return TypeChange
}

func hasPolarityMarker(tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := negativePolarityMarkers[tok]; ok {
			return true
		}
	}
	return false
}

func (s *Synthesizer) priorityFor(impact float64) Priority {
	switch {
	case impact >= s.cfg.HighImpactThreshold:
		return PriorityHigh
	case impact >= s.cfg.MediumImpactThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// topTheme is the highest-prevalence theme backing the candidate: the
// first matched theme when the element resolved, otherwise the segment's
// most prevalent theme.
func topTheme(sc ScoredCandidate) *themes.ThemeRecord {
	if len(sc.MatchedThemes) > 0 {
		return &sc.MatchedThemes[0]
	}
	if len(sc.SegmentThemes) > 0 {
		return &sc.SegmentThemes[0]
	}
	return nil
}

// qualitativeSupport selects quotes from the matched themes in prevalence
// order; when nothing overlapped the element it falls back to the
// segment's single highest-prevalence theme.
func (s *Synthesizer) qualitativeSupport(sc ScoredCandidate) []QualitativeSupport {
	source := sc.MatchedThemes
	if len(source) == 0 && len(sc.SegmentThemes) > 0 {
		source = sc.SegmentThemes[:1]
	}

	var out []QualitativeSupport
	for _, theme := range source {
		for _, quote := range theme.RepresentativeQuotes {
			if len(out) >= s.cfg.MaxQualitativeQuotes {
				return out
			}
			out = append(out, QualitativeSupport{
				Comment:         quote,
				Theme:           theme.ThemeLabel,
				Sentiment:       theme.Sentiment,
				ThemePrevalence: theme.Prevalence,
			})
		}
	}
	return out
}

// merge combines two recommendations for the same merge key: the greater
// impact score wins the scalar fields (including type and priority), and
// the qualitative support becomes the union, most-prevalent-theme quotes
// first, capped at the configured maximum.
func (s *Synthesizer) merge(a, b Recommendation) Recommendation {
	winner, loser := a, b
	if b.ImpactScore > a.ImpactScore {
		winner, loser = b, a
	}

	winner.QualitativeSupport = s.unionQuotes(winner.QualitativeSupport, loser.QualitativeSupport)
	winner.Key = core.NewContentKey(winner.Segment, string(winner.BrandGoal), mergeElementKey(winner), string(winner.Type))
	return winner
}

func mergeElementKey(rec Recommendation) string {
	if rec.CreativeElement != nil {
		return rec.CreativeElement.Key
	}
	return ""
}

// unionQuotes deduplicates by comment text, orders by theme prevalence
// descending with stable input order inside equal prevalence, and caps
// the result. Applying it repeatedly is idempotent.
func (s *Synthesizer) unionQuotes(a, b []QualitativeSupport) []QualitativeSupport {
	seen := make(map[string]struct{})
	combined := make([]QualitativeSupport, 0, len(a)+len(b))
	for _, q := range append(append([]QualitativeSupport{}, a...), b...) {
		if _, dup := seen[q.Comment]; dup {
			continue
		}
		seen[q.Comment] = struct{}{}
		combined = append(combined, q)
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].ThemePrevalence > combined[j].ThemePrevalence
	})
	if len(combined) > s.cfg.MaxQualitativeQuotes {
		combined = combined[:s.cfg.MaxQualitativeQuotes]
	}
	return combined
}

func elementRefOf(sc ScoredCandidate) *ElementRef {
	if sc.Element == nil {
		return nil
	}
	ref := &ElementRef{
		Key:         sc.Element.Key(),
		Kind:        sc.Element.Kind(),
		Description: sc.Element.Description(),
	}
	if scene, ok := sc.Element.(creative.SceneElement); ok {
		ref.Scene = &SceneRef{
			SceneID:   scene.SceneID,
			StartTime: scene.StartTime,
			EndTime:   scene.EndTime,
		}
	}
	return ref
}
