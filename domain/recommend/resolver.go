package recommend

import (
	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/themes"
)

// Resolver maps a (segment, metric) signal to the creative element that
// most plausibly explains it, by intersecting the segment's top theme
// keywords with the elements' tag vocabularies.
//
// The match is a greedy single pass over segments x themes x elements;
// all three sets are small per experiment (scenes and themes number in
// the tens), so nothing cleverer is warranted.
type Resolver struct {
	cfg Config
}

// NewResolver creates a resolver with the given policy config.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg.withDefaults()}
}

// Resolve produces the candidate for one metric record. segmentThemes
// must be the record's segment themes in prevalence order (as returned
// by the theme index); elements must be in declaration order.
func (r *Resolver) Resolve(metric metrics.MetricRecord, segmentThemes []themes.ThemeRecord, elements []creative.Element) Candidate {
	top := segmentThemes
	if len(top) > r.cfg.TopThemesForMatching {
		top = top[:r.cfg.TopThemesForMatching]
	}

	pool := make(map[string]struct{})
	for _, theme := range top {
		for _, kw := range theme.Keywords {
			pool[kw] = struct{}{}
		}
	}

	bestIdx := -1
	bestScore := 0
	for i, el := range elements {
		score := overlapCount(pool, el.MatchTokens())
		if score == 0 {
			continue
		}
		if bestIdx == -1 || score > bestScore || (score == bestScore && preferredOver(el, elements[bestIdx], i, bestIdx)) {
			bestIdx = i
			bestScore = score
		}
	}

	cand := Candidate{
		Metric:        metric,
		ElementOrder:  -1,
		SegmentThemes: segmentThemes,
	}
	if bestIdx == -1 {
		return cand
	}

	cand.Element = elements[bestIdx]
	cand.ElementOrder = bestIdx
	cand.MatchedThemes = matchedThemes(top, elements[bestIdx])
	return cand
}

// overlapCount counts keyword-set hits against an element's tokens.
func overlapCount(pool map[string]struct{}, tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if _, ok := pool[tok]; ok {
			n++
		}
	}
	return n
}

// preferredOver breaks score ties deterministically: scenes win over
// attributes, earlier scenes win over later ones, and attributes fall
// back to declaration order. Ambiguity is never an error here; the
// engine must always produce a best-effort answer.
func preferredOver(a, b creative.Element, aIdx, bIdx int) bool {
	sceneA, aIsScene := a.(creative.SceneElement)
	sceneB, bIsScene := b.(creative.SceneElement)
	switch {
	case aIsScene && bIsScene:
		if sceneA.StartTime != sceneB.StartTime {
			return sceneA.StartTime < sceneB.StartTime
		}
		return aIdx < bIdx
	case aIsScene:
		return true
	case bIsScene:
		return false
	default:
		return aIdx < bIdx
	}
}

// matchedThemes keeps the top themes whose keyword sets overlap the
// resolved element, preserving prevalence order.
func matchedThemes(top []themes.ThemeRecord, el creative.Element) []themes.ThemeRecord {
	tokens := make(map[string]struct{})
	for _, tok := range el.MatchTokens() {
		tokens[tok] = struct{}{}
	}
	var out []themes.ThemeRecord
	for _, theme := range top {
		for _, kw := range theme.Keywords {
			if _, ok := tokens[kw]; ok {
				out = append(out, theme)
				break
			}
		}
	}
	return out
}
