package recommend

import "sort"

// Ranker produces the final ordered recommendation list. The order is a
// fully deterministic total order so that repeated runs over identical
// inputs paginate identically:
//
//	priority (high > medium > low)
//	impact score descending
//	segment ascending
//	brand goal ascending
type Ranker struct{}

// NewRanker creates a ranker.
func NewRanker() *Ranker { return &Ranker{} }

// Rank returns a newly ordered copy; the input slice is not mutated.
func (r *Ranker) Rank(recs []Recommendation) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority.rank() != b.Priority.rank() {
			return a.Priority.rank() < b.Priority.rank()
		}
		if a.ImpactScore != b.ImpactScore {
			return a.ImpactScore > b.ImpactScore
		}
		if a.Segment != b.Segment {
			return a.Segment < b.Segment
		}
		return a.BrandGoal < b.BrandGoal
	})
	return out
}

// Filter selects recommendations matching the predicate without changing
// their relative order. Filtering never re-ranks; an unmatched filter
// yields an empty list, not an error.
func Filter(recs []Recommendation, keep func(Recommendation) bool) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, rec := range recs {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// BySegment keeps recommendations for one segment.
func BySegment(segment string) func(Recommendation) bool {
	return func(r Recommendation) bool { return r.Segment == segment }
}

// ByBrandGoal keeps recommendations for one brand goal.
func ByBrandGoal(goal string) func(Recommendation) bool {
	return func(r Recommendation) bool { return string(r.BrandGoal) == goal }
}

// ByType keeps recommendations of one action type.
func ByType(t RecType) func(Recommendation) bool {
	return func(r Recommendation) bool { return r.Type == t }
}

// ByPriority keeps recommendations of one priority tier.
func ByPriority(p Priority) func(Recommendation) bool {
	return func(r Recommendation) bool { return r.Priority == p }
}

// MinImpact keeps recommendations at or above an impact floor.
func MinImpact(min float64) func(Recommendation) bool {
	return func(r Recommendation) bool { return r.ImpactScore >= min }
}

// All combines predicates conjunctively.
func All(preds ...func(Recommendation) bool) func(Recommendation) bool {
	return func(r Recommendation) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}
