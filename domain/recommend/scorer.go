package recommend

import "math"

// Scorer computes a single scalar impact score per candidate from effect
// size, statistical confidence and segment population weight. Scores are
// IEEE doubles, never rounded before presentation, and bit-reproducible
// for identical inputs.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given policy config.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.withDefaults()}
}

// Score gates candidates and attaches impact scores.
//
// Gating: a candidate survives when abs(delta) >= MinAbsDelta OR its 95%
// interval excludes zero. Candidates failing both are dropped silently;
// they are noise, not signal.
//
// impactScore = abs(delta) * confidenceWeight * segmentWeightNorm, where
// segmentWeightNorm divides the record's population weight by the run's
// maximum. Missing weights normalize to 1.0 (average influence) so that
// sparse weighting never suppresses a recommendation; if every weight is
// zero or absent, all candidates get 1.0 uniformly.
func (s *Scorer) Score(candidates []Candidate) []ScoredCandidate {
	gated := make([]Candidate, 0, len(candidates))
	maxWeight := 0.0
	for _, c := range candidates {
		if math.Abs(c.Metric.Delta) < s.cfg.MinAbsDelta && !c.Metric.Significant() {
			continue
		}
		gated = append(gated, c)
		if c.Metric.HasWeight && c.Metric.TotalWeight > maxWeight {
			maxWeight = c.Metric.TotalWeight
		}
	}

	out := make([]ScoredCandidate, 0, len(gated))
	for _, c := range gated {
		significant := c.Metric.Significant()
		confidenceWeight := s.cfg.DirectionalConfidenceWeight
		if significant {
			confidenceWeight = 1.0
		}

		weightNorm := 1.0
		if maxWeight > 0 && c.Metric.HasWeight {
			weightNorm = c.Metric.TotalWeight / maxWeight
		}

		out = append(out, ScoredCandidate{
			Candidate:      c,
			ImpactScore:    math.Abs(c.Metric.Delta) * confidenceWeight * weightNorm,
			ConfidenceFlag: significant,
		})
	}
	return out
}
