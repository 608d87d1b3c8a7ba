package recommend

import (
	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/themes"
)

// Inputs is one experiment's already-materialized evidence snapshot.
// The engine takes no other input and holds no state between runs, so
// independent experiments can run in parallel without coordination.
type Inputs struct {
	Metrics  []metrics.RawRow
	Comments []themes.CommentRow
	Elements []creative.Element
}

// Engine fuses the three evidence streams into a ranked recommendation
// list. It is a pure, synchronous computation: no I/O, no clocks, no
// randomness. Identical inputs produce byte-identical ordered output.
type Engine struct {
	cfg         Config
	normalizer  *metrics.Normalizer
	resolver    *Resolver
	scorer      *Scorer
	synthesizer *Synthesizer
	ranker      *Ranker
}

// NewEngine creates an engine with the given policy config.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:         cfg,
		normalizer:  metrics.NewNormalizer(),
		resolver:    NewResolver(cfg),
		scorer:      NewScorer(cfg),
		synthesizer: NewSynthesizer(cfg),
		ranker:      NewRanker(),
	}
}

// Run executes one analysis pass. Row-level metric problems surface as
// warnings in the result; only collection-shape failures return an error.
func (e *Engine) Run(in Inputs) (*Result, error) {
	records, warnings, err := e.normalizer.Normalize(in.Metrics)
	if err != nil {
		return nil, err
	}

	index := themes.BuildIndex(in.Comments)

	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		segmentThemes := index.ThemesFor(rec.Segment)
		candidates = append(candidates, e.resolver.Resolve(rec, segmentThemes, in.Elements))
	}

	scored := e.scorer.Score(candidates)
	synthesized := e.synthesizer.Synthesize(scored)
	ranked := e.ranker.Rank(synthesized)

	return &Result{
		Recommendations: ranked,
		Warnings:        warnings,
	}, nil
}
