package ports

import (
	"context"

	"adlift/domain/recommend"
)

// Justifier turns engine-computed justification facts into display prose.
// The engine never generates prose itself; this port marks the boundary
// where a language-model call would sit in production.
type Justifier interface {
	Justify(ctx context.Context, facts recommend.JustificationFacts) (string, error)
}
