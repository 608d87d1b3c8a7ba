package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied idempotently at startup. Recommendations store their
// evidence as JSONB so the engine's output shape can evolve without a
// migration for every field.
const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	results_path TEXT NOT NULL DEFAULT '',
	comments_path TEXT NOT NULL DEFAULT '',
	elements_path TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	summary JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS recommendations (
	experiment_id TEXT NOT NULL REFERENCES experiments(id) ON DELETE CASCADE,
	content_key TEXT NOT NULL,
	rank INT NOT NULL,
	segment TEXT NOT NULL,
	breakdown TEXT NOT NULL DEFAULT '',
	brand_goal TEXT NOT NULL,
	rec_type TEXT NOT NULL,
	priority TEXT NOT NULL,
	impact_score DOUBLE PRECISION NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (experiment_id, content_key)
);

CREATE INDEX IF NOT EXISTS idx_recommendations_experiment_rank
	ON recommendations (experiment_id, rank);
`

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
