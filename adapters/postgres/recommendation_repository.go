package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"adlift/domain/core"
	"adlift/domain/recommend"
	"adlift/ports"

	"github.com/jmoiron/sqlx"
)

// RecommendationRepositoryImpl implements RecommendationRepository for
// PostgreSQL. Each engine run replaces the previous list inside one
// transaction so readers never observe a half-written run.
type RecommendationRepositoryImpl struct {
	db *sqlx.DB
}

// NewRecommendationRepository creates a new PostgreSQL recommendation repository
func NewRecommendationRepository(db *sqlx.DB) ports.RecommendationRepository {
	return &RecommendationRepositoryImpl{db: db}
}

// ReplaceForExperiment atomically replaces the experiment's recommendation
// list with a new ranked run. The rank column preserves engine order.
func (r *RecommendationRepositoryImpl) ReplaceForExperiment(ctx context.Context, id core.ExperimentID, recs []recommend.Recommendation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM recommendations WHERE experiment_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear recommendations: %w", err)
	}

	for rank, rec := range recs {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal recommendation %s: %w", rec.Key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recommendations (
				experiment_id, content_key, rank, segment, breakdown,
				brand_goal, rec_type, priority, impact_score, payload
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			id, rec.Key, rank, rec.Segment, rec.Breakdown,
			rec.BrandGoal, rec.Type, rec.Priority, rec.ImpactScore, payload); err != nil {
			return fmt.Errorf("failed to insert recommendation %s: %w", rec.Key, err)
		}
	}

	return tx.Commit()
}

// ListForExperiment returns the stored run in its original engine order.
func (r *RecommendationRepositoryImpl) ListForExperiment(ctx context.Context, id core.ExperimentID) ([]recommend.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload FROM recommendations
		WHERE experiment_id = $1
		ORDER BY rank ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []recommend.Recommendation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		var rec recommend.Recommendation
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
