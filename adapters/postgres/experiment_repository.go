package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"adlift/domain/core"
	"adlift/models"
	"adlift/ports"

	"github.com/jmoiron/sqlx"
)

// ExperimentRepositoryImpl implements ExperimentRepository for PostgreSQL
type ExperimentRepositoryImpl struct {
	db *sqlx.DB
}

// NewExperimentRepository creates a new PostgreSQL experiment repository
func NewExperimentRepository(db *sqlx.DB) ports.ExperimentRepository {
	return &ExperimentRepositoryImpl{db: db}
}

// Create inserts a new experiment
func (r *ExperimentRepositoryImpl) Create(ctx context.Context, exp *models.Experiment) error {
	var summaryJSON []byte
	if exp.Summary != nil {
		summaryJSON, _ = json.Marshal(exp.Summary)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO experiments (
			id, title, description, status,
			results_path, comments_path, elements_path,
			error_message, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		exp.ID, exp.Title, exp.Description, exp.Status,
		exp.ResultsPath, exp.CommentsPath, exp.ElementsPath,
		exp.ErrorMessage, nullableJSON(summaryJSON), exp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert experiment: %w", err)
	}
	return nil
}

// GetByID retrieves an experiment by ID
func (r *ExperimentRepositoryImpl) GetByID(ctx context.Context, id core.ExperimentID) (*models.Experiment, error) {
	var exp models.Experiment
	var summaryJSON []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, status,
			   results_path, comments_path, elements_path,
			   error_message, summary, created_at, completed_at
		FROM experiments
		WHERE id = $1`, id).Scan(
		&exp.ID, &exp.Title, &exp.Description, &exp.Status,
		&exp.ResultsPath, &exp.CommentsPath, &exp.ElementsPath,
		&exp.ErrorMessage, &summaryJSON, &exp.CreatedAt, &exp.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("experiment", string(id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	if len(summaryJSON) > 0 {
		var summary models.Summary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		exp.Summary = &summary
	}
	return &exp, nil
}

// List returns experiments newest first
func (r *ExperimentRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*models.Experiment, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, status,
			   results_path, comments_path, elements_path,
			   error_message, summary, created_at, completed_at
		FROM experiments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*models.Experiment
	for rows.Next() {
		var exp models.Experiment
		var summaryJSON []byte
		if err := rows.Scan(
			&exp.ID, &exp.Title, &exp.Description, &exp.Status,
			&exp.ResultsPath, &exp.CommentsPath, &exp.ElementsPath,
			&exp.ErrorMessage, &summaryJSON, &exp.CreatedAt, &exp.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		if len(summaryJSON) > 0 {
			var summary models.Summary
			if err := json.Unmarshal(summaryJSON, &summary); err == nil {
				exp.Summary = &summary
			}
		}
		experiments = append(experiments, &exp)
	}
	return experiments, rows.Err()
}

// UpdateStatus transitions an experiment's lifecycle status. The completed
// timestamp is set only on terminal transitions.
func (r *ExperimentRepositoryImpl) UpdateStatus(ctx context.Context, id core.ExperimentID, status models.ExperimentStatus, errorMessage string) error {
	var res sql.Result
	var err error

	switch status {
	case models.StatusCompleted, models.StatusFailed:
		res, err = r.db.ExecContext(ctx, `
			UPDATE experiments
			SET status = $2, error_message = $3, completed_at = NOW()
			WHERE id = $1`, id, status, errorMessage)
	default:
		res, err = r.db.ExecContext(ctx, `
			UPDATE experiments
			SET status = $2, error_message = $3
			WHERE id = $1`, id, status, errorMessage)
	}
	if err != nil {
		return fmt.Errorf("failed to update experiment status: %w", err)
	}
	return requireOneRow(res, id)
}

// UpdateSummary stores the run summary for a completed experiment
func (r *ExperimentRepositoryImpl) UpdateSummary(ctx context.Context, id core.ExperimentID, summary models.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE experiments SET summary = $2 WHERE id = $1`, id, summaryJSON)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	return requireOneRow(res, id)
}

func requireOneRow(res sql.Result, id core.ExperimentID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.NewNotFoundError("experiment", string(id))
	}
	return nil
}

// nullableJSON maps empty JSON to SQL NULL.
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
