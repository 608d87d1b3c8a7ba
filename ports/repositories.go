package ports

import (
	"context"

	"adlift/domain/core"
	"adlift/domain/recommend"
	"adlift/models"
)

// ExperimentRepository persists experiments and their run summaries.
type ExperimentRepository interface {
	Create(ctx context.Context, exp *models.Experiment) error
	GetByID(ctx context.Context, id core.ExperimentID) (*models.Experiment, error)
	List(ctx context.Context, limit, offset int) ([]*models.Experiment, error)
	UpdateStatus(ctx context.Context, id core.ExperimentID, status models.ExperimentStatus, errorMessage string) error
	UpdateSummary(ctx context.Context, id core.ExperimentID, summary models.Summary) error
}

// RecommendationRepository persists the ranked output of one engine run.
// A re-run replaces the previous list wholesale; recommendations carry no
// cross-run identity beyond their content key.
type RecommendationRepository interface {
	ReplaceForExperiment(ctx context.Context, id core.ExperimentID, recs []recommend.Recommendation) error
	ListForExperiment(ctx context.Context, id core.ExperimentID) ([]recommend.Recommendation, error)
}
