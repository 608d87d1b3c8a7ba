package models

import (
	"adlift/domain/core"
)

// ExperimentStatus tracks an experiment's analysis lifecycle.
type ExperimentStatus string

const (
	StatusPending    ExperimentStatus = "pending"
	StatusProcessing ExperimentStatus = "processing"
	StatusCompleted  ExperimentStatus = "completed"
	StatusFailed     ExperimentStatus = "failed"
)

// Experiment is one creative A/B test under analysis: a video creative
// plus the RCT survey exports it was measured with.
type Experiment struct {
	ID          core.ExperimentID `json:"id" db:"id"`
	Title       string            `json:"title" db:"title"`
	Description string            `json:"description,omitempty" db:"description"`
	Status      ExperimentStatus  `json:"status" db:"status"`

	// Input locations. The engine itself never touches files; the
	// analysis service reads these through the evidence reader.
	ResultsPath  string `json:"results_path,omitempty" db:"results_path"`
	CommentsPath string `json:"comments_path,omitempty" db:"comments_path"`
	ElementsPath string `json:"elements_path,omitempty" db:"elements_path"`

	ErrorMessage string         `json:"error_message,omitempty" db:"error_message"`
	Summary      *Summary       `json:"summary,omitempty" db:"-"`
	CreatedAt    core.Timestamp `json:"created_at" db:"created_at"`
	CompletedAt  core.Timestamp `json:"completed_at,omitempty" db:"completed_at"`
}

// Summary aggregates a completed run for the experiment list view.
type Summary struct {
	OverallFavorability float64 `json:"overall_favorability"`
	OverallIntent       float64 `json:"overall_intent"`
	OverallAssociations float64 `json:"overall_associations"`
	TopSegment          string  `json:"top_segment,omitempty"`
	WeakSegment         string  `json:"weak_segment,omitempty"`
	RecommendationCount int     `json:"recommendation_count"`
	WarningCount        int     `json:"warning_count"`
}

// NewExperiment creates a pending experiment with a fresh ID.
func NewExperiment(title, description string) *Experiment {
	return &Experiment{
		ID:          core.ExperimentID(core.NewID()),
		Title:       title,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   core.Now(),
	}
}
