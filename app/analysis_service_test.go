package app

import (
	"context"
	"errors"
	"testing"

	"adlift/domain/core"
	"adlift/domain/metrics"
	"adlift/domain/recommend"
	"adlift/internal/testkit"
	"adlift/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(reader *testkit.StaticEvidenceReader) (*AnalysisService, *testkit.InMemoryExperimentRepository, *testkit.InMemoryRecommendationRepository) {
	experiments := testkit.NewInMemoryExperimentRepository()
	recommendations := testkit.NewInMemoryRecommendationRepository()
	svc := NewAnalysisService(
		recommend.NewEngine(recommend.DefaultConfig()),
		reader, experiments, recommendations, nil)
	return svc, experiments, recommendations
}

func createSample(t *testing.T, svc *AnalysisService) *models.Experiment {
	t.Helper()
	exp, err := svc.CreateExperiment(context.Background(), CreateExperimentRequest{
		Title:        "Spring brand spot",
		ResultsPath:  "results.csv",
		CommentsPath: "comments.csv",
		ElementsPath: "elements.json",
	})
	require.NoError(t, err)
	return exp
}

func TestCreateExperiment_Validation(t *testing.T) {
	svc, _, _ := newService(&testkit.StaticEvidenceReader{})

	_, err := svc.CreateExperiment(context.Background(), CreateExperimentRequest{ResultsPath: "r.csv"})
	assert.Error(t, err, "missing title")

	_, err = svc.CreateExperiment(context.Background(), CreateExperimentRequest{Title: "x"})
	assert.Error(t, err, "missing results path")
}

func TestAnalyzeExperiment_HappyPath(t *testing.T) {
	svc, experiments, recommendations := newService(
		&testkit.StaticEvidenceReader{Inputs: testkit.SampleInputs()})
	exp := createSample(t, svc)

	result, err := svc.AnalyzeExperiment(context.Background(), exp.ID)
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)

	// The significant age_18_24 favorability drop resolves to scene_1.
	first := result.Recommendations[0]
	assert.Equal(t, "age_18_24", first.Segment)
	assert.Equal(t, metrics.MetricFavorability, first.BrandGoal)
	require.NotNil(t, first.CreativeElement)
	assert.Equal(t, "scene:scene_1", first.CreativeElement.Key)

	stored, err := experiments.GetByID(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.False(t, stored.CompletedAt.IsZero())
	require.NotNil(t, stored.Summary)
	assert.Equal(t, len(result.Recommendations), stored.Summary.RecommendationCount)
	assert.InDelta(t, -0.12, stored.Summary.OverallFavorability, 1e-9)
	assert.InDelta(t, 0.06, stored.Summary.OverallIntent, 1e-9)
	assert.Equal(t, "age_18_24", stored.Summary.WeakSegment)

	persisted, err := recommendations.ListForExperiment(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Recommendations, persisted)
}

func TestAnalyzeExperiment_ReaderFailureMarksFailed(t *testing.T) {
	svc, experiments, _ := newService(
		&testkit.StaticEvidenceReader{Err: errors.New("file corrupted")})
	exp := createSample(t, svc)

	_, err := svc.AnalyzeExperiment(context.Background(), exp.ID)
	require.Error(t, err)

	stored, err := experiments.GetByID(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "file corrupted")
}

func TestAnalyzeExperiment_UnknownID(t *testing.T) {
	svc, _, _ := newService(&testkit.StaticEvidenceReader{})

	_, err := svc.AnalyzeExperiment(context.Background(), core.ExperimentID("missing"))
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestAnalyzeExperiment_Rerunnable(t *testing.T) {
	svc, _, recommendations := newService(
		&testkit.StaticEvidenceReader{Inputs: testkit.SampleInputs()})
	exp := createSample(t, svc)

	first, err := svc.AnalyzeExperiment(context.Background(), exp.ID)
	require.NoError(t, err)
	second, err := svc.AnalyzeExperiment(context.Background(), exp.ID)
	require.NoError(t, err)

	// Same inputs, same run: re-analysis replaces rather than appends.
	assert.Equal(t, first.Recommendations, second.Recommendations)
	persisted, err := recommendations.ListForExperiment(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Len(t, persisted, len(first.Recommendations))
}

func TestAnalyzeBatch(t *testing.T) {
	svc, experiments, _ := newService(
		&testkit.StaticEvidenceReader{Inputs: testkit.SampleInputs()})

	var ids []core.ExperimentID
	for i := 0; i < 5; i++ {
		exp := createSample(t, svc)
		ids = append(ids, exp.ID)
	}

	require.NoError(t, svc.AnalyzeBatch(context.Background(), ids, 2))

	for _, id := range ids {
		stored, err := experiments.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, stored.Status)
	}
}

func TestAnalyzeBatch_ReturnsFirstFailure(t *testing.T) {
	svc, _, _ := newService(&testkit.StaticEvidenceReader{Err: errors.New("boom")})
	exp := createSample(t, svc)

	err := svc.AnalyzeBatch(context.Background(), []core.ExperimentID{exp.ID}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestListRecommendations_RequiresExperiment(t *testing.T) {
	svc, _, _ := newService(&testkit.StaticEvidenceReader{})

	_, err := svc.ListRecommendations(context.Background(), core.ExperimentID("missing"))
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}
