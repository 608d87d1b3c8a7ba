package app

import (
	"context"
	"strings"
	"sync"

	"adlift/domain/core"
	"adlift/domain/metrics"
	"adlift/domain/recommend"
	"adlift/internal"
	"adlift/internal/errors"
	"adlift/models"
	"adlift/ports"

	"golang.org/x/sync/errgroup"
)

// AnalysisService orchestrates one experiment's pipeline: load evidence,
// run the engine, persist the ranked run and its summary. The engine stays
// pure; everything stateful lives here.
type AnalysisService struct {
	engine          *recommend.Engine
	reader          ports.EvidenceReader
	experiments     ports.ExperimentRepository
	recommendations ports.RecommendationRepository
	logger          *internal.Logger
}

// NewAnalysisService wires the analysis pipeline.
func NewAnalysisService(
	engine *recommend.Engine,
	reader ports.EvidenceReader,
	experiments ports.ExperimentRepository,
	recommendations ports.RecommendationRepository,
	logger *internal.Logger,
) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		engine:          engine,
		reader:          reader,
		experiments:     experiments,
		recommendations: recommendations,
		logger:          logger,
	}
}

// CreateExperimentRequest carries the inputs for a new experiment.
type CreateExperimentRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ResultsPath  string `json:"results_path"`
	CommentsPath string `json:"comments_path"`
	ElementsPath string `json:"elements_path"`
}

// CreateExperiment registers a pending experiment.
func (s *AnalysisService) CreateExperiment(ctx context.Context, req CreateExperimentRequest) (*models.Experiment, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New(errors.CodeParseError, "experiment title is required")
	}
	if strings.TrimSpace(req.ResultsPath) == "" {
		return nil, errors.New(errors.CodeParseError, "results path is required")
	}

	exp := models.NewExperiment(strings.TrimSpace(req.Title), strings.TrimSpace(req.Description))
	exp.ResultsPath = req.ResultsPath
	exp.CommentsPath = req.CommentsPath
	exp.ElementsPath = req.ElementsPath

	if err := s.experiments.Create(ctx, exp); err != nil {
		return nil, errors.Wrap(err, "failed to create experiment")
	}
	s.logger.Info("created experiment %s (%s)", exp.ID, exp.Title)
	return exp, nil
}

// GetExperiment returns one experiment by ID.
func (s *AnalysisService) GetExperiment(ctx context.Context, id core.ExperimentID) (*models.Experiment, error) {
	return s.experiments.GetByID(ctx, id)
}

// ListExperiments returns experiments newest first.
func (s *AnalysisService) ListExperiments(ctx context.Context, limit, offset int) ([]*models.Experiment, error) {
	return s.experiments.List(ctx, limit, offset)
}

// ListRecommendations returns the stored ranked run for an experiment.
func (s *AnalysisService) ListRecommendations(ctx context.Context, id core.ExperimentID) ([]recommend.Recommendation, error) {
	if _, err := s.experiments.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.recommendations.ListForExperiment(ctx, id)
}

// AnalyzeExperiment runs the full pipeline for one experiment and returns
// the engine result. Failures transition the experiment to failed with the
// cause recorded; the error is returned as well.
func (s *AnalysisService) AnalyzeExperiment(ctx context.Context, id core.ExperimentID) (*recommend.Result, error) {
	exp, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.experiments.UpdateStatus(ctx, id, models.StatusProcessing, ""); err != nil {
		return nil, errors.Wrap(err, "failed to mark experiment processing")
	}
	s.logger.Info("analyzing experiment %s", id)

	result, summary, err := s.runPipeline(ctx, exp)
	if err != nil {
		if statusErr := s.experiments.UpdateStatus(ctx, id, models.StatusFailed, err.Error()); statusErr != nil {
			s.logger.Error("failed to mark experiment %s failed: %v", id, statusErr)
		}
		return nil, err
	}

	if err := s.recommendations.ReplaceForExperiment(ctx, id, result.Recommendations); err != nil {
		return nil, errors.Wrap(err, "failed to store recommendations")
	}
	if err := s.experiments.UpdateSummary(ctx, id, summary); err != nil {
		return nil, errors.Wrap(err, "failed to store summary")
	}
	if err := s.experiments.UpdateStatus(ctx, id, models.StatusCompleted, ""); err != nil {
		return nil, errors.Wrap(err, "failed to mark experiment completed")
	}

	s.logger.Info("experiment %s completed: %d recommendations, %d warnings",
		id, len(result.Recommendations), len(result.Warnings))
	return result, nil
}

func (s *AnalysisService) runPipeline(ctx context.Context, exp *models.Experiment) (*recommend.Result, models.Summary, error) {
	inputs, err := s.loadInputs(exp)
	if err != nil {
		return nil, models.Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, models.Summary{}, err
	}

	result, err := s.engine.Run(inputs)
	if err != nil {
		return nil, models.Summary{}, errors.Wrap(err, "engine run failed")
	}

	// The engine consumes raw rows, so normalize once more for the
	// aggregate view. Normalization is pure and the row counts are small.
	records, _, err := metrics.NewNormalizer().Normalize(inputs.Metrics)
	if err != nil {
		return nil, models.Summary{}, errors.Wrap(err, "failed to normalize metrics for summary")
	}

	summary := ComputeSummary(records)
	summary.RecommendationCount = len(result.Recommendations)
	summary.WarningCount = len(result.Warnings)
	return result, summary, nil
}

func (s *AnalysisService) loadInputs(exp *models.Experiment) (recommend.Inputs, error) {
	var inputs recommend.Inputs
	var err error

	inputs.Metrics, err = s.reader.ReadMetricRows(exp.ResultsPath)
	if err != nil {
		return inputs, errors.Wrapf(err, "failed to read results for %s", exp.ID)
	}
	if exp.CommentsPath != "" {
		inputs.Comments, err = s.reader.ReadCommentRows(exp.CommentsPath)
		if err != nil {
			return inputs, errors.Wrapf(err, "failed to read comments for %s", exp.ID)
		}
	}
	if exp.ElementsPath != "" {
		inputs.Elements, err = s.reader.ReadCreativeElements(exp.ElementsPath)
		if err != nil {
			return inputs, errors.Wrapf(err, "failed to read creative elements for %s", exp.ID)
		}
	}
	return inputs, nil
}

// AnalyzeBatch runs several experiments concurrently. Experiments are
// independent, so one failure does not stop the others; the first error is
// returned after all runs finish.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, ids []core.ExperimentID, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var firstErr error

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := s.AnalyzeExperiment(ctx, id); err != nil {
				s.logger.Error("batch analysis of %s failed: %v", id, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return firstErr
}
