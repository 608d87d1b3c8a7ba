package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"adlift/domain/core"
	"adlift/domain/creative"
	"adlift/domain/metrics"
	"adlift/domain/recommend"
	"adlift/domain/themes"
	"adlift/models"
	"adlift/ports"
)

// SampleInputs returns a small but complete evidence set: one significant
// negative lift tied to a scene, one directional positive lift, and a
// comment pool with a dominant negative authenticity theme.
func SampleInputs() recommend.Inputs {
	comments := []themes.CommentRow{}
	for i := 0; i < 9; i++ {
		comments = append(comments, themes.CommentRow{
			ResponseID:   fmt.Sprintf("neg_%d", i),
			SegmentFlags: map[string]bool{"age_18_24": true},
			Sentiment:    themes.SentimentNegative,
			ThemeLabel:   "authenticity",
			Keywords:     []string{"corporate", "scripted"},
			Text:         fmt.Sprintf("Felt too corporate and scripted %d", i),
		})
	}
	for i := 0; i < 11; i++ {
		comments = append(comments, themes.CommentRow{
			ResponseID:   fmt.Sprintf("neu_%d", i),
			SegmentFlags: map[string]bool{"age_18_24": true},
			Sentiment:    themes.SentimentNeutral,
			Text:         fmt.Sprintf("It was fine %d", i),
		})
	}

	return recommend.Inputs{
		Metrics: []metrics.RawRow{
			{
				Metric:              "favorability",
				Segment:             "age_18_24",
				Breakdown:           "Age",
				Delta:               "-0.12",
				MarginOfError:       "0.05",
				CI95Interval:        "[-0.17, -0.07]",
				BaselineMean:        "0.62",
				TestGroupMean:       "0.50",
				BaselineSampleSize:  "480",
				TestGroupSampleSize: "495",
				TotalWeight:         "1200",
			},
			{
				Metric:              "purchase_intent",
				Segment:             "overall",
				Delta:               "0.06",
				MarginOfError:       "0.07",
				CI95Interval:        "[-0.01, 0.13]",
				BaselineMean:        "0.31",
				TestGroupMean:       "0.37",
				BaselineSampleSize:  "1000",
				TestGroupSampleSize: "1010",
				TotalWeight:         "1200",
			},
		},
		Comments: comments,
		Elements: []creative.Element{
			creative.SceneElement{
				SceneID:    "scene_1",
				StartTime:  0,
				EndTime:    5.2,
				VisualTags: []string{"office", "corporate"},
				Transcript: "Our brand has always been about people.",
			},
			creative.AttributeElement{
				Attribute: creative.KindAudioTone,
				Value:     "formal_voiceover",
				Tags:      []string{"formal"},
			},
		},
	}
}

// SampleExperiment returns a pending experiment pointing at nothing; tests
// wire their own reader stubs.
func SampleExperiment() *models.Experiment {
	exp := models.NewExperiment("Spring brand spot", "30s hero video, test vs control")
	exp.ResultsPath = "results.csv"
	exp.CommentsPath = "comments.csv"
	exp.ElementsPath = "elements.json"
	return exp
}

// ===== In-memory repositories =====

// InMemoryExperimentRepository is a thread-safe map-backed repository for
// tests and database-free runs.
type InMemoryExperimentRepository struct {
	mu          sync.RWMutex
	experiments map[core.ExperimentID]*models.Experiment
}

func NewInMemoryExperimentRepository() *InMemoryExperimentRepository {
	return &InMemoryExperimentRepository{
		experiments: make(map[core.ExperimentID]*models.Experiment),
	}
}

func (r *InMemoryExperimentRepository) Create(_ context.Context, exp *models.Experiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *exp
	r.experiments[exp.ID] = &cp
	return nil
}

func (r *InMemoryExperimentRepository) GetByID(_ context.Context, id core.ExperimentID) (*models.Experiment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exp, ok := r.experiments[id]
	if !ok {
		return nil, core.NewNotFoundError("experiment", string(id))
	}
	cp := *exp
	return &cp, nil
}

func (r *InMemoryExperimentRepository) List(_ context.Context, limit, offset int) ([]*models.Experiment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.Experiment, 0, len(r.experiments))
	for _, exp := range r.experiments {
		cp := *exp
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *InMemoryExperimentRepository) UpdateStatus(_ context.Context, id core.ExperimentID, status models.ExperimentStatus, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.experiments[id]
	if !ok {
		return core.NewNotFoundError("experiment", string(id))
	}
	exp.Status = status
	exp.ErrorMessage = errorMessage
	if status == models.StatusCompleted || status == models.StatusFailed {
		exp.CompletedAt = core.Now()
	}
	return nil
}

func (r *InMemoryExperimentRepository) UpdateSummary(_ context.Context, id core.ExperimentID, summary models.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.experiments[id]
	if !ok {
		return core.NewNotFoundError("experiment", string(id))
	}
	exp.Summary = &summary
	return nil
}

// InMemoryRecommendationRepository stores ranked runs per experiment.
type InMemoryRecommendationRepository struct {
	mu   sync.RWMutex
	runs map[core.ExperimentID][]recommend.Recommendation
}

func NewInMemoryRecommendationRepository() *InMemoryRecommendationRepository {
	return &InMemoryRecommendationRepository{
		runs: make(map[core.ExperimentID][]recommend.Recommendation),
	}
}

func (r *InMemoryRecommendationRepository) ReplaceForExperiment(_ context.Context, id core.ExperimentID, recs []recommend.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]recommend.Recommendation, len(recs))
	copy(cp, recs)
	r.runs[id] = cp
	return nil
}

func (r *InMemoryRecommendationRepository) ListForExperiment(_ context.Context, id core.ExperimentID) ([]recommend.Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := r.runs[id]
	cp := make([]recommend.Recommendation, len(recs))
	copy(cp, recs)
	return cp, nil
}

// StaticEvidenceReader serves fixed inputs regardless of path. Tests use it
// in place of the CSV adapter.
type StaticEvidenceReader struct {
	Inputs recommend.Inputs
	Err    error
}

func (r *StaticEvidenceReader) ReadMetricRows(string) ([]metrics.RawRow, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Inputs.Metrics, nil
}

func (r *StaticEvidenceReader) ReadCommentRows(string) ([]themes.CommentRow, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Inputs.Comments, nil
}

func (r *StaticEvidenceReader) ReadCreativeElements(string) ([]creative.Element, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Inputs.Elements, nil
}

// Interface guards
var (
	_ ports.ExperimentRepository     = (*InMemoryExperimentRepository)(nil)
	_ ports.RecommendationRepository = (*InMemoryRecommendationRepository)(nil)
	_ ports.EvidenceReader           = (*StaticEvidenceReader)(nil)
)
