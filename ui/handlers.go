package ui

import (
	"fmt"
	"net/http"
	"strconv"

	"adlift/app"
	"adlift/domain/core"
	"adlift/domain/recommend"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreateExperiment(c *gin.Context) {
	var req app.CreateExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	exp, err := s.analysis.CreateExperiment(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, exp)
}

func (s *Server) handleListExperiments(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	experiments, err := s.analysis.ListExperiments(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiments": experiments, "count": len(experiments)})
}

func (s *Server) handleGetExperiment(c *gin.Context) {
	exp, err := s.analysis.GetExperiment(c.Request.Context(), core.ExperimentID(c.Param("id")))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	id := core.ExperimentID(c.Param("id"))

	result, err := s.analysis.AnalyzeExperiment(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"experiment_id":   id,
		"recommendations": result.Recommendations,
		"warnings":        result.Warnings,
	})
}

// handleListRecommendations serves the stored run with optional filters.
// Filters narrow the list without re-ranking it.
func (s *Server) handleListRecommendations(c *gin.Context) {
	id := core.ExperimentID(c.Param("id"))

	recs, err := s.analysis.ListRecommendations(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}

	preds, err := filtersFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(preds) > 0 {
		recs = recommend.Filter(recs, recommend.All(preds...))
	}

	out := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		entry := gin.H{"recommendation": rec}
		if s.justifier != nil {
			if prose, jerr := s.justifier.Justify(c.Request.Context(), rec.Justification); jerr == nil {
				entry["justification"] = prose
			}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"experiment_id": id, "recommendations": out, "count": len(out)})
}

func filtersFromQuery(c *gin.Context) ([]func(recommend.Recommendation) bool, error) {
	var preds []func(recommend.Recommendation) bool

	if segment := c.Query("segment"); segment != "" {
		preds = append(preds, recommend.BySegment(segment))
	}
	if goal := c.Query("brand_goal"); goal != "" {
		preds = append(preds, recommend.ByBrandGoal(goal))
	}
	if t := c.Query("type"); t != "" {
		switch recommend.RecType(t) {
		case recommend.TypeAdd, recommend.TypeChange, recommend.TypeRemove:
			preds = append(preds, recommend.ByType(recommend.RecType(t)))
		default:
			return nil, fmt.Errorf("unknown type %q", t)
		}
	}
	if p := c.Query("priority"); p != "" {
		switch recommend.Priority(p) {
		case recommend.PriorityHigh, recommend.PriorityMedium, recommend.PriorityLow:
			preds = append(preds, recommend.ByPriority(recommend.Priority(p)))
		default:
			return nil, fmt.Errorf("unknown priority %q", p)
		}
	}
	if raw := c.Query("min_impact_score"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min_impact_score %q", raw)
		}
		preds = append(preds, recommend.MinImpact(min))
	}
	return preds, nil
}

func (s *Server) handleExport(c *gin.Context) {
	id := core.ExperimentID(c.Param("id"))
	format := c.DefaultQuery("format", "xlsx")

	exporter, ok := s.exporters[format]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown export format %q", format)})
		return
	}

	exp, err := s.analysis.GetExperiment(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	recs, err := s.analysis.ListRecommendations(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}

	out, err := exporter.Export(exp, recs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("recommendations_%s.%s", id, exporter.FileExtension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, exporter.ContentType(), out)
}

func (s *Server) renderError(c *gin.Context, err error) {
	if core.IsNotFoundError(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if core.IsInvalidInputError(err) || core.IsMalformedMetricError(err) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, key string, def int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}
