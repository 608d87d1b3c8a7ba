package ui

import (
	"adlift/app"
	"adlift/internal"
	"adlift/ports"

	"github.com/gin-gonic/gin"
)

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	router    *gin.Engine
	analysis  *app.AnalysisService
	justifier ports.Justifier
	exporters map[string]ports.Exporter
	logger    *internal.Logger
}

// NewServer builds the API server. Exporters are keyed by the format query
// value they serve ("xlsx", "md", "html").
func NewServer(
	analysis *app.AnalysisService,
	justifier ports.Justifier,
	exporters map[string]ports.Exporter,
	logger *internal.Logger,
) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:    gin.Default(),
		analysis:  analysis,
		justifier: justifier,
		exporters: exporters,
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/experiments", s.handleCreateExperiment)
		api.GET("/experiments", s.handleListExperiments)
		api.GET("/experiments/:id", s.handleGetExperiment)
		api.POST("/experiments/:id/analyze", s.handleAnalyze)
		api.GET("/experiments/:id/recommendations", s.handleListRecommendations)
		api.GET("/experiments/:id/export", s.handleExport)
	}
}

// Router exposes the underlying gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	s.logger.Info("API listening on %s", addr)
	return s.router.Run(addr)
}
