package main

import (
	"context"
	"log"

	"adlift/adapters/csvdata"
	"adlift/adapters/excel"
	"adlift/adapters/justify/heuristic"
	"adlift/adapters/postgres"
	"adlift/adapters/report"
	"adlift/app"
	"adlift/domain/recommend"
	"adlift/internal"
	"adlift/internal/config"
	"adlift/ports"
	"adlift/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()
	gin.SetMode(appConfig.Server.GinMode)

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to apply database schema: %v", err)
	}

	analysis := app.NewAnalysisService(
		recommend.NewEngine(appConfig.Engine),
		csvdata.NewReader(),
		postgres.NewExperimentRepository(db),
		postgres.NewRecommendationRepository(db),
		logger)

	exporters := map[string]ports.Exporter{
		"xlsx": excel.NewExporter(),
		"md":   report.NewMarkdownExporter(),
		"html": report.NewHTMLExporter(),
	}

	server := ui.NewServer(analysis, heuristic.NewJustifier(), exporters, logger)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
