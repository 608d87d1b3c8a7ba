package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"adlift/adapters/csvdata"
	"adlift/adapters/justify/heuristic"
	"adlift/domain/recommend"
	"adlift/internal/config"

	"github.com/joho/godotenv"
)

// analyze runs the recommendation engine once over local evidence files and
// prints the ranked result as JSON. No database, no server.
func main() {
	resultsPath := flag.String("results", "", "path to quantitative results CSV/XLSX (required)")
	commentsPath := flag.String("comments", "", "path to qualitative comments CSV")
	elementsPath := flag.String("elements", "", "path to creative elements JSON")
	withProse := flag.Bool("prose", false, "render justification prose for each recommendation")
	flag.Parse()

	if *resultsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded engine overrides from .env")
	}

	reader := csvdata.NewReader()
	var inputs recommend.Inputs
	var err error

	inputs.Metrics, err = reader.ReadMetricRows(*resultsPath)
	if err != nil {
		log.Fatalf("Failed to read results: %v", err)
	}
	if *commentsPath != "" {
		inputs.Comments, err = reader.ReadCommentRows(*commentsPath)
		if err != nil {
			log.Fatalf("Failed to read comments: %v", err)
		}
	}
	if *elementsPath != "" {
		inputs.Elements, err = reader.ReadCreativeElements(*elementsPath)
		if err != nil {
			log.Fatalf("Failed to read creative elements: %v", err)
		}
	}

	engine := recommend.NewEngine(config.LoadEngineConfig())
	result, err := engine.Run(inputs)
	if err != nil {
		log.Fatalf("Engine run failed: %v", err)
	}

	for _, w := range result.Warnings {
		log.Printf("warning [%s] row %d: %s", w.Code, w.Row, w.Message)
	}

	if *withProse {
		printWithProse(result)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

func printWithProse(result *recommend.Result) {
	justifier := heuristic.NewJustifier()
	for i, rec := range result.Recommendations {
		prose, err := justifier.Justify(context.Background(), rec.Justification)
		if err != nil {
			prose = "(justification unavailable)"
		}
		fmt.Printf("%d. [%s/%s] %s\n   %s\n\n", i+1, rec.Priority, rec.Type, rec.Segment, prose)
	}
}
