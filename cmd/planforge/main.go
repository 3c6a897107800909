// Command planforge runs the self-correcting layout generation
// pipeline once: perimeter graph JSON in, generation outcome JSON out.
package main

// #region imports
import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/archbom/planforge/internal/config"
	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/generator"
	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/pipeline"
	"github.com/archbom/planforge/internal/provider"
)

// #endregion

// #region main
func main() {
	graphPath := flag.String("graph", "", "path to a perimeter graph JSON file")
	prompt := flag.String("prompt", "", "natural-language layout brief")
	flag.Parse()

	if *graphPath == "" || *prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: planforge -graph <file.json> -prompt <brief>")
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set; layout generation cannot run")
	}

	data, err := os.ReadFile(*graphPath)
	if err != nil {
		log.Fatalf("read perimeter graph: %v", err)
	}
	var graph layout.PerimeterGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		log.Fatalf("decode perimeter graph: %v", err)
	}
	if len(graph.Walls) == 0 {
		log.Fatal("perimeter graph must include at least one wall")
	}

	gen := generator.New(
		provider.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel),
		generator.Config{
			Timeout:    cfg.GenerationTimeout,
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
			MaxDelay:   cfg.RetryMaxDelay,
		})

	p := pipeline.New(gen, constraint.NewChecker(constraint.DefaultConfig()), pipeline.Config{
		MaxIterations:      cfg.MaxIterations,
		ParallelCandidates: cfg.ParallelCandidates,
		MaxWorkers:         cfg.MaxWorkers,
		CandidateMin:       cfg.CandidateMin,
		CandidateMax:       cfg.CandidateMax,
		GridSizeMM:         cfg.GridSizeMM,
	})

	outcome, err := p.Run(context.Background(), graph, *prompt)
	if err != nil {
		log.Fatalf("pipeline aborted: %v", err)
	}

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		log.Fatalf("encode outcome: %v", err)
	}
	fmt.Println(string(out))

	if !outcome.Success {
		os.Exit(1)
	}
}

// #endregion main
