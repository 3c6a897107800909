// Command worker polls the SQLite job queue and executes generate
// jobs through the pipeline. A failing job is persisted as failed; the
// worker itself stays alive.
package main

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/archbom/planforge/internal/config"
	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/generator"
	"github.com/archbom/planforge/internal/jobs"
	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/pipeline"
	"github.com/archbom/planforge/internal/provider"
)

// #endregion

// #region payload

// generatePayload is the queued job input.
type generatePayload struct {
	PerimeterGraph layout.PerimeterGraph `json:"perimeter_graph"`
	Prompt         string                `json:"prompt"`
}

// #endregion payload

// #region main
func main() {
	cfg := config.FromEnv()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set; the worker cannot run generate jobs")
	}

	store, err := jobs.NewStore(cfg.JobsDBPath)
	if err != nil {
		log.Fatalf("open jobs store: %v", err)
	}
	defer store.Close()

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

	log.Printf("[JOBS] worker started (db=%s)", cfg.JobsDBPath)

	for {
		job, err := store.NextQueued()
		if errors.Is(err, jobs.ErrNoQueuedJobs) {
			time.Sleep(2 * time.Second)
			continue
		}
		if err != nil {
			log.Printf("[JOBS] queue poll failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		runJob(store, p, job)
	}
}

// #endregion main

// #region run-job

// runJob executes one job end to end and persists the outcome. It must
// not panic or exit: every failure mode becomes a failed job record.
func runJob(store *jobs.Store, p *pipeline.Pipeline, job jobs.Job) {
	if err := store.MarkRunning(job.ID); err != nil {
		log.Printf("[JOBS] cannot start job %s: %v", job.ID, err)
		return
	}
	log.Printf("[JOBS] starting job %s (type=%s)", job.ID, job.Type)

	if job.Type != jobs.JobGenerate {
		failJob(store, job.ID, fmt.Sprintf("unknown job type %q", job.Type))
		return
	}

	var payload generatePayload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		failJob(store, job.ID, fmt.Sprintf("invalid payload: %v", err))
		return
	}
	if payload.Prompt == "" {
		failJob(store, job.ID, "payload has no prompt")
		return
	}

	outcome, err := p.Run(context.Background(), payload.PerimeterGraph, payload.Prompt)
	if err != nil {
		failJob(store, job.ID, err.Error())
		return
	}

	result, err := json.Marshal(outcome)
	if err != nil {
		failJob(store, job.ID, fmt.Sprintf("encode outcome: %v", err))
		return
	}

	if err := store.MarkSucceeded(job.ID, string(result)); err != nil {
		log.Printf("[JOBS] cannot finish job %s: %v", job.ID, err)
		return
	}
	log.Printf("[JOBS] job %s succeeded (iterations=%d, success=%v)",
		job.ID, outcome.IterationsUsed, outcome.Success)
}

func failJob(store *jobs.Store, jobID, message string) {
	if err := store.MarkFailed(jobID, message); err != nil {
		log.Printf("[JOBS] cannot mark job %s failed: %v", jobID, err)
		return
	}
	log.Printf("[JOBS] job %s failed: %s", jobID, message)
}

// #endregion run-job
