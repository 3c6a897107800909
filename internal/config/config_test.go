package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "GENERATION_TIMEOUT",
		"GENERATION_MAX_RETRIES", "GENERATION_MAX_ITERATIONS",
		"GENERATION_PARALLEL_CANDIDATES", "GRID_SIZE_MM", "JOBS_DB",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("model = %q", cfg.GeminiModel)
	}
	if cfg.GenerationTimeout != 60*time.Second || cfg.MaxRetries != 3 {
		t.Errorf("retry config = %+v", cfg)
	}
	if cfg.RetryBaseDelay != time.Second || cfg.RetryMaxDelay != 30*time.Second {
		t.Errorf("backoff config = %+v", cfg)
	}
	if cfg.MaxIterations != 3 || cfg.ParallelCandidates != 2 || cfg.MaxWorkers != 4 {
		t.Errorf("loop config = %+v", cfg)
	}
	if cfg.CandidateMin != 1 || cfg.CandidateMax != 4 {
		t.Errorf("fanout clamp = %+v", cfg)
	}
	if cfg.GridSizeMM != 50 {
		t.Errorf("grid = %d", cfg.GridSizeMM)
	}
	if cfg.JobsDBPath != "planforge_jobs.db" {
		t.Errorf("jobs db = %q", cfg.JobsDBPath)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("GENERATION_TIMEOUT", "90s")
	t.Setenv("GENERATION_MAX_RETRIES", "5")
	t.Setenv("GENERATION_PARALLEL_CANDIDATES", "3")
	t.Setenv("GRID_SIZE_MM", "100")

	cfg := FromEnv()
	if cfg.GeminiAPIKey != "k-123" || cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("provider config = %+v", cfg)
	}
	if cfg.GenerationTimeout != 90*time.Second || cfg.MaxRetries != 5 {
		t.Errorf("retry config = %+v", cfg)
	}
	if cfg.ParallelCandidates != 3 || cfg.GridSizeMM != 100 {
		t.Errorf("loop config = %+v", cfg)
	}
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("GENERATION_TIMEOUT", "soon")
	t.Setenv("GENERATION_MAX_RETRIES", "many")

	cfg := FromEnv()
	if cfg.GenerationTimeout != 60*time.Second {
		t.Errorf("timeout = %s", cfg.GenerationTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("retries = %d", cfg.MaxRetries)
	}
}
