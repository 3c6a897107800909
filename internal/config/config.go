// Package config loads pipeline settings from environment variables,
// with the deployed defaults baked in.
package config

// #region imports
import (
	"os"
	"strconv"
	"time"
)

// #endregion

// #region config

// Config is the full runtime configuration surface.
type Config struct {
	// Provider
	GeminiAPIKey string
	GeminiModel  string

	// Per-call timeout and backoff retry
	GenerationTimeout time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration

	// Loop bounds and adaptive fanout
	MaxIterations      int
	ParallelCandidates int
	MaxWorkers         int
	CandidateMin       int
	CandidateMax       int

	// Snapping
	GridSizeMM int

	// Job queue
	JobsDBPath string
}

// FromEnv reads configuration from the environment, falling back to
// the deployed defaults.
func FromEnv() Config {
	return Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.5-flash"),

		GenerationTimeout: envDuration("GENERATION_TIMEOUT", 60*time.Second),
		MaxRetries:        envInt("GENERATION_MAX_RETRIES", 3),
		RetryBaseDelay:    envDuration("GENERATION_RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:     envDuration("GENERATION_RETRY_MAX_DELAY", 30*time.Second),

		MaxIterations:      envInt("GENERATION_MAX_ITERATIONS", 3),
		ParallelCandidates: envInt("GENERATION_PARALLEL_CANDIDATES", 2),
		MaxWorkers:         envInt("GENERATION_MAX_WORKERS", 4),
		CandidateMin:       envInt("GENERATION_CANDIDATE_MIN", 1),
		CandidateMax:       envInt("GENERATION_CANDIDATE_MAX", 4),

		GridSizeMM: envInt("GRID_SIZE_MM", 50),

		JobsDBPath: envOr("JOBS_DB", "planforge_jobs.db"),
	}
}

// #endregion config

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// #endregion helpers
