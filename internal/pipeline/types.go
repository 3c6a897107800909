// Package pipeline drives the self-correcting generate → snap →
// validate → select → feedback loop and its adaptive fanout controller.
package pipeline

// #region imports
import (
	"context"

	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/layout"
)

// #endregion

// #region candidate-generator

// CandidateGenerator is the narrow seam between the loop and the
// external service so the orchestration logic runs against scripted
// stand-ins in tests.
type CandidateGenerator interface {
	Generate(ctx context.Context, graph layout.PerimeterGraph, prompt string) (layout.Layout, error)
}

// #endregion candidate-generator

// #region config

// Config bounds one pipeline run.
type Config struct {
	// MaxIterations is the retry budget of the loop.
	MaxIterations int
	// ParallelCandidates is the requested fanout. 1 means serial mode:
	// the controller never adapts.
	ParallelCandidates int
	// MaxWorkers caps the per-iteration worker pool.
	MaxWorkers int
	// CandidateMin/CandidateMax clamp every fanout decision.
	CandidateMin int
	CandidateMax int
	// GridSizeMM is the snapping pitch applied to every candidate.
	GridSizeMM int
}

// DefaultConfig mirrors the deployed defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations:      3,
		ParallelCandidates: 1,
		MaxWorkers:         4,
		CandidateMin:       1,
		CandidateMax:       4,
		GridSizeMM:         50,
	}
}

// #endregion config

// #region outcome

// Outcome is the single value a pipeline run returns to callers. It is
// assembled once at loop exit and must not be mutated downstream.
type Outcome struct {
	// Layout is the winning candidate, or the last selected candidate
	// when the run failed. Nil only if no candidate ever succeeded
	// snapping and validation.
	Layout *layout.Layout `json:"layout,omitempty"`
	// Success is true iff a candidate passed validation in budget.
	Success bool `json:"success"`
	// IterationsUsed counts loop iterations consumed.
	IterationsUsed int `json:"iterations_used"`
	// ConstraintHistory holds one verdict per iteration, for that
	// iteration's selected candidate.
	ConstraintHistory []constraint.Verdict `json:"constraint_history"`
	// ErrorMessage is set on exhaustion.
	ErrorMessage string `json:"error_message,omitempty"`
}

// #endregion outcome
