// Package replay runs the full snap → validate → select → feedback
// loop over scripted candidate layouts, with no live provider. It
// exists for offline regression of the orchestration logic.
package replay

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/pipeline"
)

// #endregion

// #region scripted-generator

// ScriptedResponse is one pre-recorded generator outcome: either a
// layout or an error message.
type ScriptedResponse struct {
	Layout *layout.Layout `json:"layout,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ScriptedGenerator replays recorded responses in order. Candidates
// within an iteration run concurrently, so consumption is locked; the
// loop's selection logic does not depend on completion order.
type ScriptedGenerator struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	calls     int
}

// NewScriptedGenerator wraps a response script.
func NewScriptedGenerator(responses []ScriptedResponse) *ScriptedGenerator {
	return &ScriptedGenerator{responses: responses}
}

// Calls returns how many generate calls were consumed.
func (g *ScriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Generate pops the next scripted response.
func (g *ScriptedGenerator) Generate(_ context.Context, _ layout.PerimeterGraph, _ string) (layout.Layout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.calls >= len(g.responses) {
		return layout.Layout{}, errors.New("replay: script exhausted")
	}
	resp := g.responses[g.calls]
	g.calls++

	if resp.Error != "" {
		return layout.Layout{}, fmt.Errorf("replay: scripted failure: %s", resp.Error)
	}
	if resp.Layout == nil {
		return layout.Layout{}, errors.New("replay: scripted response has no layout")
	}
	return resp.Layout.Clone(), nil
}

// #endregion scripted-generator

// #region run

// Run replays a fixture through the real pipeline with the default
// constraint thresholds.
func Run(fixture Fixture) (pipeline.Outcome, error) {
	gen := NewScriptedGenerator(fixture.Responses)
	checker := constraint.NewChecker(constraint.DefaultConfig())

	cfg := fixture.Config
	if cfg == (pipeline.Config{}) {
		cfg = pipeline.DefaultConfig()
	}

	p := pipeline.New(gen, checker, cfg)
	return p.Run(context.Background(), fixture.Graph, fixture.Prompt)
}

// #endregion run
