package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/pipeline"
)

// #endregion

// #region fixture

// Fixture is the top-level JSON structure for a replay run: the
// read-only inputs, the loop bounds, and the scripted responses
// consumed in call order.
type Fixture struct {
	Description string                `json:"description"`
	Graph       layout.PerimeterGraph `json:"perimeter_graph"`
	Prompt      string                `json:"prompt"`
	Config      pipeline.Config       `json:"config"`
	Responses   []ScriptedResponse    `json:"responses"`

	// Expected outcome, checked by the replay CLI.
	ExpectSuccess    *bool `json:"expect_success,omitempty"`
	ExpectIterations *int  `json:"expect_iterations,omitempty"`
}

// #endregion fixture

// #region load

// LoadFixture reads and decodes a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}

	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	if fixture.Prompt == "" {
		return Fixture{}, fmt.Errorf("fixture %s has no prompt", path)
	}
	if len(fixture.Responses) == 0 {
		return Fixture{}, fmt.Errorf("fixture %s has no scripted responses", path)
	}
	return fixture, nil
}

// Check compares an outcome against the fixture's expectations.
func (f Fixture) Check(outcome pipeline.Outcome) error {
	if f.ExpectSuccess != nil && outcome.Success != *f.ExpectSuccess {
		return fmt.Errorf("expected success=%v, got %v", *f.ExpectSuccess, outcome.Success)
	}
	if f.ExpectIterations != nil && outcome.IterationsUsed != *f.ExpectIterations {
		return fmt.Errorf("expected iterations_used=%d, got %d", *f.ExpectIterations, outcome.IterationsUsed)
	}
	return nil
}

// #endregion load
