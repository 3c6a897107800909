package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/provider"
)

const validLayoutJSON = `{
  "rooms": [
    {"name": "Operatory 1", "room_type": "operatory",
     "boundary": [[0,0],[3000,0],[3000,3200],[0,3200],[0,0]],
     "area_sqm": 9.6}
  ],
  "interior_walls": [
    {"id": "iw_1", "x1": 3000, "y1": 0, "x2": 3000, "y2": 6000,
     "thickness_mm": 100, "material": "drywall"}
  ],
  "doors": [],
  "fixtures": [],
  "grid_size_mm": 50
}`

// scriptedProvider returns queued responses in order and records calls.
// Abandoned timed-out calls may still be running, hence the lock.
type scriptedProvider struct {
	mu      sync.Mutex
	results []func() (provider.Response, error)
	calls   int
}

func (p *scriptedProvider) Generate(ctx context.Context, _ provider.Request) (provider.Response, error) {
	p.mu.Lock()
	if p.calls >= len(p.results) {
		p.mu.Unlock()
		return provider.Response{}, errors.New("scripted provider exhausted")
	}
	r := p.results[p.calls]
	p.calls++
	p.mu.Unlock()
	return r()
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func ok(text string) func() (provider.Response, error) {
	return func() (provider.Response, error) { return provider.Response{Text: text}, nil }
}

func transient(msg string) func() (provider.Response, error) {
	return func() (provider.Response, error) {
		return provider.Response{}, &provider.TransientError{Err: errors.New(msg)}
	}
}

func permanent(msg string) func() (provider.Response, error) {
	return func() (provider.Response, error) {
		return provider.Response{}, &provider.PermanentError{Err: errors.New(msg)}
	}
}

// newTestGenerator swaps real sleeping for delay recording.
func newTestGenerator(p provider.Provider, cfg Config) (*Generator, *[]time.Duration) {
	g := New(p, cfg)
	var delays []time.Duration
	g.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return g, &delays
}

func testGraph() layout.PerimeterGraph {
	return layout.PerimeterGraph{
		Walls: []layout.WallSegment{
			{X1: 0, Y1: 0, X2: 1000, Y2: 0, LengthPts: 1000, Thickness: 10},
			{X1: 1000, Y1: 0, X2: 1000, Y2: 800, LengthPts: 800, Thickness: 10},
		},
		PageDimensions: [2]float64{1000, 800},
	}
}

func TestGenerate_Success(t *testing.T) {
	p := &scriptedProvider{results: []func() (provider.Response, error){ok(validLayoutJSON)}}
	g, _ := newTestGenerator(p, DefaultConfig())

	got, err := g.Generate(context.Background(), testGraph(), "one operatory")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1", p.callCount())
	}
	if len(got.Rooms) != 1 || got.Rooms[0].Name != "Operatory 1" {
		t.Errorf("rooms = %+v", got.Rooms)
	}
	// Omitted pass-through fields are backfilled from the request.
	if len(got.PerimeterWalls) != 2 {
		t.Errorf("perimeter walls = %d, want 2 backfilled", len(got.PerimeterWalls))
	}
	if got.PageDimensionsMM != [2]float64{1000, 800} {
		t.Errorf("page dimensions = %v", got.PageDimensionsMM)
	}
	if got.Prompt != "one operatory" {
		t.Errorf("prompt = %q", got.Prompt)
	}
}

func TestGenerate_RetriesTransientWithBackoff(t *testing.T) {
	p := &scriptedProvider{results: []func() (provider.Response, error){
		transient("overloaded"),
		transient("overloaded"),
		ok(validLayoutJSON),
	}}
	g, delays := newTestGenerator(p, DefaultConfig())

	if _, err := g.Generate(context.Background(), testGraph(), "one operatory"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.callCount() != 3 {
		t.Errorf("provider calls = %d, want 3", p.callCount())
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("delay[%d] = %s, want %s", i, (*delays)[i], d)
		}
	}
}

func TestGenerate_PermanentNotRetried(t *testing.T) {
	p := &scriptedProvider{results: []func() (provider.Response, error){
		permanent("api key rejected"),
		ok(validLayoutJSON),
	}}
	g, delays := newTestGenerator(p, DefaultConfig())

	_, err := g.Generate(context.Background(), testGraph(), "one operatory")
	if err == nil {
		t.Fatal("want error")
	}
	var perm *provider.PermanentError
	if !errors.As(err, &perm) {
		t.Errorf("error = %v, want permanent", err)
	}
	if p.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1", p.callCount())
	}
	if len(*delays) != 0 {
		t.Errorf("slept %v on a permanent failure", *delays)
	}
}

func TestGenerate_RetriesExhausted(t *testing.T) {
	p := &scriptedProvider{results: []func() (provider.Response, error){
		transient("overloaded"), transient("overloaded"),
		transient("overloaded"), transient("overloaded"),
	}}
	g, delays := newTestGenerator(p, DefaultConfig())

	_, err := g.Generate(context.Background(), testGraph(), "one operatory")
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "generation failed after 4 attempts") {
		t.Errorf("error = %v", err)
	}
	if p.callCount() != 4 {
		t.Errorf("provider calls = %d, want MaxRetries+1 = 4", p.callCount())
	}
	if len(*delays) != 3 {
		t.Errorf("slept %d times, want 3", len(*delays))
	}
}

func TestGenerate_BackoffCappedAtMaxDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 6
	cfg.MaxDelay = 4 * time.Second
	results := make([]func() (provider.Response, error), 7)
	for i := range results {
		results[i] = transient("overloaded")
	}
	g, delays := newTestGenerator(&scriptedProvider{results: results}, cfg)

	if _, err := g.Generate(context.Background(), testGraph(), "x"); err == nil {
		t.Fatal("want error")
	}
	want := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second,
		4 * time.Second, 4 * time.Second, 4 * time.Second,
	}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v", *delays)
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("delay[%d] = %s, want %s", i, (*delays)[i], d)
		}
	}
}

func TestGenerate_TimeoutIsTransient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxRetries = 1

	hang := func() (provider.Response, error) {
		time.Sleep(200 * time.Millisecond)
		return provider.Response{}, errors.New("too late")
	}
	p := &scriptedProvider{results: []func() (provider.Response, error){hang, ok(validLayoutJSON)}}
	g, delays := newTestGenerator(p, cfg)

	if _, err := g.Generate(context.Background(), testGraph(), "x"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(*delays) != 1 {
		t.Errorf("timed-out attempt not retried: delays = %v", *delays)
	}
}

func TestGenerate_NonLayoutPayloadIsPermanent(t *testing.T) {
	p := &scriptedProvider{results: []func() (provider.Response, error){ok("this is not json")}}
	g, _ := newTestGenerator(p, DefaultConfig())

	_, err := g.Generate(context.Background(), testGraph(), "x")
	var perm *provider.PermanentError
	if !errors.As(err, &perm) {
		t.Errorf("error = %v, want permanent parse failure", err)
	}
}

func TestGenerate_InvalidLayoutIsPermanent(t *testing.T) {
	// Open boundary fails structural validation after a clean parse.
	bad := `{"rooms": [{"name": "R", "room_type": "office",
		"boundary": [[0,0],[1,0],[1,1],[0,1]], "area_sqm": 1}]}`
	p := &scriptedProvider{results: []func() (provider.Response, error){ok(bad)}}
	g, _ := newTestGenerator(p, DefaultConfig())

	_, err := g.Generate(context.Background(), testGraph(), "x")
	var perm *provider.PermanentError
	if !errors.As(err, &perm) {
		t.Fatalf("error = %v, want permanent", err)
	}
	var verr *layout.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error = %v, want a wrapped validation error", err)
	}
}

func TestParseResponse(t *testing.T) {
	got, err := ParseResponse(`{"rooms": [], "interior_walls": [{"id": "iw_1", "x1": 0, "y1": 0, "x2": 100, "y2": 0}]}`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got.GridSizeMM != 50 {
		t.Errorf("grid default = %d, want 50", got.GridSizeMM)
	}
	if got.InteriorWalls[0].ThicknessMM != 100 || got.InteriorWalls[0].Material != "drywall" {
		t.Errorf("wall defaults = %+v", got.InteriorWalls[0])
	}

	if _, err := ParseResponse(""); err == nil {
		t.Error("empty response must fail")
	}
}
