package pipeline

// #region imports
import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/snap"
)

// #endregion

// #region pipeline

// Pipeline runs the self-correcting generation loop.
type Pipeline struct {
	gen     CandidateGenerator
	checker *constraint.Checker
	cfg     Config
}

// New wires a pipeline from a candidate generator, a checker, and loop
// bounds.
func New(gen CandidateGenerator, checker *constraint.Checker, cfg Config) *Pipeline {
	return &Pipeline{gen: gen, checker: checker, cfg: cfg}
}

// #endregion pipeline

// #region candidate

// candidate is one scored proposal within an iteration.
type candidate struct {
	index   int
	layout  layout.Layout
	verdict constraint.Verdict
}

// better reports whether a ranks strictly before b: lexicographic on
// (errors, warnings), ties broken by candidate index so selection is
// independent of completion order.
func (a candidate) better(b candidate) bool {
	aErr, aWarn := a.verdict.Score()
	bErr, bWarn := b.verdict.Score()
	if aErr != bErr {
		return aErr < bErr
	}
	if aWarn != bWarn {
		return aWarn < bWarn
	}
	return a.index < b.index
}

// #endregion candidate

// #region run

// Run executes up to cfg.MaxIterations of generate → snap → validate →
// select → feedback. It returns the outcome for every terminal state
// except "all candidates in an iteration failed at generation", which
// aborts the run with an error.
func (p *Pipeline) Run(ctx context.Context, graph layout.PerimeterGraph, prompt string) (Outcome, error) {
	if p.cfg.MaxIterations <= 0 {
		return Outcome{}, fmt.Errorf("pipeline: max_iterations must be at least 1")
	}
	if p.cfg.ParallelCandidates <= 0 {
		return Outcome{}, fmt.Errorf("pipeline: parallel_candidates must be at least 1")
	}
	if p.cfg.MaxWorkers <= 0 {
		return Outcome{}, fmt.Errorf("pipeline: max_workers must be at least 1")
	}
	if p.cfg.GridSizeMM <= 0 {
		return Outcome{}, fmt.Errorf("pipeline: grid_size_mm must be at least 1")
	}

	var history []constraint.Verdict
	var lastSelected *layout.Layout
	currentPrompt := prompt

	// Serial mode is the caller's choice and never adapts. A parallel
	// run starts from the configured count and lets the controller
	// adjust it between iterations, including back up from a count
	// that failures decayed to 1.
	serial := p.cfg.ParallelCandidates == 1
	fanout := 1
	if !serial {
		fanout = NextFanout(p.cfg.ParallelCandidates, nil, 0, 0, p.cfg.CandidateMin, p.cfg.CandidateMax)
	}

	for iteration := 1; iteration <= p.cfg.MaxIterations; iteration++ {
		log.Printf("[PIPE] iteration %d/%d: dispatching %d candidate(s)",
			iteration, p.cfg.MaxIterations, fanout)

		candidates, failures := p.runIteration(ctx, graph, currentPrompt, fanout)

		if len(candidates) == 0 {
			firstErr := fmt.Errorf("no candidates produced")
			if len(failures) > 0 {
				firstErr = failures[0]
			}
			return Outcome{}, fmt.Errorf("all generation candidates failed: %w", firstErr)
		}

		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.better(best) {
				best = c
			}
		}

		history = append(history, best.verdict)
		selected := best.layout
		lastSelected = &selected

		errCount, warnCount := best.verdict.Score()
		log.Printf("[PIPE] iteration %d: selected candidate %d (%d errors, %d warnings, %d generation failures)",
			iteration, best.index, errCount, warnCount, len(failures))

		if best.verdict.Passed {
			return Outcome{
				Layout:            lastSelected,
				Success:           true,
				IterationsUsed:    iteration,
				ConstraintHistory: history,
			}, nil
		}

		currentPrompt = buildFeedbackPrompt(prompt, best.layout, best.verdict)
		if !serial {
			fanout = NextFanout(fanout, &best.verdict, len(failures), fanout,
				p.cfg.CandidateMin, p.cfg.CandidateMax)
		}
	}

	return Outcome{
		Layout:            lastSelected,
		Success:           false,
		IterationsUsed:    p.cfg.MaxIterations,
		ConstraintHistory: history,
		ErrorMessage:      fmt.Sprintf("Layout failed validation after %d attempts", p.cfg.MaxIterations),
	}, nil
}

// #endregion run

// #region run-iteration

// runIteration dispatches count candidates, each generated, snapped,
// and validated on its own worker, and blocks until all complete. A
// single candidate runs inline without a pool. There is no
// first-success short-circuit: a faster-but-worse candidate must not
// preempt scoring of a slower-but-better one.
func (p *Pipeline) runIteration(ctx context.Context, graph layout.PerimeterGraph, basePrompt string, count int) ([]candidate, []error) {
	if count == 1 {
		c, err := p.generateAndValidate(ctx, graph, basePrompt)
		if err != nil {
			return nil, []error{err}
		}
		c.index = 1
		return []candidate{c}, nil
	}

	workers := int64(p.cfg.MaxWorkers)
	if int64(count) < workers {
		workers = int64(count)
	}
	sem := semaphore.NewWeighted(workers)

	var mu sync.Mutex
	var candidates []candidate
	var failures []error
	var wg sync.WaitGroup

	for i := 1; i <= count; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			c, err := p.generateAndValidate(ctx, graph, candidatePrompt(basePrompt, index, count))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			c.index = index
			candidates = append(candidates, c)
		}(i)
	}
	wg.Wait()

	return candidates, failures
}

// generateAndValidate runs one candidate end to end so a late failure
// in one candidate never blocks scoring of the others.
func (p *Pipeline) generateAndValidate(ctx context.Context, graph layout.PerimeterGraph, prompt string) (candidate, error) {
	raw, err := p.gen.Generate(ctx, graph, prompt)
	if err != nil {
		return candidate{}, err
	}

	snapped, err := snap.Layout(raw, p.cfg.GridSizeMM)
	if err != nil {
		return candidate{}, err
	}

	return candidate{
		layout:  snapped,
		verdict: p.checker.Validate(snapped),
	}, nil
}

// #endregion run-iteration
