// Package generator turns a perimeter graph and a natural-language
// brief into one layout candidate. It owns the hard per-call timeout,
// transient-vs-permanent failure classification, and exponential
// backoff retry around the provider.
package generator

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/provider"
)

// #endregion

// #region config

// Config bounds the provider call.
type Config struct {
	// Timeout is the hard wall-clock limit per provider call.
	Timeout time.Duration
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// BaseDelay is the first backoff delay; each transient failure
	// doubles it up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultConfig mirrors the deployed defaults: 60s per call, 3 retries,
// 1s base delay capped at 30s.
func DefaultConfig() Config {
	return Config{
		Timeout:    60 * time.Second,
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// #endregion config

// #region generator

// Generator produces layout candidates via an external provider.
type Generator struct {
	provider provider.Provider
	cfg      Config

	// sleep is swappable so retry pacing is testable without real time.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a generator around a provider.
func New(p provider.Provider, cfg Config) *Generator {
	return &Generator{
		provider: p,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// #endregion generator

// #region generate

// Generate runs one candidate generation: build the request prompt,
// call the provider with timeout and backoff retry, and parse the
// response into a validated layout.
func (g *Generator) Generate(ctx context.Context, graph layout.PerimeterGraph, prompt string) (layout.Layout, error) {
	req := BuildRequest(graph, prompt)

	resp, err := g.callWithRetry(ctx, provider.Request{Prompt: req.Prompt})
	if err != nil {
		return layout.Layout{}, err
	}

	parsed, err := ParseResponse(resp.Text)
	if err != nil {
		return layout.Layout{}, &provider.PermanentError{Err: err}
	}

	// Backfill pass-through fields the service is allowed to omit.
	if len(parsed.PerimeterWalls) == 0 {
		parsed.PerimeterWalls = req.PerimeterWalls
	}
	if parsed.PageDimensionsMM[0] == 0 && parsed.PageDimensionsMM[1] == 0 {
		parsed.PageDimensionsMM = req.PageDimensionsMM
	}
	if parsed.Prompt == "" {
		parsed.Prompt = prompt
	}

	if err := parsed.Validate(); err != nil {
		return layout.Layout{}, &provider.PermanentError{Err: err}
	}

	return parsed, nil
}

// #endregion generate

// #region call-with-timeout

// callWithTimeout runs one provider call on its own goroutine with a
// hard wall-clock deadline. A hung call is abandoned without affecting
// sibling candidates; the timeout is classified as transient.
func (g *Generator) callWithTimeout(ctx context.Context, req provider.Request) (provider.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	type result struct {
		resp provider.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := g.provider.Generate(callCtx, req)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return provider.Response{}, &provider.TransientError{
				Err: fmt.Errorf("generation call timed out after %s", g.cfg.Timeout),
			}
		}
		return provider.Response{}, callCtx.Err()
	}
}

// #endregion call-with-timeout

// #region call-with-retry

// callWithRetry retries transient failures with exponential backoff:
// delay = min(base * 2^(attempt-1), cap). Permanent failures propagate
// immediately without a retry.
func (g *Generator) callWithRetry(ctx context.Context, req provider.Request) (provider.Response, error) {
	attempts := g.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := g.callWithTimeout(ctx, req)
		if err == nil {
			return resp, nil
		}

		var transient *provider.TransientError
		if !errors.As(err, &transient) {
			var permanent *provider.PermanentError
			if errors.As(err, &permanent) {
				return provider.Response{}, err
			}
			return provider.Response{}, &provider.PermanentError{Err: err}
		}

		lastErr = err
		if attempt < attempts {
			delay := g.backoffDelay(attempt)
			log.Printf("[GEN] attempt %d/%d failed (%v); retrying in %s", attempt, attempts, err, delay)
			if sleepErr := g.sleep(ctx, delay); sleepErr != nil {
				return provider.Response{}, sleepErr
			}
		} else {
			log.Printf("[GEN] call failed after %d attempts: %v", attempts, err)
		}
	}

	return provider.Response{}, fmt.Errorf("generation failed after %d attempts: %w", attempts, lastErr)
}

func (g *Generator) backoffDelay(attempt int) time.Duration {
	delay := g.cfg.BaseDelay << (attempt - 1)
	if delay > g.cfg.MaxDelay {
		delay = g.cfg.MaxDelay
	}
	return delay
}

// #endregion call-with-retry

// #region parse

// ParseResponse decodes provider text into a layout and applies schema
// defaults. A payload that is not valid JSON matching the layout shape
// is a permanent parse failure.
func ParseResponse(text string) (layout.Layout, error) {
	if text == "" {
		return layout.Layout{}, fmt.Errorf("provider response is empty")
	}

	var parsed layout.Layout
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return layout.Layout{}, fmt.Errorf("provider returned non-layout payload: %w", err)
	}
	parsed.ApplyDefaults()
	return parsed, nil
}

// #endregion parse
