package core

import (
	"context"
	"errors"
	"time"

	"github.com/pkgguard/pkgguard/internal/contract"
	"github.com/pkgguard/pkgguard/schema"
)

// Coordinator runs a single-package scan: build context, invoke every
// registered feature, apply the whitelist short-circuit, and score the
// result. The coordinator is single-threaded per scan; the batch
// orchestrator is what runs multiple coordinators concurrently.
type Coordinator struct {
	source    contract.RecipeSource
	registry  *Registry
	filter    ScoreFilter
	whitelist map[string]bool
}

// NewCoordinator builds a Coordinator. whitelist and filter may be the
// zero value (empty maps), meaning nothing is whitelisted or ignored.
func NewCoordinator(source contract.RecipeSource, registry *Registry, filter ScoreFilter, whitelist map[string]bool) *Coordinator {
	if whitelist == nil {
		whitelist = map[string]bool{}
	}
	return &Coordinator{source: source, registry: registry, filter: filter, whitelist: whitelist}
}

// Scan builds a PackageContext for name and scores it. A context-builder
// failure never panics or bubbles a Go error to the caller: it becomes a
// ScanResult with Error set, letting batch and hook logic treat every
// outcome uniformly.
func (c *Coordinator) Scan(ctx context.Context, name string) schema.ScanResult {
	start := time.Now()

	if c.whitelist[name] {
		return schema.ScanResult{
			Package:  name,
			Score:    100,
			Tier:     schema.TierTrusted,
			Duration: time.Since(start),
		}
	}

	pctx, err := c.source.Build(ctx, name)
	if err != nil {
		return schema.ScanResult{
			Package:  name,
			Error:    err.Error(),
			Duration: time.Since(start),
		}
	}

	score, tier, signals := c.score(pctx)
	return schema.ScanResult{
		Package:  name,
		Score:    score,
		Tier:     tier,
		Signals:  signals,
		Duration: time.Since(start),
	}
}

func (c *Coordinator) score(pctx *schema.PackageContext) (int, schema.Tier, []schema.Signal) {
	var signals []schema.Signal
	for _, feature := range c.registry.Features() {
		signals = append(signals, feature.Analyze(pctx)...)
	}
	score, tier := ComputeScore(signals, c.filter)
	return score, tier, signals
}

// buildContext isolates the one step of a scan the batch orchestrator is
// allowed to retry: fetching the recipe and metadata. It never touches the
// whitelist or the scoring pipeline, since those are cheap, local, and
// deterministic.
func (c *Coordinator) buildContext(ctx context.Context, name string) (*schema.PackageContext, error) {
	return c.source.Build(ctx, name)
}

// ScanWithTimeout runs a full scan under a single end-to-end deadline that
// covers the context-build step and every retry, including backoff sleeps.
// When the context-builder step fails with ErrNetworkFailure, it retries
// with a linear backoff (1s, then 2s); any other failure, including the
// deadline itself expiring at any point, is returned immediately as a
// ScanResult with Error set.
func (c *Coordinator) ScanWithTimeout(ctx context.Context, name string, timeout time.Duration) schema.ScanResult {
	start := time.Now()

	if c.whitelist[name] {
		return schema.ScanResult{
			Package:  name,
			Score:    100,
			Tier:     schema.TierTrusted,
			Duration: time.Since(start),
		}
	}

	deadline := time.Now().Add(timeout)
	deadlineCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	backoffs := []time.Duration{time.Second, 2 * time.Second}

	var pctx *schema.PackageContext
	var err error
	for attempt := 0; ; attempt++ {
		pctx, err = c.buildContext(deadlineCtx, name)

		if err == nil {
			break
		}
		if deadlineCtx.Err() != nil {
			return schema.ScanResult{Package: name, Error: "timeout", Duration: time.Since(start)}
		}
		if !errors.Is(err, ErrNetworkFailure) || attempt >= len(backoffs) {
			return schema.ScanResult{Package: name, Error: err.Error(), Duration: time.Since(start)}
		}

		select {
		case <-deadlineCtx.Done():
			return schema.ScanResult{Package: name, Error: "timeout", Duration: time.Since(start)}
		case <-time.After(backoffs[attempt]):
		}
	}

	score, tier, signals := c.score(pctx)
	return schema.ScanResult{
		Package:  name,
		Score:    score,
		Tier:     tier,
		Signals:  signals,
		Duration: time.Since(start),
	}
}
