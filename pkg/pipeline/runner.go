package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gutterview/pkg/cache"
	errs "github.com/matzehuels/gutterview/pkg/errors"
	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/observability"
	"github.com/matzehuels/gutterview/pkg/solver"
	"github.com/matzehuels/gutterview/pkg/solver/worker"
)

const (
	keyTypeOrder   = "order"
	keyTypeDiagram = "diagram"
)

// Solution is a node order and how it was found.
type Solution struct {
	Order    []int         `json:"order"`
	Cost     uint32        `json:"cost"`
	Seed     uint64        `json:"seed,omitempty"`
	Batches  int           `json:"batches"`
	Steps    int           `json:"steps"`
	Elapsed  time.Duration `json:"elapsed"`
	Solved   bool          `json:"solved"` // False when the order was given or the identity
	TimedOut bool          `json:"timed_out,omitempty"`
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete solve → diagram → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, m *graph.Model, opts Options) (*Result, error) {
	if err := checkModel(m); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{
		GraphHash: m.Fingerprint(),
		Stats:     Stats{NodeCount: m.NodeCount(), EdgeCount: m.EdgeCount()},
	}

	// Stage 1: Solve
	solveStart := time.Now()
	sol, hit, err := r.SolveWithCacheInfo(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Solution = sol
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolveHit = hit

	r.Logger.Info("solved order",
		"nodes", m.NodeCount(),
		"edges", m.EdgeCount(),
		"cost", sol.Cost,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	// Stage 2: Diagram
	diagramStart := time.Now()
	d, hit, err := r.DiagramWithCacheInfo(ctx, m, sol.Order, opts)
	if err != nil {
		return nil, fmt.Errorf("diagram: %w", err)
	}
	result.Diagram = d
	result.Stats.DiagramTime = time.Since(diagramStart)
	result.CacheInfo.DiagramHit = hit

	r.Logger.Info("computed diagram",
		"columns", d.Columns,
		"fallback", d.Stats.FallbackTracks,
		"cached", hit,
		"duration", result.Stats.DiagramTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo finds a node order with caching and returns cache hit info.
//
// opts.Order and opts.Identity bypass the solver. Otherwise the solver runs
// until the plateau, opts.MaxBatches or opts.Timeout; reaching the timeout
// is not an error and yields the best order found so far.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, m *graph.Model, opts Options) (Solution, bool, error) {
	if err := checkModel(m); err != nil {
		return Solution{}, false, err
	}
	r.applyLogger(&opts)

	p, err := solver.NewProblem(m.NodeCount(), m.Pairs())
	if err != nil {
		return Solution{}, false, err
	}

	switch {
	case opts.Order != nil:
		cost, err := p.CheckedCost(opts.Order)
		if err != nil {
			return Solution{}, false, err
		}
		return Solution{Order: slices.Clone(opts.Order), Cost: cost}, false, nil
	case opts.Identity:
		order := solver.Identity(m.NodeCount())
		return Solution{Order: order, Cost: p.Cost(order)}, false, nil
	}

	opts.SetSolveDefaults(p)
	hooks := observability.Cache()
	cacheKey := r.Keyer.OrderKey(m.Fingerprint(), opts.OrderKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Solution
			if err := json.Unmarshal(data, &cached); err == nil && solver.ValidateOrder(cached.Order, p.NodeCount()) == nil {
				hooks.OnCacheHit(ctx, keyTypeOrder)
				return cached, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, keyTypeOrder)
	}

	sol, err := r.solve(ctx, p, opts)
	if err != nil {
		return Solution{}, false, err
	}
	// How far a timed-out search got depends on the machine, not the key.
	if sol.TimedOut {
		return sol, false, nil
	}

	if data, err := json.Marshal(sol); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLOrder); err == nil {
			hooks.OnCacheSet(ctx, keyTypeOrder, len(data))
		}
	}
	return sol, false, nil
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, m *graph.Model, opts Options) (Solution, error) {
	sol, _, err := r.SolveWithCacheInfo(ctx, m, opts)
	return sol, err
}

func (r *Runner) solve(ctx context.Context, p *solver.Problem, opts Options) (Solution, error) {
	st, err := solver.Initialize(p, opts.Solver)
	if err != nil {
		return Solution{}, err
	}
	opts.Logger.Debug("solving",
		"nodes", p.NodeCount(),
		"edges", p.EdgeCount(),
		"chains", st.Chains(),
		"seed", opts.Solver.Seed)

	loopCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	snap, err := worker.Loop(loopCtx, st, worker.LoopOptions{
		Steps:      opts.Solver.Steps,
		Plateau:    opts.Plateau,
		MaxBatches: opts.MaxBatches,
		Logger:     opts.Logger,
	}, opts.Progress)
	timedOut := false
	if err != nil {
		if ctx.Err() != nil || !errors.Is(err, context.DeadlineExceeded) {
			return Solution{}, err
		}
		timedOut = true
		opts.Logger.Info("solve timed out, keeping best order", "timeout", opts.Timeout, "cost", snap.Cost)
	}

	return Solution{
		Order:    snap.Order,
		Cost:     snap.Cost,
		Seed:     opts.Solver.Seed,
		Batches:  snap.Batches,
		Steps:    snap.Steps,
		Elapsed:  snap.Elapsed,
		Solved:   true,
		TimedOut: timedOut,
	}, nil
}

// DiagramWithCacheInfo lays out and routes m in the given order with caching
// and returns cache hit info.
func (r *Runner) DiagramWithCacheInfo(ctx context.Context, m *graph.Model, order []int, opts Options) (graph.Diagram, bool, error) {
	if err := checkModel(m); err != nil {
		return graph.Diagram{}, false, err
	}
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Diagram{}, false, err
	}
	if err := solver.ValidateOrder(order, m.NodeCount()); err != nil {
		return graph.Diagram{}, false, err
	}

	hooks := observability.Cache()
	cacheKey := r.Keyer.DiagramKey(m.Fingerprint(), opts.DiagramKeyOpts(order))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graph.UnmarshalDiagram(data); err == nil {
				hooks.OnCacheHit(ctx, keyTypeDiagram)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		hooks.OnCacheMiss(ctx, keyTypeDiagram)
	}

	d, err := BuildDiagram(ctx, m, order, opts)
	if err != nil {
		return graph.Diagram{}, false, err
	}

	if data, err := graph.MarshalDiagram(d); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLDiagram); err == nil {
			hooks.OnCacheSet(ctx, keyTypeDiagram, len(data))
		}
	}
	return d, false, nil
}

// Diagram is a convenience wrapper that calls DiagramWithCacheInfo and discards the cache hit info.
func (r *Runner) Diagram(ctx context.Context, m *graph.Model, order []int, opts Options) (graph.Diagram, error) {
	d, _, err := r.DiagramWithCacheInfo(ctx, m, order, opts)
	return d, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func checkModel(m *graph.Model) error {
	if m == nil || m.NodeCount() == 0 {
		return errs.Wrap(errs.ErrCodeInvalidGraph, solver.ErrNoNodes, "pipeline")
	}
	return nil
}
