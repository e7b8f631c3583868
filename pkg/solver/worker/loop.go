// Package worker runs the order solver in the background.
//
// [Loop] drives a [solver.State] batch by batch until the best cost stops
// improving. [Worker] wraps it in a goroutine with a single-slot mailbox and
// publishes the best order through an atomic snapshot, so readers such as an
// HTTP handler never block on the search.
package worker

import (
	"context"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gutterview/pkg/observability"
	"github.com/matzehuels/gutterview/pkg/solver"
)

// Snapshot is an immutable view of the best order found so far.
type Snapshot struct {
	RequestID string        `json:"request_id,omitempty"`
	GraphHash string        `json:"graph_hash,omitempty"`
	Version   uint64        `json:"version"`
	Cost      uint32        `json:"cost"`
	Order     []int         `json:"order"`
	Batches   int           `json:"batches"`
	Steps     int           `json:"steps"`
	Elapsed   time.Duration `json:"elapsed"`
	Final     bool          `json:"final"`
}

// LoopOptions bound a call to [Loop].
type LoopOptions struct {
	Steps      int           // Initial steps per batch (solver.DefaultSteps when zero)
	Plateau    time.Duration // Stop after this long without improvement (solver.DefaultPlateau when zero)
	MaxBatches int           // Stop after this many batches; zero means unlimited
	Logger     *log.Logger   // Optional; defaults to a discarding logger
}

// Loop runs batches on st until the plateau is reached, MaxBatches is hit or
// ctx is cancelled. Cancellation is checked between batches only.
//
// publish is called with every improved snapshot and once more with the
// final snapshot (Final set). A graph without edges is published once with
// the identity order and no batches are run.
func Loop(ctx context.Context, st *solver.State, opts LoopOptions, publish func(Snapshot)) (Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if publish == nil {
		publish = func(Snapshot) {}
	}
	hooks := observability.Solver()
	p := st.Problem()
	start := time.Now()

	if p.EdgeCount() == 0 {
		snap := Snapshot{Order: solver.Identity(p.NodeCount()), Version: 1, Final: true}
		publish(snap)
		return snap, nil
	}

	ctrl := solver.NewController(opts.Steps)
	plateau := solver.NewPlateau(opts.Plateau)
	snap := Snapshot{Cost: math.MaxUint32, Order: st.BestOrder()}
	steps := 0
	finish := func() Snapshot {
		if snap.Version == 0 {
			snap.Cost = p.Cost(snap.Order)
		}
		snap.Elapsed = time.Since(start)
		snap.Final = true
		publish(snap)
		return snap
	}

	for batches := 0; ; batches++ {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		if opts.MaxBatches > 0 && batches >= opts.MaxBatches {
			break
		}

		n := ctrl.Steps
		b := st.RunBatch(n)
		steps += n * st.Chains()
		hooks.OnBatch(ctx, st.Chains(), n, b.Elapsed)
		if b.Reseeded > 0 {
			hooks.OnReseed(ctx, b.Reseeded)
			logger.Debug("reseeded chains", "count", b.Reseeded, "best", b.BestCost)
		}

		improved := b.BestCost < snap.Cost
		plateau.Observe(improved, b.Elapsed)
		if improved {
			snap = Snapshot{
				Version: snap.Version + 1,
				Cost:    b.BestCost,
				Order:   slices.Clone(b.BestOrder),
				Batches: batches + 1,
				Steps:   steps,
				Elapsed: time.Since(start),
			}
			hooks.OnImprove(ctx, b.BestCost)
			logger.Debug("improved", "cost", b.BestCost, "batch", batches+1, "steps", n)
			publish(snap)
		} else {
			snap.Batches = batches + 1
			snap.Steps = steps
		}

		if plateau.Done() {
			logger.Debug("plateau reached", "idle", plateau.Elapsed(), "cost", snap.Cost)
			break
		}
		ctrl.Observe(b.Elapsed)
	}

	return finish(), nil
}
