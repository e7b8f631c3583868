package solver

import (
	"math"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/gutterview/pkg/errors"
)

// State is a batch of annealing chains for one problem.
//
// A State is not safe for concurrent use. RunBatch parallelizes internally;
// callers must not invoke it from several goroutines at once.
type State struct {
	problem *Problem
	config  Config
	chains  []*Chain

	resetFloor  float64
	bestCost    uint32
	bestOrder   []int
	bestVersion uint64
	batches     int

	// Trace, when set, is called after every step. Chains then run
	// sequentially on the caller's goroutine, in chain order.
	Trace func(TraceEvent)
}

// Batch summarizes one call to [State.RunBatch].
type Batch struct {
	BestCost  uint32        // Lowest best cost over all chains
	BestIndex int           // Chain holding BestCost
	BestOrder []int         // Copy of that chain's best order
	Elapsed   time.Duration // Wall time of the batch, reseeding included
	Accepted  int           // Accepted moves over all chains
	Reseeded  int           // Chains restarted from the global best
	Improved  bool          // Whether the global best improved in this batch
}

// Initialize creates cfg.BatchSize chains for p.
//
// A zero cfg.InitialTemp is replaced by [EstimateInitialTemp]. Every chain
// starts from its own shuffle derived from cfg.Seed and the chain index.
func Initialize(p *Problem, cfg Config) (*State, error) {
	cfg = cfg.Normalize()
	if cfg.BatchSize == 0 {
		return nil, errs.Wrap(errs.ErrCodeInvalidOptions, ErrZeroBatch, "initialize solver")
	}
	if p == nil || p.n == 0 {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, ErrNoNodes, "initialize solver")
	}

	initial := cfg.InitialTemp
	if initial == 0 {
		initial = EstimateInitialTemp(p, cfg.Seed, cfg.TargetAcceptance)
	}
	temp := max(initial, MinTemp)
	floor := clamp(initial*cfg.FloorFraction, MinTemp, temp)

	seed32 := seedTo32(cfg.Seed)
	chains := make([]*Chain, cfg.BatchSize)
	for k := range chains {
		chains[k] = newChain(p, k, seed32, temp, floor, cfg.Cooling)
	}

	return &State{
		problem:    p,
		config:     cfg,
		chains:     chains,
		resetFloor: floor,
		bestCost:   math.MaxUint32,
	}, nil
}

// RunBatch advances every chain by steps iterations, then reduces to the
// best chain and reseeds stagnant chains from it.
func (s *State) RunBatch(steps int) Batch {
	start := time.Now()
	steps = max(steps, 0)

	accepted := make([]int, len(s.chains))
	if s.Trace != nil {
		for k, c := range s.chains {
			accepted[k] = c.run(s.problem, &s.config, steps, k, s.Trace)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for k, c := range s.chains {
			g.Go(func() error {
				accepted[k] = c.run(s.problem, &s.config, steps, k, nil)
				return nil
			})
		}
		_ = g.Wait()
	}

	bestIndex := 0
	for k, c := range s.chains {
		if c.bestCost < s.chains[bestIndex].bestCost {
			bestIndex = k
		}
	}
	leader := s.chains[bestIndex]

	improved := false
	if leader.bestCost < s.bestCost {
		s.bestCost = leader.bestCost
		s.bestOrder = slices.Clone(leader.best)
		s.bestVersion++
		improved = true
	}
	reseeded := s.reseed(bestIndex)
	s.batches++

	total := 0
	for _, a := range accepted {
		total += a
	}

	return Batch{
		BestCost:  leader.bestCost,
		BestIndex: bestIndex,
		BestOrder: slices.Clone(leader.best),
		Elapsed:   time.Since(start),
		Accepted:  total,
		Reseeded:  reseeded,
		Improved:  improved,
	}
}

// reseed restarts chains that have been stuck for ReseedPlateauSteps and
// have not adopted the current global best yet. The leader is stamped first,
// so it never re-adopts its own best.
func (s *State) reseed(bestIndex int) int {
	leader := s.chains[bestIndex]
	leader.seedVersion = s.bestVersion

	if len(s.chains) < 2 || !s.config.Reheat {
		return 0
	}

	count := 0
	for k, c := range s.chains {
		if k == bestIndex {
			continue
		}
		if c.stagnant < s.config.ReseedPlateauSteps || c.seedVersion >= s.bestVersion {
			continue
		}
		c.adopt(leader.best, leader.bestCost, s.resetFloor, s.bestVersion)
		count++
	}
	return count
}

// Problem returns the problem the state was initialized for.
func (s *State) Problem() *Problem { return s.problem }

// Config returns the normalized configuration.
func (s *State) Config() Config { return s.config }

// Chains returns the number of chains.
func (s *State) Chains() int { return len(s.chains) }

// Chain returns chain k for inspection. The chain must not be advanced
// directly.
func (s *State) Chain(k int) *Chain { return s.chains[k] }

// ChainBestCosts returns the best cost of every chain.
func (s *State) ChainBestCosts() []uint32 {
	out := make([]uint32, len(s.chains))
	for k, c := range s.chains {
		out[k] = c.bestCost
	}
	return out
}

// BestCost returns the lowest cost observed after any batch, or
// math.MaxUint32 before the first batch.
func (s *State) BestCost() uint32 { return s.bestCost }

// BestOrder returns a copy of the best order observed after any batch.
// Before the first batch it returns the best initial shuffle.
func (s *State) BestOrder() []int {
	if s.bestOrder == nil {
		best := s.chains[0]
		for _, c := range s.chains[1:] {
			if c.bestCost < best.bestCost {
				best = c
			}
		}
		return slices.Clone(best.best)
	}
	return slices.Clone(s.bestOrder)
}

// BestVersion counts improvements of the global best.
func (s *State) BestVersion() uint64 { return s.bestVersion }

// Batches returns the number of completed batches.
func (s *State) Batches() int { return s.batches }
