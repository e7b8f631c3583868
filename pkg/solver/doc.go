// Package solver finds node orders with a small total edge span.
//
// # Overview
//
// The minimum linear arrangement (MinLA) of a graph is the permutation of its
// nodes that minimizes
//
//	Σ |pos(u) - pos(v)|  over all edges (u, v)
//
// The problem is NP-hard, so this package approximates it with parallel
// simulated annealing. A [State] owns a batch of independent [Chain] values.
// Each chain starts from its own shuffled order and repeatedly proposes
// swapping two positions, evaluating the change in O(deg(u)+deg(v)) using a
// CSR adjacency built once by [NewProblem].
//
// # Running
//
// [Initialize] creates the chains and [State.RunBatch] advances all of them a
// fixed number of steps in parallel, then reduces to the best chain:
//
//	p, _ := solver.NewProblem(n, edges)
//	st, _ := solver.Initialize(p, solver.DefaultConfig())
//	for !plateau.Done() {
//	    b := st.RunBatch(steps)
//	    ...
//	}
//
// After every batch, chains that have been stuck for ReseedPlateauSteps and
// have not yet seen the current global best are restarted from it.
//
// # Temperature
//
// Each chain keeps a temperature T and a floor. T decays geometrically
// towards the floor with a cooling rate that adapts to the observed
// acceptance ratio. Improvements lower the floor and stagnation raises it,
// which reheats chains that stopped making progress.
//
// [EstimateInitialTemp] derives a starting temperature from sampled swap
// deltas so that roughly the target fraction of uphill moves is accepted.
//
// # Determinism
//
// Every random choice comes from a per-chain 32-bit LCG. With BatchSize 1,
// the same problem, seed and sequence of step counts always produce the
// same orders. [State.Trace] observes individual steps.
package solver
