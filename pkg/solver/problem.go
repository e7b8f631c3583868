package solver

import (
	"errors"
	"math"

	errs "github.com/matzehuels/gutterview/pkg/errors"
)

var (
	// ErrNoNodes is returned when a problem or state is built for an empty graph.
	// An empty graph has exactly one (empty) order and nothing to optimize.
	ErrNoNodes = errors.New("graph must have at least one node")

	// ErrZeroBatch is returned by [Initialize] when the configured batch size is zero.
	ErrZeroBatch = errors.New("batch size must be > 0")

	// ErrEdgeOutOfRange is returned by [NewProblem] when an edge references a
	// node index outside [0, nodeCount).
	ErrEdgeOutOfRange = errors.New("edge endpoint out of range")
)

// Problem is an immutable MinLA instance in CSR form.
//
// Neighbours of node u are list[offsets[u]:offsets[u+1]]. Every undirected
// edge appears in the neighbour lists of both endpoints, once per occurrence,
// so duplicate edges weigh proportionally.
type Problem struct {
	n       int
	edges   [][2]int
	offsets []int
	list    []int
}

// NewProblem builds the adjacency for a graph with nodeCount nodes.
// Self-loops contribute nothing to the cost and are dropped.
func NewProblem(nodeCount int, edges [][2]int) (*Problem, error) {
	if nodeCount <= 0 {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, ErrNoNodes, "new problem")
	}

	kept := make([][2]int, 0, len(edges))
	degree := make([]int, nodeCount)
	for _, e := range edges {
		u, v := e[0], e[1]
		if u < 0 || u >= nodeCount || v < 0 || v >= nodeCount {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, ErrEdgeOutOfRange,
				"edge (%d, %d) with %d nodes", u, v, nodeCount)
		}
		if u == v {
			continue
		}
		kept = append(kept, e)
		degree[u]++
		degree[v]++
	}

	offsets := make([]int, nodeCount+1)
	for u, d := range degree {
		offsets[u+1] = offsets[u] + d
	}

	list := make([]int, offsets[nodeCount])
	fill := make([]int, nodeCount)
	copy(fill, offsets[:nodeCount])
	for _, e := range kept {
		u, v := e[0], e[1]
		list[fill[u]] = v
		fill[u]++
		list[fill[v]] = u
		fill[v]++
	}

	return &Problem{n: nodeCount, edges: kept, offsets: offsets, list: list}, nil
}

// NodeCount returns the number of nodes.
func (p *Problem) NodeCount() int { return p.n }

// EdgeCount returns the number of edges after self-loops were dropped.
func (p *Problem) EdgeCount() int { return len(p.edges) }

// Neighbors returns the neighbour list of u. The slice must not be modified.
func (p *Problem) Neighbors(u int) []int {
	return p.list[p.offsets[u]:p.offsets[u+1]]
}

// Cost returns the total edge span of order. The order is assumed to be a
// valid permutation; use [Problem.CheckedCost] for untrusted input.
// The sum saturates at math.MaxUint32.
func (p *Problem) Cost(order []int) uint32 {
	return p.costAt(positions(order, p.n))
}

// CheckedCost validates order and returns its cost.
func (p *Problem) CheckedCost(order []int) (uint32, error) {
	if err := ValidateOrder(order, p.n); err != nil {
		return 0, err
	}
	return p.Cost(order), nil
}

func (p *Problem) costAt(pos []int) uint32 {
	var total uint64
	for _, e := range p.edges {
		total += uint64(absDiff(pos[e[0]], pos[e[1]]))
		if total >= math.MaxUint32 {
			return math.MaxUint32
		}
	}
	return uint32(total)
}

// swapDelta returns the cost change of exchanging the nodes at positions i
// and j. Edges between the two swapped nodes keep their length and are
// skipped.
func (p *Problem) swapDelta(order, pos []int, i, j int) int64 {
	u, v := order[i], order[j]
	var delta int64
	for _, w := range p.list[p.offsets[u]:p.offsets[u+1]] {
		if w == v {
			continue
		}
		pw := pos[w]
		delta += int64(absDiff(j, pw)) - int64(absDiff(i, pw))
	}
	for _, w := range p.list[p.offsets[v]:p.offsets[v+1]] {
		if w == u {
			continue
		}
		pw := pos[w]
		delta += int64(absDiff(i, pw)) - int64(absDiff(j, pw))
	}
	return delta
}

// ValidateOrder checks that order is a permutation of [0, n).
func ValidateOrder(order []int, n int) error {
	if len(order) != n {
		return errs.New(errs.ErrCodeInvalidOrder, "order has %d entries, want %d", len(order), n)
	}
	seen := make([]bool, n)
	for i, node := range order {
		if node < 0 || node >= n {
			return errs.New(errs.ErrCodeInvalidOrder, "order[%d] = %d out of range [0, %d)", i, node, n)
		}
		if seen[node] {
			return errs.New(errs.ErrCodeInvalidOrder, "node %d appears more than once", node)
		}
		seen[node] = true
	}
	return nil
}

// Identity returns the order 0, 1, ..., n-1.
func Identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func positions(order []int, n int) []int {
	pos := make([]int, n)
	for i, node := range order {
		if i >= n {
			break
		}
		pos[node] = i
	}
	return pos
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// saturatingAdd applies delta to cost, clamping the result to [0, MaxUint32].
func saturatingAdd(cost uint32, delta int64) uint32 {
	next := int64(cost) + delta
	switch {
	case next < 0:
		return 0
	case next > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(next)
	}
}
