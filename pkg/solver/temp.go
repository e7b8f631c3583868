package solver

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// EstimateInitialTemp picks a starting temperature at which roughly target
// of the uphill moves around the identity order would be accepted.
//
// It samples clamp(n, 8, 64) random swaps, averages the positive deltas and
// solves exp(-avg/T) = target for T. The result lies in [0.1, 1e5].
func EstimateInitialTemp(p *Problem, seed uint64, target float64) float64 {
	n := max(p.n, 2)
	order := Identity(n)
	pos := Identity(n)
	base := p.costAt(pos)

	rng := lcg64{state: seed ^ 0x9E3779B97F4A7C15}
	samples := clampInt(n, 8, 64)

	var sum uint64
	count := 0
	for range samples {
		i := rng.intn(n)
		j := rng.intn(n - 1)
		if j >= i {
			j++
		}
		order[i], order[j] = order[j], order[i]
		pos[order[i]], pos[order[j]] = i, j
		cost := p.costAt(pos)
		order[i], order[j] = order[j], order[i]
		pos[order[i]], pos[order[j]] = i, j

		if cost > base {
			sum += uint64(cost - base)
			count++
		}
	}

	avg := 1.0
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	denom := -math.Log(clamp(target, 0.05, 0.95))
	temp := avg
	if denom > 0 {
		temp = avg / denom
	}
	return clamp(temp, 0.1, 100_000)
}

// Seed derives a stable seed from the problem's size and first 1024 edges.
func Seed(p *Problem) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(uint64(p.n))
	write(uint64(len(p.edges)))
	for _, e := range p.edges[:min(len(p.edges), 1024)] {
		write(uint64(e[0]))
		write(uint64(e[1]))
	}
	return h.Sum64()
}

// BatchSizeFor returns the number of chains for a graph with n nodes,
// keeping BatchSize * n at or below MaxTotalNodes.
func BatchSizeFor(n int) int {
	return clampInt(MaxTotalNodes/max(n, 1), 1, MaxBatchSize)
}

func seedTo32(seed uint64) uint32 {
	low := uint32(seed)
	high := uint32(seed >> 32)
	return low ^ high*seedMix
}

// lcg64 is the Knuth MMIX generator; outputs are the high 32 bits.
type lcg64 struct {
	state uint64
}

func (r *lcg64) next() uint32 {
	r.state = r.state*6364136223846793005 + 1
	return uint32(r.state >> 32)
}

func (r *lcg64) intn(upper int) int {
	if upper <= 0 {
		return 0
	}
	return int(r.next() % uint32(upper))
}
