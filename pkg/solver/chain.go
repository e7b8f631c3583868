package solver

import (
	"math"
	"slices"
)

// Chain is one annealing walk. All of its slices are private to the chain,
// so chains can advance concurrently without synchronization.
type Chain struct {
	order []int
	pos   []int
	cost  uint32

	best     []int
	bestCost uint32

	temp    float64
	floor   float64
	ceiling float64
	cooling float64

	windowSteps    int
	windowAccepted int

	stagnant    int
	rng         uint32
	seedVersion uint64
}

// TraceEvent describes a single annealing step.
// Order is the chain's live order after the step and is only valid during
// the callback.
type TraceEvent struct {
	Chain    int
	I, J     int
	Delta    int64
	Accepted bool
	Cost     uint32
	Temp     float64
	Order    []int
}

func newChain(p *Problem, k int, seed32 uint32, temp, floor float64, cooling float64) *Chain {
	n := p.n
	state := (seed32 ^ uint32(k)) * seedMix

	order := Identity(n)
	if n > 1 {
		for i := 0; i < n; i++ {
			state = state*lcgA + lcgC
			j := int(state%uint32(n-i)) + i
			order[i], order[j] = order[j], order[i]
		}
	}

	pos := positions(order, n)
	cost := p.costAt(pos)

	return &Chain{
		order:    order,
		pos:      pos,
		cost:     cost,
		best:     slices.Clone(order),
		bestCost: cost,
		temp:     temp,
		floor:    floor,
		ceiling:  temp,
		cooling:  cooling,
		rng:      state,
	}
}

func (c *Chain) next() uint32 {
	c.rng = c.rng*lcgA + lcgC
	return c.rng
}

// run advances the chain by steps iterations and returns the number of
// accepted moves.
func (c *Chain) run(p *Problem, cfg *Config, steps int, index int, trace func(TraceEvent)) int {
	n := p.n
	if n < 2 || steps <= 0 {
		return 0
	}

	gain := cfg.reheatGain()
	decay := cfg.floorDecay()
	reheatSteps := float64(max(cfg.ReseedPlateauSteps, 1))
	upper := cfg.TargetAcceptance + cfg.AcceptanceBand
	lower := cfg.TargetAcceptance - cfg.AcceptanceBand
	accepted := 0

	for range steps {
		i := int(c.next() % uint32(n))
		j := int(c.next() % uint32(n-1))
		if j >= i {
			j++
		}

		delta := p.swapDelta(c.order, c.pos, i, j)
		candidate := saturatingAdd(c.cost, delta)
		diff := float64(candidate) - float64(c.cost)

		accept := diff <= 0
		if !accept && c.temp > MinTemp {
			r := float64(c.next()) / (1 << 32)
			accept = r < math.Exp(-diff/c.temp)
		}

		if accept {
			accepted++
			u, v := c.order[i], c.order[j]
			c.order[i], c.order[j] = v, u
			c.pos[v], c.pos[u] = i, j
			c.cost = candidate
		}

		c.windowSteps++
		if accept {
			c.windowAccepted++
		}
		if c.windowSteps >= cfg.Window {
			rate := float64(c.windowAccepted) / float64(c.windowSteps)
			switch {
			case rate > upper:
				c.cooling -= cfg.CoolingAdjust
			case rate < lower:
				c.cooling += cfg.CoolingAdjust
			}
			c.cooling = clamp(c.cooling, MinCooling, MaxCooling)
			c.windowSteps, c.windowAccepted = 0, 0
		}

		if c.cost < c.bestCost {
			c.bestCost = c.cost
			copy(c.best, c.order)
			c.stagnant = 0
			c.floor = max(c.floor*decay, MinTemp)
		} else {
			c.stagnant++
		}
		if cfg.Reheat && c.stagnant > 0 {
			r := float64(c.stagnant) / reheatSteps
			c.floor = min(c.floor*(1+gain*r/(1+r)), c.ceiling)
		}
		c.temp = max(c.temp*c.cooling, c.floor)

		if trace != nil {
			trace(TraceEvent{
				Chain:    index,
				I:        i,
				J:        j,
				Delta:    delta,
				Accepted: accept,
				Cost:     c.cost,
				Temp:     c.temp,
				Order:    c.order,
			})
		}
	}
	return accepted
}

// adopt restarts the chain from a known best order.
func (c *Chain) adopt(order []int, cost uint32, floor float64, version uint64) {
	copy(c.order, order)
	copy(c.best, order)
	for i, node := range order {
		c.pos[node] = i
	}
	c.cost = cost
	c.bestCost = cost
	c.floor = floor
	c.temp = max(c.temp, floor)
	c.stagnant = 0
	c.seedVersion = version
}

// Cost returns the cost of the chain's current order.
func (c *Chain) Cost() uint32 { return c.cost }

// BestCost returns the lowest cost the chain has seen.
func (c *Chain) BestCost() uint32 { return c.bestCost }

// BestOrder returns a copy of the chain's best order.
func (c *Chain) BestOrder() []int { return slices.Clone(c.best) }

// Order returns a copy of the chain's current order.
func (c *Chain) Order() []int { return slices.Clone(c.order) }

// Temperature returns the current temperature.
func (c *Chain) Temperature() float64 { return c.temp }

// Floor returns the current temperature floor.
func (c *Chain) Floor() float64 { return c.floor }

// CoolingRate returns the adapted cooling rate.
func (c *Chain) CoolingRate() float64 { return c.cooling }

// Stagnant returns the number of steps since the chain's best improved.
func (c *Chain) Stagnant() int { return c.stagnant }

// SeedVersion returns the global best version the chain last adopted.
func (c *Chain) SeedVersion() uint64 { return c.seedVersion }
