package solver

import (
	"math"
	"time"
)

const (
	// DefaultTargetBatch is the wall time a batch should take.
	DefaultTargetBatch = 60 * time.Millisecond

	// DefaultPlateau stops the search after this long without improvement.
	DefaultPlateau = 10 * time.Second
)

// AdjustSteps scales the step count so the next batch takes about target.
// Ratios within 10% keep the current count; larger corrections are limited
// to halving or doubling. The result lies in [MinSteps, MaxSteps].
func AdjustSteps(current int, elapsed, target time.Duration) int {
	if elapsed <= 0 {
		return clampInt(current*2, MinSteps, MaxSteps)
	}
	ratio := float64(max(target, time.Millisecond)) / float64(elapsed)
	if ratio >= 0.9 && ratio <= 1.1 {
		return clampInt(current, MinSteps, MaxSteps)
	}
	next := math.Round(float64(current) * clamp(ratio, 0.5, 2))
	return clampInt(int(next), MinSteps, MaxSteps)
}

// Controller tracks the step count across batches.
type Controller struct {
	Steps  int
	Target time.Duration
}

// NewController starts at steps (DefaultSteps when zero) aiming for
// DefaultTargetBatch per batch.
func NewController(steps int) *Controller {
	if steps <= 0 {
		steps = DefaultSteps
	}
	return &Controller{Steps: clampInt(steps, MinSteps, MaxSteps), Target: DefaultTargetBatch}
}

// Observe records a batch duration and returns the step count for the next batch.
func (c *Controller) Observe(elapsed time.Duration) int {
	c.Steps = AdjustSteps(c.Steps, elapsed, c.Target)
	return c.Steps
}

// Plateau accumulates batch time spent without improvement.
type Plateau struct {
	Limit   time.Duration
	elapsed time.Duration
}

// NewPlateau returns a plateau detector. A non-positive limit uses DefaultPlateau.
func NewPlateau(limit time.Duration) *Plateau {
	if limit <= 0 {
		limit = DefaultPlateau
	}
	return &Plateau{Limit: limit}
}

// Observe records one batch. Improvements reset the accumulated time.
func (p *Plateau) Observe(improved bool, elapsed time.Duration) {
	if improved {
		p.elapsed = 0
		return
	}
	p.elapsed += elapsed
}

// Elapsed returns the time spent since the last improvement.
func (p *Plateau) Elapsed() time.Duration { return p.elapsed }

// Done reports whether the plateau limit has been reached.
func (p *Plateau) Done() bool { return p.elapsed >= p.Limit }
