package cache

import "time"

// OrderKeyOpts are the solver inputs that change a solved order: the
// normalized tuning plus the search budget.
type OrderKeyOpts struct {
	Solver     any           `json:"solver"`
	MaxBatches int           `json:"max_batches"`
	Plateau    time.Duration `json:"plateau"`
	Timeout    time.Duration `json:"timeout"`
}

// DiagramKeyOpts are the layout inputs that change a diagram.
type DiagramKeyOpts struct {
	Order   []int   `json:"order"`
	Width   float64 `json:"width"`
	Columns int     `json:"columns"`
	Params  any     `json:"params,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	OrderKey(graphHash string, opts OrderKeyOpts) string
	DiagramKey(graphHash string, opts DiagramKeyOpts) string
}

// DefaultKeyer hashes key options into fixed-width keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// OrderKey returns "order:<sha256>" over the graph hash and options.
func (DefaultKeyer) OrderKey(graphHash string, opts OrderKeyOpts) string {
	return hashKey("order", graphHash, opts)
}

// DiagramKey returns "diagram:<sha256>" over the graph hash and options.
func (DefaultKeyer) DiagramKey(graphHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", graphHash, opts)
}
