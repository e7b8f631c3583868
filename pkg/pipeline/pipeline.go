// Package pipeline provides the solve → diagram → render pipeline.
//
// The CLI and the HTTP server both go through a [Runner] so ordering, layout
// and routing behave the same everywhere and share one cache.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Solve: find a node order with a short total edge span (pkg/solver)
//  2. Diagram: pack tiles into columns and route edges through the gutters
//     (pkg/layout, pkg/route)
//  3. Render: produce SVG, Graphviz preview or diagram JSON (pkg/render)
//
// Solved orders are cached by graph fingerprint plus solver settings;
// diagrams by graph fingerprint, order and layout settings.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, model, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	sol, err := runner.Solve(ctx, model, opts)
//	d, err := runner.Diagram(ctx, model, sol.Order, opts)
//	artifacts, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gutterview/pkg/cache"
	"github.com/matzehuels/gutterview/pkg/config"
	errs "github.com/matzehuels/gutterview/pkg/errors"
	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/layout"
	"github.com/matzehuels/gutterview/pkg/solver"
	"github.com/matzehuels/gutterview/pkg/solver/worker"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the canvas width the column count is derived from.
	DefaultWidth = 1400.0

	// DefaultRadius is the corner radius of rendered edge bends.
	DefaultRadius = 8.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot" // Graphviz node-link preview, rendered to SVG
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Solve options
	Solver     solver.Config `json:"solver"`
	AutoBatch  bool          `json:"auto_batch,omitempty"` // Derive Solver.BatchSize from the node count when it is zero
	Plateau    time.Duration `json:"plateau,omitempty"`
	MaxBatches int           `json:"max_batches,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
	Order      []int         `json:"order,omitempty"`    // Use this order instead of solving
	Identity   bool          `json:"identity,omitempty"` // Skip solving and keep the model's order

	// Layout options
	Width   float64       `json:"width,omitempty"`
	Columns int           `json:"columns,omitempty"` // Force a column count; zero derives it from Width
	Params  layout.Params `json:"params"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Radius    float64  `json:"radius,omitempty"` // Zero uses DefaultRadius; negative draws sharp corners
	Highlight bool     `json:"highlight,omitempty"`

	Refresh bool `json:"refresh,omitempty"` // Skip cache reads

	// Runtime options (not serialized)
	Logger   *log.Logger           `json:"-"`
	Progress func(worker.Snapshot) `json:"-"` // Called with every improved order while solving
}

// DefaultOptions returns the options of an empty configuration file.
func DefaultOptions() Options {
	return FromConfig(config.Default())
}

// FromConfig builds options from a loaded configuration file.
func FromConfig(cfg config.Config) Options {
	return Options{
		Solver:    cfg.Solver.Config,
		AutoBatch: cfg.Solver.AutoBatch,
		Plateau:   cfg.Solver.Plateau,
		Timeout:   cfg.Solver.Timeout,
		Width:     cfg.Layout.Width,
		Columns:   cfg.Layout.Columns,
		Params:    cfg.Layout.Params,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the content fingerprint of the model.
	GraphHash string

	// Solution is the node order the diagram was packed from.
	Solution Solution

	// Diagram is the laid-out and routed graph.
	Diagram graph.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	SolveTime   time.Duration
	DiagramTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit   bool
	DiagramHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetSolveDefaults fills solver defaults for p.
// A zero seed is replaced by one derived from the problem.
func (o *Options) SetSolveDefaults(p *solver.Problem) {
	if o.Solver.BatchSize == 0 && o.AutoBatch {
		o.Solver.BatchSize = solver.BatchSizeFor(p.NodeCount())
	}
	if o.Solver.Seed == 0 {
		o.Solver.Seed = solver.Seed(p)
	}
	o.Solver = o.Solver.Normalize()
	if o.Plateau <= 0 {
		o.Plateau = solver.DefaultPlateau
	}
	o.setLogger()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	o.Params = o.Params.WithDefaults()
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Columns < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "columns must not be negative, got %d", o.Columns)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	o.Params = o.Params.WithDefaults()
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// OrderKeyOpts returns cache key options for a solved order.
// Call SetSolveDefaults first so equivalent configs share a key.
func (o *Options) OrderKeyOpts() cache.OrderKeyOpts {
	return cache.OrderKeyOpts{
		Solver:     o.Solver,
		MaxBatches: o.MaxBatches,
		Plateau:    o.Plateau,
		Timeout:    o.Timeout,
	}
}

// DiagramKeyOpts returns cache key options for a diagram.
func (o *Options) DiagramKeyOpts(order []int) cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{
		Order:   order,
		Width:   o.Width,
		Columns: o.Columns,
		Params:  o.Params,
	}
}
