package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/observability"
	"github.com/matzehuels/gutterview/pkg/render"
)

// Render generates output artifacts in the requested formats.
func (r *Runner) Render(ctx context.Context, d graph.Diagram, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	return Render(ctx, d, opts)
}

// Render generates artifacts for d without a runner.
func Render(ctx context.Context, d graph.Diagram, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(d, svgOptions(opts)...)
		case FormatDOT:
			data, err = render.RenderDOT(ctx, render.ToDOT(d))
		case FormatJSON:
			data, err = graph.MarshalDiagram(d)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{
		render.WithParams(opts.Params),
		render.WithRadius(opts.Radius),
	}
	if opts.Highlight {
		svgOpts = append(svgOpts, render.WithHighlight())
	}
	return svgOpts
}
