package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gutterview/pkg/config"
	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/pipeline"
	"github.com/matzehuels/gutterview/pkg/solver/worker"
)

// renderFlags are the output options shared by render and visualize.
type renderFlags struct {
	formats   string
	output    string
	radius    float64
	highlight bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Float64Var(&f.radius, "radius", pipeline.DefaultRadius, "corner radius of routed paths (0 = square corners)")
	cmd.Flags().BoolVar(&f.highlight, "highlight", false, "highlight a path and its endpoints on hover (svg)")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	opts.Radius = f.radius
	if cmd.Flags().Changed("radius") && f.radius == 0 {
		opts.Radius = -1
	}
	opts.Highlight = f.highlight
	return nil
}

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		solve    solveFlags
		lf       layoutFlags
		rf       renderFlags
		identity bool
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json|graph.toml]",
		Short: "Solve, lay out and render a graph in one step",
		Long: `Solve, lay out and render a graph in one step.

This is a shortcut for 'solve', 'layout' and 'visualize'. Every stage is
cached, so re-rendering with different output options is fast.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			solve.apply(cmd, &opts)
			lf.apply(cmd, &opts)
			if err := rf.apply(cmd, &opts); err != nil {
				return err
			}
			opts.Identity = identity
			return c.runRender(cmd.Context(), cfg, args[0], opts, rf.output, solve.noCache)
		},
	}

	solve.register(cmd)
	lf.register(cmd)
	rf.register(cmd)
	cmd.Flags().BoolVar(&identity, "identity", false, "keep the document order instead of solving")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cfg config.Config, input string, opts pipeline.Options,
	output string, noCache bool) error {
	m, err := graph.LoadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	base := fmt.Sprintf("Rendering %d nodes...", m.NodeCount())
	spinner := newSpinnerWithContext(ctx, base)
	opts.Progress = func(s worker.Snapshot) {
		spinner.SetMessage(fmt.Sprintf("%s best cost %d", base, s.Cost))
	}
	spinner.Start()

	res, err := runner.Execute(ctx, m, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		stats: diagramStats{
			nodes:    m.NodeCount(),
			edges:    m.EdgeCount(),
			cost:     res.Diagram.Cost,
			fallback: res.Diagram.Stats.FallbackTracks,
			cached:   res.CacheInfo.SolveHit && res.CacheInfo.DiagramHit,
		},
	})
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stats     diagramStats
}

// writeArtifacts writes one file per format. A single format goes to output
// as given; several formats share output (or the input name) as base path.
func writeArtifacts(p artifactWriteParams) error {
	var paths []string
	for _, format := range p.formats {
		path := artifactPath(p.input, p.output, format, len(p.formats))
		if err := os.WriteFile(path, p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", strings.Join(p.formats, ", "))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.stats)
	return nil
}

// artifactPath names the output file for format.
func artifactPath(input, output, format string, count int) string {
	ext := "." + format
	switch format {
	case pipeline.FormatDOT:
		ext = ".dot.svg"
	case pipeline.FormatJSON:
		ext = ".diagram.json"
	}
	if output != "" && count == 1 {
		return output
	}
	base := input
	if output != "" {
		base = output
	}
	return derivedPath(base, "", ext)
}
