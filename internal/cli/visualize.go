package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gutterview/pkg/config"
	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a diagram file.
func (c *CLI) visualizeCommand() *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "visualize [diagram.json]",
		Short: "Render a diagram computed by 'layout'",
		Long: `Render a diagram computed by 'layout'.

The diagram file holds every tile position and routed path, so this step
only draws. Use 'render' to go directly from a graph to output files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			if err := rf.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), cfg, args[0], opts, rf.output)
		},
	}

	rf.register(cmd)
	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, cfg config.Config, input string, opts pipeline.Options, output string) error {
	d, err := graph.ReadDiagramFile(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	artifacts, err := runner.Render(ctx, d, opts)
	if err != nil {
		return fmt.Errorf("visualize: %w", err)
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		stats: diagramStats{
			nodes:    d.Stats.Nodes,
			edges:    d.Stats.Edges,
			cost:     d.Cost,
			fallback: d.Stats.FallbackTracks,
		},
	})
}
