package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gutterview/pkg/config"
	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/pipeline"
)

// layoutFlags are the layout overrides shared by layout and render.
type layoutFlags struct {
	width   float64
	columns int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "canvas width")
	cmd.Flags().IntVar(&f.columns, "columns", 0, "force a column count (0 = derive from width)")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("width") {
		opts.Width = f.width
	}
	if cmd.Flags().Changed("columns") {
		opts.Columns = f.columns
	}
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		solve     solveFlags
		lf        layoutFlags
		output    string
		orderPath string
		identity  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.toml]",
		Short: "Pack a graph into columns and route its references",
		Long: `Pack a graph into columns and route its references through the gutters.

The nodes are placed in the order from --order (a file written by 'solve'),
in document order with --identity, or in a freshly solved order otherwise.
The output is a diagram.json file that 'visualize' renders.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			solve.apply(cmd, &opts)
			lf.apply(cmd, &opts)
			opts.Identity = identity
			return c.runLayout(cmd.Context(), cfg, args[0], opts, orderPath, output, solve.noCache)
		},
	}

	solve.register(cmd)
	lf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")
	cmd.Flags().StringVar(&orderPath, "order", "", "order file written by 'solve'")
	cmd.Flags().BoolVar(&identity, "identity", false, "keep the document order instead of solving")
	cmd.MarkFlagsMutuallyExclusive("order", "identity")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cfg config.Config, input string, opts pipeline.Options,
	orderPath, output string, noCache bool) error {
	m, err := graph.LoadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	if orderPath != "" {
		if opts.Order, err = readOrderFile(orderPath, m); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	sol, solveHit, err := solveWithSpinner(ctx, runner, m, opts)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Laying out columns...")
	spinner.Start()
	d, diagramHit, err := runner.DiagramWithCacheInfo(ctx, m, sol.Order, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	outputPath := derivedPath(input, output, ".diagram.json")
	if err := graph.WriteDiagramFile(d, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete: %d columns", d.Columns)
	printFile(outputPath)
	printStats(diagramStats{
		nodes:    m.NodeCount(),
		edges:    m.EdgeCount(),
		cost:     d.Cost,
		fallback: d.Stats.FallbackTracks,
		cached:   solveHit && diagramHit,
	})
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s visualize %s", appName, outputPath))
	return nil
}
