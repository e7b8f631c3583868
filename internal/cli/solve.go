package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gutterview/pkg/config"
	errs "github.com/matzehuels/gutterview/pkg/errors"
	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/pipeline"
	"github.com/matzehuels/gutterview/pkg/solver"
	"github.com/matzehuels/gutterview/pkg/solver/worker"
	"github.com/matzehuels/gutterview/pkg/store"
)

// solveFlags are the solver overrides shared by solve, layout and render.
type solveFlags struct {
	batchSize  int
	seed       uint64
	steps      int
	maxBatches int
	timeout    time.Duration
	plateau    time.Duration
	noCache    bool
	refresh    bool
}

func (f *solveFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.batchSize, "chains", 0, "parallel annealing chains (default: derived from node count)")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed (default: derived from the graph)")
	fs.IntVar(&f.steps, "steps", solver.DefaultSteps, "initial steps per chain per batch")
	fs.IntVar(&f.maxBatches, "max-batches", 0, "stop after this many batches (0 = until plateau)")
	fs.DurationVar(&f.timeout, "timeout", time.Minute, "stop searching after this long and keep the best order")
	fs.DurationVar(&f.plateau, "plateau", solver.DefaultPlateau, "stop after this long without improvement")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// apply copies explicitly set flags over the configured options.
func (f *solveFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("chains") {
		opts.Solver.BatchSize = f.batchSize
	}
	if fs.Changed("seed") {
		opts.Solver.Seed = f.seed
	}
	if fs.Changed("steps") {
		opts.Solver.Steps = f.steps
	}
	if fs.Changed("max-batches") {
		opts.MaxBatches = f.maxBatches
	}
	if fs.Changed("timeout") {
		opts.Timeout = f.timeout
	}
	if fs.Changed("plateau") {
		opts.Plateau = f.plateau
	}
	opts.Refresh = f.refresh
}

// orderFile is the output of the solve command. Nodes lists the entity IDs
// in order so the file stays readable and can be checked against its graph.
type orderFile struct {
	GraphHash string   `json:"graph_hash"`
	Cost      uint32   `json:"cost"`
	Order     []int    `json:"order"`
	Nodes     []string `json:"nodes"`
	Seed      uint64   `json:"seed,omitempty"`
	Batches   int      `json:"batches,omitempty"`
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags  solveFlags
		output string
		tui    bool
		record bool
	)

	cmd := &cobra.Command{
		Use:   "solve [graph.json|graph.toml]",
		Short: "Find a node order that keeps references short",
		Long: `Find a node order that minimizes the total distance between referencing
entities (minimum linear arrangement).

The search runs several annealing chains in parallel and stops when no chain
has improved for the plateau duration, after --max-batches or at --timeout.
The result is written to <input>.order.json and can be passed to 'layout'.

Results are cached locally; --record also stores the run in the run history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			flags.apply(cmd, &opts)
			return c.runSolve(cmd.Context(), cfg, args[0], opts, flags.noCache, output, tui, record)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.order.json)")
	cmd.Flags().BoolVar(&tui, "tui", false, "show a live view of the search")
	cmd.Flags().BoolVar(&record, "record", false, "save the run to the run store")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, cfg config.Config, input string, opts pipeline.Options,
	noCache bool, output string, tui, record bool) error {
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

	prog := newProgress(c.Logger)
	var (
		sol    pipeline.Solution
		cached bool
	)
	if tui {
		sol, cached, err = c.solveInteractive(ctx, runner, m, opts)
	} else {
		sol, cached, err = solveWithSpinner(ctx, runner, m, opts)
	}
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	prog.done("solve complete", "cost", sol.Cost, "batches", sol.Batches)

	outputPath := derivedPath(input, output, ".order.json")
	if err := writeOrderFile(outputPath, m, sol); err != nil {
		return err
	}

	if record {
		if err := c.recordRun(ctx, cfg, input, m, sol, opts); err != nil {
			return err
		}
	}

	printSuccess("Solve complete")
	printFile(outputPath)
	printStats(diagramStats{nodes: m.NodeCount(), edges: m.EdgeCount(), cost: sol.Cost, cached: cached})
	printNewline()
	printNextStep("Lay out", fmt.Sprintf("%s layout %s --order %s", appName, input, outputPath))
	return nil
}

// solveWithSpinner solves while showing the best cost next to a spinner.
func solveWithSpinner(ctx context.Context, runner *pipeline.Runner, m *graph.Model, opts pipeline.Options) (pipeline.Solution, bool, error) {
	base := fmt.Sprintf("Solving %d nodes...", m.NodeCount())
	spinner := newSpinnerWithContext(ctx, base)
	opts.Progress = func(s worker.Snapshot) {
		spinner.SetMessage(fmt.Sprintf("%s best cost %d (batch %d)", base, s.Cost, s.Batches))
	}
	spinner.Start()

	sol, cached, err := runner.SolveWithCacheInfo(ctx, m, opts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return sol, false, err
	}
	spinner.Stop()
	return sol, cached, nil
}

// solveInteractive runs the solve behind the bubbletea live view.
// Quitting the view stops the search and keeps the best order found so far.
func (c *CLI) solveInteractive(ctx context.Context, runner *pipeline.Runner, m *graph.Model, opts pipeline.Options) (pipeline.Solution, bool, error) {
	p, err := solver.NewProblem(m.NodeCount(), m.Pairs())
	if err != nil {
		return pipeline.Solution{}, false, err
	}
	opts.SetSolveDefaults(p)

	solveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var last atomic.Pointer[worker.Snapshot]
	updates := make(chan worker.Snapshot, 16)
	results := make(chan solveDoneMsg, 1)
	opts.Progress = func(s worker.Snapshot) {
		last.Store(&s)
		select {
		case updates <- s:
		default:
		}
	}

	go func() {
		sol, cached, err := runner.SolveWithCacheInfo(solveCtx, m, opts)
		if err != nil && ctx.Err() == nil && solveCtx.Err() != nil {
			if s := last.Load(); s != nil {
				c.Logger.Info("search stopped, keeping best order", "cost", s.Cost)
				sol, err = solutionFromSnapshot(*s, opts.Solver.Seed), nil
			}
		}
		results <- solveDoneMsg{sol: sol, cached: cached, err: err}
	}()

	title := fmt.Sprintf("%s solve", appName)
	model := newSolveModel(title, m.NodeCount(), m.EdgeCount(), opts.Solver.BatchSize, updates, results, cancel)
	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx)).Run()
	if err != nil {
		return pipeline.Solution{}, false, err
	}
	res := final.(solveModel).result
	return res.sol, res.cached, res.err
}

func solutionFromSnapshot(s worker.Snapshot, seed uint64) pipeline.Solution {
	return pipeline.Solution{
		Order:   s.Order,
		Cost:    s.Cost,
		Seed:    seed,
		Batches: s.Batches,
		Steps:   s.Steps,
		Elapsed: s.Elapsed,
		Solved:  true,
	}
}

func writeOrderFile(path string, m *graph.Model, sol pipeline.Solution) error {
	f := orderFile{
		GraphHash: m.Fingerprint(),
		Cost:      sol.Cost,
		Order:     sol.Order,
		Nodes:     make([]string, len(sol.Order)),
		Seed:      sol.Seed,
		Batches:   sol.Batches,
	}
	for i, v := range sol.Order {
		f.Nodes[i] = m.Nodes[v].ID
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// readOrderFile loads an order written by solve. The order is rebuilt from
// the node IDs, so it stays valid when the graph file was reformatted.
func readOrderFile(path string, m *graph.Model) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read order %s: %w", path, err)
	}
	var f orderFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidOrder, err, "decode order %s", path)
	}
	if len(f.Nodes) == 0 {
		return f.Order, solver.ValidateOrder(f.Order, m.NodeCount())
	}
	order := make([]int, len(f.Nodes))
	for i, id := range f.Nodes {
		idx, ok := m.Index(id)
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidOrder, "order %s names unknown entity %q", path, id)
		}
		order[i] = idx
	}
	if err := solver.ValidateOrder(order, m.NodeCount()); err != nil {
		return nil, err
	}
	return order, nil
}

// recordRun saves a finished solve to the configured run store.
func (c *CLI) recordRun(ctx context.Context, cfg config.Config, input string, m *graph.Model,
	sol pipeline.Solution, opts pipeline.Options) error {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer st.Close(context.WithoutCancel(ctx))

	run := store.NewRun(m.Fingerprint())
	run.Source = input
	run.Nodes = m.NodeCount()
	run.Edges = m.EdgeCount()
	run.Chains = opts.Solver.BatchSize
	run.Cost = sol.Cost
	run.Order = sol.Order
	run.Batches = sol.Batches
	run.Elapsed = sol.Elapsed
	if err := st.Save(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	printDetail("Recorded run %s", run.ID)
	return nil
}
