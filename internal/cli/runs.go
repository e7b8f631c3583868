package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gutterview/pkg/store"
)

// runsCommand creates the runs command for browsing the run history.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse recorded solver runs",
		Long: `Browse solver runs recorded by 'solve --record' or the HTTP server.

Runs are read from the Mongo store named in the config file. Without a
Mongo URI the store is in memory and therefore empty.`,
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	return cmd
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				runs, err := st.List(ctx, limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No recorded runs")
					return nil
				}
				fmt.Println(runsTable(runs))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of runs")
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.ValidateID(args[0]); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				run, err := st.Get(ctx, args[0])
				if err != nil {
					return err
				}
				printRun(run)
				return nil
			})
		},
	}
}

func (c *CLI) withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer st.Close(context.WithoutCancel(ctx))
	return fn(ctx, st)
}

func printRun(r store.Run) {
	fmt.Println(StyleTitle.Render("Run " + r.ID))
	printKeyValue("graph", r.GraphHash)
	if r.Source != "" {
		printKeyValue("source", r.Source)
	}
	printKeyValue("nodes", fmt.Sprintf("%d", r.Nodes))
	printKeyValue("edges", fmt.Sprintf("%d", r.Edges))
	printKeyValue("chains", fmt.Sprintf("%d", r.Chains))
	printKeyValue("cost", StyleNumber.Render(fmt.Sprintf("%d", r.Cost)))
	printKeyValue("batches", fmt.Sprintf("%d", r.Batches))
	printKeyValue("elapsed", r.Elapsed.Round(time.Millisecond).String())
	printKeyValue("created", r.CreatedAt.Local().Format(time.RFC3339))
	if r.Error != "" {
		printKeyValue("error", StyleError.Render(r.Error))
	}
	if len(r.Order) > 0 {
		printKeyValue("order", formatOrder(r.Order, 24))
	}
}

// formatOrder joins up to limit indices, eliding the rest.
func formatOrder(order []int, limit int) string {
	n := min(len(order), limit)
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("%d", order[i])
	}
	s := strings.Join(parts, " ")
	if len(order) > limit {
		s += fmt.Sprintf(" … (+%d)", len(order)-limit)
	}
	return s
}
