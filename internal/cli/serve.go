package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gutterview/internal/server"
	"github.com/matzehuels/gutterview/pkg/config"
	promobs "github.com/matzehuels/gutterview/pkg/observability/prometheus"
	"github.com/matzehuels/gutterview/pkg/pipeline"
	"github.com/matzehuels/gutterview/pkg/store"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram API over HTTP",
		Long: `Serve the diagram API over HTTP.

Endpoints:
  POST /v1/diagram     solve, lay out and route a graph (JSON or TOML body)
  POST /v1/solve       start a background solve (one at a time)
  GET  /v1/solve       best order of the running or last solve
  GET  /v1/runs        recorded solves, newest first
  GET  /v1/runs/{id}   one recorded solve
  GET  /metrics        Prometheus metrics
  GET  /healthz        liveness

The cache backend and run store come from the config file or GUTTERVIEW_*
environment variables. Without a Mongo URI runs are kept in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache bool) error {
	c.SetLogLevel(levelFromConfig(cfg.LogLevel, c.Logger.GetLevel()))

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer st.Close(context.WithoutCancel(ctx))

	promobs.NewCollector(prometheus.DefaultRegisterer).Register()

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Runner:          runner,
		Options:         pipeline.FromConfig(cfg),
		Store:           st,
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          c.Logger.WithPrefix("server"),
	})

	c.Logger.Info("serving", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend, "store", storeKind(cfg.Store))
	return srv.Start(ctx)
}

func storeKind(s config.Store) string {
	if s.MongoURI == "" {
		return "memory"
	}
	return "mongo"
}
