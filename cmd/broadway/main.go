package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/broadway/internal/broadway"
	"github.com/rewired-gh/broadway/internal/config"
	"github.com/rewired-gh/broadway/internal/dashboard"
	"github.com/rewired-gh/broadway/internal/logger"
	"github.com/rewired-gh/broadway/internal/metrics"
	"github.com/rewired-gh/broadway/internal/server"
	"github.com/rewired-gh/broadway/internal/storage"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once configuration is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	store      *storage.Storage
	metrics    *metrics.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "broadway",
		Short:         "Broadway theatre attendance dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(!cmd.Flags().Changed("config"))
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "path to configuration file")

	rootCmd.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newAggregateCmd(a),
		newTheatresCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads and validates configuration and initializes logging. The
// default config path may be absent; an explicit one must exist.
func (a *app) setup(allowMissing bool) error {
	cfg, err := config.Load(a.configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("Configuration loaded from %s", a.configPath)

	a.cfg = cfg
	a.store = storage.New()
	return nil
}

// loadDataset reads the dataset once. Callers stop on error: nothing is
// rendered from a failed load.
func (a *app) loadDataset(ctx context.Context) error {
	client := broadway.NewClient(a.cfg.Dataset.URL, a.cfg.Dataset.Timeout)
	if _, err := dashboard.Load(ctx, client, a.store, a.metrics); err != nil {
		logger.Error("Failed to load dataset: %v", err)
		return err
	}
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Metrics.Enabled {
		reg, err := metrics.New()
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		a.metrics = reg
	}

	if err := a.loadDataset(ctx); err != nil {
		return err
	}

	controller := dashboard.New(a.store, a.cfg.Layout(), a.metrics)
	opts := server.Options{
		Title:      a.cfg.Page.Title,
		Paragraphs: a.cfg.Page.Paragraphs,
	}
	if a.cfg.Metrics.Enabled {
		opts.MetricsPath = a.cfg.Metrics.Path
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           server.New(controller, a.metrics, opts).Handler(),
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Serving dashboard on %s (%d records, %d options)",
			a.cfg.Server.Addr, a.store.Len(), len(controller.Options()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, cleaning up...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Service failed: %v", err)
		return err
	}
	logger.Info("Service stopped")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "broadway %s\n", version)
		},
	}
}
