// Command custmgr is the terminal front end of the customer manager. It
// loads the configured customer collection, keeps the durable and session
// caches in step with it and lets you create, edit and delete records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/contactdesk/backend/internal/infrastructure/config"
	"github.com/contactdesk/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	endpoint  string
	backend   string
	storage   string
	logLevel  string
	logOutput string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "custmgr",
		Short: "Manage customers from the terminal",
		Long: `custmgr edits a remote customer collection through a local view that
mirrors it into a durable cache and a session cache.

The collection, cache backend and timings come from config.toml and
CONTACTDESK_* variables; the flags below override them.

Run without a subcommand to open the interactive screen.`,
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.endpoint, "endpoint", "", "customer collection URL")
	flags.StringVar(&opts.backend, "backend", "", "durable cache backend: redis, sql or memory")
	flags.StringVar(&opts.storage, "storage", "", "sqlite file of the sql backend")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")
	flags.StringVar(&opts.logOutput, "log-output", "stderr", "stdout, stderr, discard or a file path")

	tui := tuiCmd(opts)
	root.RunE = tui.RunE
	root.Flags().AddFlagSet(tui.Flags())
	root.AddCommand(tui, listCmd(opts), inspectCmd(opts))
	return root
}

// load reads the configuration and applies the flag overrides
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if o.endpoint != "" {
		cfg.CustomerAPI.Endpoint = o.endpoint
	}
	if o.backend != "" {
		cfg.Manager.DurableBackend = o.backend
	}
	if o.storage != "" {
		cfg.Manager.StoragePath = o.storage
	}
	return cfg, nil
}

func (o *options) logger(output string) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:  o.logLevel,
		Format: "console",
		Output: output,
	})
}
