package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/contactdesk/backend/internal/application/manager"
	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/cache"
	"github.com/contactdesk/backend/internal/interfaces/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func tuiCmd(opts *options) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive customer screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			// the screen owns the terminal, so logs go nowhere unless asked
			output := opts.logOutput
			if !cmd.Flags().Changed("log-output") {
				output = "discard"
			}
			log, err := opts.logger(output)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			reg := prometheus.NewRegistry()
			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Warn("Metrics listener stopped", zap.Error(err))
					}
				}()
				defer srv.Close()
			}

			s, err := openSession(cmd.Context(), cfg, log, reg)
			if err != nil {
				return err
			}
			defer s.Close()

			p := tea.NewProgram(tui.New(s.view), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func listCmd(opts *options) *cobra.Command {
	var (
		search  string
		sortBy  string
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Load the collection once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !manager.IsSortOption(sortBy) {
				return fmt.Errorf("unknown sort %q", sortBy)
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, err := opts.logger(opts.logOutput)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s, err := openSession(cmd.Context(), cfg, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer s.Close()

			snap, err := waitLoaded(cmd.Context(), s.view, timeout)
			if err != nil {
				return err
			}
			if snap.ErrorMessage != "" {
				if len(snap.Primary) == 0 {
					return errors.New(snap.ErrorMessage)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s, showing cached customers\n", snap.ErrorMessage)
			}

			rows := manager.Visible(snap.Primary, snap.Secondary, search, sortBy)
			return printCustomers(cmd, rows, asJSON)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "only names containing this text")
	cmd.Flags().StringVar(&sortBy, "sort", "", "name-asc, name-desc or email-asc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultLoadTimeout, "how long to wait for the collection")
	return cmd
}

func inspectCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the customers held in the durable cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, err := opts.logger(opts.logOutput)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			durable, err := cache.NewStorageFactory(cfg.Redis, cfg.Manager,
				cache.WithLogger(log),
				cache.WithMemoryFallback(false),
			).CreateDurable(cmd.Context())
			if err != nil {
				return err
			}
			defer durable.Close()

			list, ok, err := cache.GetJSON[[]customer.Customer](cmd.Context(), durable, manager.KeyCustomersCache)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is empty (%s backend)\n",
					manager.KeyCustomersCache, cfg.Manager.DurableBackend)
				return nil
			}
			return printCustomers(cmd, list, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printCustomers(cmd *cobra.Command, list []customer.Customer, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if list == nil {
			list = []customer.Customer{}
		}
		return enc.Encode(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "no customers")
		return nil
	}
	fmt.Fprintln(out, tui.Table(list))
	return nil
}
