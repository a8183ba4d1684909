package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/contactdesk/backend/internal/infrastructure/config"
	"github.com/contactdesk/backend/internal/infrastructure/logger"
	"github.com/contactdesk/backend/internal/infrastructure/migration"
	"github.com/contactdesk/backend/internal/infrastructure/persistence"
	"github.com/contactdesk/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	path     string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long: `Applies the SQL migrations for the messages, contact_submissions and
customers tables. Migrations are read from --path, then from the configured
database.migrations_path, and fall back to the copies built into the binary.

Connection settings come from config.toml, CONTACTDESK_* variables or DATABASE_URL.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.path, "path", "", "migrations directory")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		migratorCmd(opts, "up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Up() }),
		migratorCmd(opts, "down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Down() }),
		migratorCmd(opts, "step <n>", "Apply n migrations (negative rolls back)", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		migratorCmd(opts, "goto <version>", "Migrate to a specific version", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		migratorCmd(opts, "version", "Show the current migration version", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if v == 0 {
					fmt.Println("no migrations applied")
					return nil
				}
				fmt.Printf("version %d (dirty=%t)\n", v, dirty)
				return nil
			}),
		migratorCmd(opts, "force <version>", "Set the version without running migrations", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		dropCmd(opts),
		createCmd(opts),
		listCmd(opts),
	)
	return root
}

func dropCmd(opts *options) *cobra.Command {
	var confirm bool
	cmd := migratorCmd(opts, "drop", "Drop every table (destroys all data)", cobra.NoArgs,
		func(m *migration.Migrator, _ []string) error {
			if !confirm {
				return errors.New("drop cancelled, pass --confirm to proceed")
			}
			return m.Drop()
		})
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm dropping all tables")
	return cmd
}

func createCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create the next migration file pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.path
			if dir == "" {
				dir = "migrations"
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			f, err := migration.Create(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.UpPath)
			fmt.Fprintln(cmd.OutOrStdout(), f.DownPath)
			return nil
		},
	}
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fsys fs.FS = migrations.FS
			if dir := resolveDir(opts.path); dir != "" {
				fsys = os.DirFS(dir)
			}
			files, err := migration.List(fsys)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f.BaseName())
			}
			return nil
		},
	}
}

// migratorCmd builds a subcommand that needs a database connection
func migratorCmd(opts *options, use, short string, args cobra.PositionalArgs,
	run func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(_ *cobra.Command, a []string) error {
			log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stdout"})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfg.Database.Driver == "sqlite" {
				return sqliteOnly(cfg, log, use)
			}

			db, err := sql.Open("postgres", cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.Ping(); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			var m *migration.Migrator
			if dir := resolveDir(opts.path, cfg.Database.MigrationsPath); dir != "" {
				log.Info("Using migrations directory", zap.String("path", dir))
				m, err = migration.New(db, dir, log)
			} else {
				log.Info("Using embedded migrations")
				m, err = migration.NewFromFS(db, migrations.FS, log)
			}
			if err != nil {
				return err
			}
			defer m.Close()
			return run(m, a)
		},
	}
}

// sqliteOnly supports "up" on SQLite by creating the tables from the models
func sqliteOnly(cfg *config.Config, log *zap.Logger, use string) error {
	if use != "up" {
		return fmt.Errorf("%q is only supported on postgres", use)
	}
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("create sqlite tables: %w", err)
	}
	log.Info("SQLite tables ready", zap.String("path", cfg.Database.SQLitePath))
	return nil
}

// resolveDir returns the absolute path of the first candidate that is an
// existing directory
func resolveDir(candidates ...string) string {
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
	}
	return ""
}
