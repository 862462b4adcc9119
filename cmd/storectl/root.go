package main

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the storectl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "storectl",
		Short:         "Storefront administration",
		Long:          "Administrative tasks for the storefront: granting admin access, seeding the catalogue and checking connectivity.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSetAdminCommand(opts))
	cmd.AddCommand(NewSeedCatalogCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))

	return cmd
}

// env is what every command needs: configuration, a logger and the
// database pool.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
}

func (e *env) Close() {
	e.pool.Close()
}

// openEnv loads configuration and connects to PostgreSQL. The log level is
// raised to warn unless --verbose is set so command output stays readable.
func openEnv(ctx context.Context, opts *RootOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if !opts.Verbose {
		cfg.Logger.Level = "warn"
	}
	cfg.Logger.Format = "console"
	logger := config.NewLogger(cfg.Logger)

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, pool: pool}, nil
}
