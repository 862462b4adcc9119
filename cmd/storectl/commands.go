package main

import (
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/spf13/cobra"
)

// NewSetAdminCommand creates the set-admin command.
func NewSetAdminCommand(rootOpts *RootOptions) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "set-admin <user-id>",
		Short: "Grant or revoke admin access for a user",
		Long: `Set the admin flag on a user's profile. The profile is created if the
user has never saved one. Use --revoke to remove the flag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			profiles := service.NewProfileService(repository.NewProfileRepository(e.pool, e.logger), nil, e.logger)
			if err := profiles.SetAdmin(ctx, args[0], !revoke); err != nil {
				return err
			}

			if revoke {
				fmt.Fprintf(cmd.OutOrStdout(), "revoked admin access for %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "granted admin access to %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the admin flag instead of setting it")

	return cmd
}

// NewSeedCatalogCommand creates the seed-catalog command.
func NewSeedCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed-catalog <file>...",
		Short: "Upsert products from catalogue files",
		Long: `Load JSON-lines catalogue files, plain or gzip-compressed, and upsert
every product. Files are read from S3 when S3_ENABLED is set, falling back
to the local path. Nothing is written if any file fails to load.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			if migrate {
				if err := database.Migrate(ctx, e.pool); err != nil {
					return fmt.Errorf("failed to apply schema: %w", err)
				}
			}

			loader, err := catalog.NewLoader(ctx, e.cfg.S3, e.logger)
			if err != nil {
				return err
			}
			seeder := catalog.NewSeeder(loader, repository.NewProductRepository(e.pool, e.logger), e.logger)
			n, err := seeder.Seed(ctx, args)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products from %d file(s)\n", n, len(args))
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before seeding")

	return cmd
}

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to PostgreSQL and Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			var dbName string
			if err := e.pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
				return fmt.Errorf("failed to query database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "postgres: ok (%s)\n", dbName)

			rdb, err := database.NewRedis(ctx, e.cfg.Redis, e.logger)
			if err != nil {
				return err
			}
			defer rdb.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "redis: ok (%s)\n", e.cfg.Redis.Addr)
			return nil
		},
	}

	return cmd
}
