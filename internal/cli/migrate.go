package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pscheid92/founderswall/internal/adapter/postgres"
)

const migrateTimeout = 2 * time.Minute

// Migrator applies and inspects the database schema.
type Migrator interface {
	Migrate(ctx context.Context, databaseURL string) error
	Status(ctx context.Context, databaseURL string) (current, latest int32, err error)
}

type pgMigrator struct{}

func (pgMigrator) Migrate(ctx context.Context, databaseURL string) error {
	pool, err := postgres.Connect(ctx, databaseURL, nil)
	if err != nil {
		return err
	}
	defer pool.Close()
	return postgres.RunMigrationsWithLock(ctx, pool)
}

func (pgMigrator) Status(ctx context.Context, databaseURL string) (int32, int32, error) {
	pool, err := postgres.Connect(ctx, databaseURL, nil)
	if err != nil {
		return 0, 0, err
	}
	defer pool.Close()
	return postgres.MigrationStatus(ctx, pool)
}

func newMigrateCommand(m Migrator) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return errors.New("database URL required (--database-url or DATABASE_URL)")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			if err := m.Migrate(ctx, databaseURL); err != nil {
				return err
			}
			current, latest, err := m.Status(ctx, databaseURL)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d of %d\n", current, latest)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied and latest schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return errors.New("database URL required (--database-url or DATABASE_URL)")
			}
			current, latest, err := m.Status(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			state := "up to date"
			if current < latest {
				state = fmt.Sprintf("%d pending", latest-current)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d of %d (%s)\n", current, latest, state)
			return nil
		},
	})
	return cmd
}
