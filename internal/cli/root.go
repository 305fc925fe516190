// Package cli implements foundersctl, the operator command line for FoundersWall.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pscheid92/founderswall/internal/platform/logging"
	"github.com/pscheid92/founderswall/internal/platform/version"
)

// Deps are the collaborators the commands reach outside the process with.
// Nil fields fall back to the production implementations.
type Deps struct {
	Clock       clockwork.Clock
	Migrator    Migrator
	Invalidator Invalidator
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Migrator == nil {
		d.Migrator = pgMigrator{}
	}
	if d.Invalidator == nil {
		d.Invalidator = redisInvalidator{}
	}
	return d
}

// NewRootCommand assembles the foundersctl command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	deps = deps.withDefaults()
	var logLevel string

	root := &cobra.Command{
		Use:           "foundersctl",
		Short:         "Operate a FoundersWall deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newVersionCommand(),
		newMigrateCommand(deps.Migrator),
		newPeriodCommand(deps.Clock),
		newSlugCommand(),
		newCaseIDCommand(),
		newCacheCommand(deps.Clock, deps.Invalidator),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}

// envOr is used for flag defaults so both the flag and the environment work.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
