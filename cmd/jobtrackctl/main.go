// AngelaMos | 2026
// main.go

// Command jobtrackctl is the operator CLI: schema migrations, signing keys,
// manual plan changes and token housekeeping.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/jobtracker/internal/config"
	"github.com/carterperez-dev/jobtracker/internal/core"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "jobtrackctl",
		Short:         "Operate a job tracker deployment",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(
		&opts.configPath, "config", "", "YAML config file; empty uses defaults and environment",
	)

	root.AddCommand(
		newMigrateCmd(opts),
		newKeysCmd(),
		newSubscriptionCmd(opts),
		newTokensCmd(opts),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jobtrackctl %s (%s)\n", Version, GitCommit)
		},
	}
}

// connect loads the config and opens the database. The caller closes it.
func (o *rootOptions) connect(ctx context.Context) (*config.Config, *core.Database, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	return cfg, db, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
