// AngelaMos | 2026
// migrate.go

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}

	run := func(command core.MigrationCommand, version int64) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			_, db, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			return core.RunMigrations(cmd.Context(), db.DB.DB, command, version, cmd.OutOrStdout())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(core.MigrationUp, 0),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE:  run(core.MigrationDown, 0),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the status of every migration",
			Args:  cobra.NoArgs,
			RunE:  run(core.MigrationStatus, 0),
		},
		&cobra.Command{
			Use:   "up-to VERSION",
			Short: "Apply migrations up to and including VERSION",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || version < 1 {
					return fmt.Errorf("invalid migration version %q", args[0])
				}
				return run(core.MigrationUpTo, version)(cmd, args)
			},
		},
	)

	return cmd
}
