// AngelaMos | 2026
// tokens.go

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/jobtracker/internal/auth"
)

func newTokensCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh token housekeeping",
	}

	var grace time.Duration

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete refresh tokens that expired before now minus --grace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if grace < 0 {
				return fmt.Errorf("--grace must not be negative")
			}

			_, db, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			before := time.Now().Add(-grace)
			deleted, err := auth.NewRepository(db.DB).DeleteExpired(cmd.Context(), before)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d refresh tokens expired before %s\n",
				deleted, before.UTC().Format(time.RFC3339))
			return nil
		},
	}
	prune.Flags().DurationVar(&grace, "grace", 24*time.Hour,
		"keep tokens that expired within this window")

	cmd.AddCommand(prune)
	return cmd
}
