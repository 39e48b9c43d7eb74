// AngelaMos | 2026
// keys.go

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/jobtracker/internal/auth"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the ES256 token signing keys",
	}

	var (
		privatePath string
		publicPath  string
		force       bool
	)

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write a new P-256 key pair as PEM files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				for _, p := range []string{privatePath, publicPath} {
					if _, err := os.Stat(p); err == nil {
						return fmt.Errorf("%s already exists; pass --force to replace it", p)
					} else if !errors.Is(err, os.ErrNotExist) {
						return err
					}
				}
			}

			for _, p := range []string{privatePath, publicPath} {
				if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
					return err
				}
			}

			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}
	generate.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key output path")
	generate.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key output path")
	generate.Flags().BoolVar(&force, "force", false, "overwrite existing key files")

	cmd.AddCommand(generate)
	return cmd
}
