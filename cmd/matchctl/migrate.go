package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgrepo "github.com/Nkpro29/chuckle-match-ai/internal/repo/postgres"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the matching tables and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.close()

			pool, err := rt.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pgrepo.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
