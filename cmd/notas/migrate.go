package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := a.openDB(reset || a.cfg.ResetDB)
			if err != nil {
				return err
			}
			defer closeDB()

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop all tables before migrating")
	return cmd
}
