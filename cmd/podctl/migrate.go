package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fkhayef/podplanner/internal/database"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema on an empty database or verify its version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *sql.DB) error {
				created, err := database.Migrate(cmd.Context(), db)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if created {
					fmt.Fprintf(out, "Schema created (version %d)\n", database.SchemaVersion)
				} else {
					fmt.Fprintf(out, "Schema up to date (version %d)\n", database.SchemaVersion)
				}
				return nil
			})
		},
	}
}
