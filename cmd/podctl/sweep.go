package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fkhayef/podplanner/internal/database"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete used or expired reset tokens, invitations and invite codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(db *sql.DB) error {
				results, err := database.Sweep(cmd.Context(), db, ctx.now(), dryRun)
				if err != nil {
					return err
				}

				label := "Removed"
				if dryRun {
					label = "Would remove"
				}

				var total int64
				rows := make([][]string, 0, len(results))
				for _, res := range results {
					rows = append(rows, []string{res.Table, strconv.FormatInt(res.Rows, 10)})
					total += res.Rows
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"Table", label}, rows, []columnAlignment{alignLeft, alignRight}))
				if dryRun {
					fmt.Fprintf(out, "%d credentials would be removed (dry run)\n", total)
				} else {
					fmt.Fprintf(out, "%d credentials removed\n", total)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Count sweepable rows without deleting them")
	return cmd
}
