package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/repository"
)

func dbHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dbhealth",
		Short: "Check the database connection and report stored quote counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, quotes, err := appCtx.openStore(ctx)
			if err != nil {
				fprintf(cmd.OutOrStdout(), "DB health: FAIL (%v)\n", err)
				return err
			}
			defer db.Close()

			if err := db.HealthCheck(ctx, time.Second); err != nil {
				fprintf(cmd.OutOrStdout(), "DB health: FAIL (%v)\n", err)
				return err
			}
			all, err := quotes.List(ctx, repository.ListFilter{})
			if err != nil {
				return err
			}
			eligible := 0
			for _, q := range all {
				if q.Eligible {
					eligible++
				}
			}
			fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\nquotes: %d stored, %d eligible\n", db.Dialect, len(all), eligible)
			return nil
		},
	}
}
