package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/export"
)

func exportCmd() *cobra.Command {
	var (
		outPath      string
		fromDate     string
		toDate       string
		eligibleOnly bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored quotes to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDay("--from", fromDate)
			if err != nil {
				return err
			}
			to, err := parseDay("--to", toDate)
			if err != nil {
				return err
			}

			db, quotes, err := appCtx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			b, err := export.NewService(quotes, appCtx.logger).ExportQuotesXLSX(cmd.Context(), from, to, eligibleOnly)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outPath, len(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "quotes.xlsx", "output file")
	cmd.Flags().StringVar(&fromDate, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&eligibleOnly, "eligible-only", false, "only export eligible quotes")
	return cmd
}

func parseDay(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD: %w", flag, err)
	}
	return &t, nil
}
