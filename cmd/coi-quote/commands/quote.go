package commands

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
	"github.com/joseph-ayodele/coi-quote/internal/pipeline"
)

func quoteCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "quote FILE...",
		Short: "Extract, evaluate and optionally store certificates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				db, _, err := appCtx.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer db.Close()
			}

			out := cmd.OutOrStdout()
			var outcomes []*pipeline.Outcome
			for _, path := range args {
				ctx, cancel := appCtx.withTimeout(cmd.Context())
				o, err := appCtx.proc.ProcessFile(ctx, path)
				cancel()
				if err != nil {
					return err
				}
				if jsonOutput {
					outcomes = append(outcomes, o)
					continue
				}
				fprintf(out, "%s: %s\n", o.Quote.SourceName, eligibility.Summary(o.Decision))
				for _, w := range o.Quote.Warnings {
					fprintf(out, "  warning: %s\n", w)
				}
			}
			if jsonOutput {
				return printJSON(out, outcomes)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store quotes in the configured database")
	return cmd
}
