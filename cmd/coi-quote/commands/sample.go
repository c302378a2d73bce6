package commands

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/coi"
)

func sampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Evaluate the built-in sample certificate data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := coi.SampleResult()
			out := cmd.OutOrStdout()
			if !jsonOutput {
				fprintf(out, "sample: aggregate %s, expires %s, premium %s\n",
					formatAmount(*r.GeneralAggregate), *r.ExpirationDate, formatAmount(*r.Premium))
			}
			return printDecision(out, appCtx.engine.Evaluate(r))
		},
	}
}
