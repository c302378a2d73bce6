package commands

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/coi"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE",
		Short: "Print the fields extracted from one certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := appCtx.withTimeout(cmd.Context())
			defer cancel()

			doc, err := appCtx.proc.Ingestor.ReadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			res, text := appCtx.proc.Fields.FromDocument(ctx, appCtx.text, doc.Data)

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]any{
					"source":      doc.Name,
					"text_method": text.Method,
					"result":      res,
				})
			}
			fprintf(out, "%-18s %s (%s)\n", "source:", doc.Name, text.Method)
			fprintf(out, "%-18s %t\n", "extracted:", res.ExtractionSuccess)
			for _, name := range []string{coi.FieldGeneralAggregate, coi.FieldExpirationDate, coi.FieldPremium} {
				rep := res.Report(name)
				fprintf(out, "%-18s %s [%s %s]\n", name+":", fieldValue(res, name), rep.Outcome, rep.Strategy)
			}
			return nil
		},
	}
}

func fieldValue(r coi.ExtractionResult, name string) string {
	switch name {
	case coi.FieldGeneralAggregate:
		if r.GeneralAggregate != nil {
			return formatAmount(*r.GeneralAggregate)
		}
	case coi.FieldExpirationDate:
		if r.ExpirationDate != nil {
			return *r.ExpirationDate
		}
	case coi.FieldPremium:
		if r.Premium != nil {
			return formatAmount(*r.Premium)
		}
	}
	return "-"
}
