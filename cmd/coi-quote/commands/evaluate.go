package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/coi"
	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
)

func evaluateCmd() *cobra.Command {
	var (
		aggregate  string
		expiration string
		premium    string
		resultPath string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Apply the eligibility rules to supplied field values",
		Example: `  coi-quote evaluate --aggregate '$2,000,000' --expiration 12/31/2027 --premium 3500
  coi-quote extract --json coi.pdf | jq .result | coi-quote evaluate --result -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				r   coi.ExtractionResult
				err error
			)
			if resultPath != "" {
				r, err = readResult(cmd.InOrStdin(), resultPath)
			} else {
				r, err = resultFromFlags(aggregate, expiration, premium)
			}
			if err != nil {
				return err
			}
			return printDecision(cmd.OutOrStdout(), appCtx.engine.Evaluate(r))
		},
	}
	cmd.Flags().StringVar(&aggregate, "aggregate", "", "general aggregate limit, e.g. $2,000,000 (omit if unknown)")
	cmd.Flags().StringVar(&expiration, "expiration", "", "policy expiration date MM/DD/YYYY (omit if unknown)")
	cmd.Flags().StringVar(&premium, "premium", "", "current annual premium (omit if unknown)")
	cmd.Flags().StringVar(&resultPath, "result", "", "extraction result JSON file, or - for stdin")
	return cmd
}

func resultFromFlags(aggregate, expiration, premium string) (coi.ExtractionResult, error) {
	r := coi.ExtractionResult{ExtractionSuccess: true}
	if s := strings.TrimSpace(aggregate); s != "" {
		v, err := coi.ParseAmount(s)
		if err != nil {
			return r, fmt.Errorf("--aggregate: %w", err)
		}
		r.GeneralAggregate = &v
	}
	if s := strings.TrimSpace(expiration); s != "" {
		r.ExpirationDate = &s
	}
	if s := strings.TrimSpace(premium); s != "" {
		v, err := coi.ParseAmount(s)
		if err != nil {
			return r, fmt.Errorf("--premium: %w", err)
		}
		r.Premium = &v
	}
	return r, nil
}

func readResult(stdin io.Reader, path string) (coi.ExtractionResult, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return coi.ExtractionResult{}, fmt.Errorf("read result: %w", err)
	}
	return coi.DecodeResult(data)
}

func printDecision(w io.Writer, d eligibility.Decision) error {
	if jsonOutput {
		return printJSON(w, d)
	}
	fprintf(w, "%s\n", eligibility.Summary(d))
	if d.DaysToExpiry != nil {
		fprintf(w, "days to expiry: %d\n", *d.DaysToExpiry)
	}
	for _, warn := range d.Warnings {
		fprintf(w, "warning: %s\n", warn)
	}
	return nil
}

func formatAmount(v float64) string {
	return eligibility.FormatUSD(v)
}
