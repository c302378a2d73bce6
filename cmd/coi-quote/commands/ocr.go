package commands

import (
	"time"

	"github.com/spf13/cobra"
)

func ocrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ocr FILE",
		Short: "Print the raw text extracted from a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := appCtx.withTimeout(cmd.Context())
			defer cancel()

			doc, err := appCtx.proc.Ingestor.ReadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			start := time.Now()
			res, err := appCtx.text.Extract(ctx, doc.Data)
			if err != nil {
				appCtx.logger.Error("text extraction failed", "path", doc.Path, "error", err, "duration_ms", time.Since(start).Milliseconds())
				return err
			}
			appCtx.logger.Info("text extraction OK",
				"method", res.Method,
				"pages", res.Pages,
				"bytes", len(res.Text),
				"confidence", res.Confidence,
				"duration_ms", time.Since(start).Milliseconds(),
			)

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, res)
			}
			fprintf(out, "%s\n", res.Text)
			return nil
		},
	}
}
