package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/async"
	"github.com/joseph-ayodele/coi-quote/internal/ingest"
)

type batchRow struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Reason string `json:"reason"`
	Price  string `json:"our_price,omitempty"`
	Error  string `json:"error,omitempty"`
}

// collector gathers queue results from worker goroutines.
type collector struct {
	mu   sync.Mutex
	rows []batchRow
}

func (c *collector) add(r async.Result) {
	row := batchRow{Path: r.Job.Path}
	if r.Err != nil {
		row.Status = "FAILED"
		row.Error = r.Err.Error()
	} else {
		row.Status = string(r.Outcome.Quote.Status)
		row.Reason = r.Outcome.Decision.Reason
		if r.Outcome.Decision.Eligible {
			row.Price = formatAmount(r.Outcome.Decision.OurPrice)
		}
	}
	c.mu.Lock()
	c.rows = append(c.rows, row)
	c.mu.Unlock()
}

func batchCmd() *cobra.Command {
	var (
		workers       int
		save          bool
		includeHidden bool
	)
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Quote every certificate under a directory with a worker pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if save {
				db, _, err := appCtx.openStore(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
			}

			found, stats, err := appCtx.proc.Ingestor.ScanDirectory(ctx, args[0], !includeHidden)
			if err != nil {
				return err
			}

			col := &collector{}
			q := async.NewProcessorQueue(appCtx.proc, appCtx.logger,
				async.WithWorkers(workers),
				async.WithProcessTimeout(appCtx.cfg.OCR.Timeout),
				async.WithResultHandler(col.add),
			)
			wait := time.Duration(len(found)+1) * appCtx.cfg.OCR.Timeout
			if err := runBatch(ctx, q, found, col, wait); err != nil {
				return err
			}

			col.mu.Lock()
			rows := append([]batchRow(nil), col.rows...)
			col.mu.Unlock()
			sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]any{"scanned": stats.Scanned, "matched": stats.Matched, "results": rows})
			}
			return printBatch(out, rows, stats.Scanned)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of concurrent workers")
	cmd.Flags().BoolVar(&save, "save", false, "store quotes in the configured database")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "also process hidden files and directories")
	return cmd
}

// runBatch enqueues every scanned file, then shuts q down and waits up to wait
// for the queued jobs. The queue is shut down even when enqueueing fails.
func runBatch(ctx context.Context, q *async.ProcessorQueue, found []ingest.IngestionResult, col *collector, wait time.Duration) error {
	var enqueueErr error
	trace := uuid.NewString()
	for _, f := range found {
		if f.Err != "" {
			col.add(async.Result{Job: async.Job{Path: f.SourcePath}, Err: fmt.Errorf("%s", f.Err)})
			continue
		}
		if err := q.Enqueue(ctx, async.Job{Path: f.SourcePath, TraceID: trace}); err != nil {
			enqueueErr = err
			break
		}
	}
	if wait <= 0 {
		wait = time.Hour
	}
	sctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	q.Shutdown(sctx)
	return enqueueErr
}

func printBatch(w io.Writer, rows []batchRow, scanned uint32) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fprintf(tw, "FILE\tSTATUS\tOUR PRICE\tREASON\n")
	counts := map[string]int{}
	for _, r := range rows {
		counts[r.Status]++
		detail := r.Reason
		if r.Error != "" {
			detail = r.Error
		}
		price := r.Price
		if price == "" {
			price = "-"
		}
		fprintf(tw, "%s\t%s\t%s\t%s\n", r.Path, r.Status, price, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fprintf(w, "\nscanned %d files, processed %d: %d eligible, %d ineligible, %d degraded, %d failed\n",
		scanned, len(rows), counts["ELIGIBLE"], counts["INELIGIBLE"], counts["DEGRADED"], counts["FAILED"])
	return nil
}
