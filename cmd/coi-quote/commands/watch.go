package commands

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/async"
	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
	"github.com/joseph-ayodele/coi-quote/internal/ingest"
)

func watchCmd() *cobra.Command {
	var (
		workers     int
		save        bool
		initialScan bool
		debounce    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR...",
		Short: "Quote certificates as they land in inbox directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if save {
				db, _, err := appCtx.openStore(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
			}

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: initialScan,
				Debounce:    debounce,
				SkipHidden:  true,
				Logger:      appCtx.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var mu sync.Mutex
			q := async.NewProcessorQueue(appCtx.proc, appCtx.logger,
				async.WithWorkers(workers),
				async.WithProcessTimeout(appCtx.cfg.OCR.Timeout),
				async.WithResultHandler(func(r async.Result) {
					mu.Lock()
					defer mu.Unlock()
					if r.Err != nil {
						fprintf(out, "%s: FAILED: %v\n", r.Job.Path, r.Err)
						return
					}
					fprintf(out, "%s: %s\n", r.Job.Path, eligibility.Summary(r.Outcome.Decision))
				}),
			)
			appCtx.logger.Info("watching for certificates", "roots", args)

			for path := range events {
				if err := q.Enqueue(ctx, async.Job{Path: path}); err != nil {
					appCtx.logger.Warn("enqueue failed", "path", path, "error", err)
				}
			}
			for err := range errs {
				appCtx.logger.Warn("watcher reported error", "error", err)
			}

			sctx, cancel := context.WithTimeout(context.Background(), max(appCtx.cfg.OCR.Timeout, time.Minute))
			defer cancel()
			q.Shutdown(sctx)
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 2, "number of concurrent workers")
	cmd.Flags().BoolVar(&save, "save", true, "store quotes in the configured database")
	cmd.Flags().BoolVar(&initialScan, "initial-scan", false, "also quote certificates already present")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "wait this long for writes to settle")
	return cmd
}
