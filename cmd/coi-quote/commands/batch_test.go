package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/coi-quote/internal/async"
	"github.com/joseph-ayodele/coi-quote/internal/ingest"
	"github.com/joseph-ayodele/coi-quote/internal/pipeline"
)

// heldProcessor blocks every job until release is closed.
type heldProcessor struct{ release chan struct{} }

func (h heldProcessor) ProcessFile(_ context.Context, _ string) (*pipeline.Outcome, error) {
	<-h.release
	return nil, errors.New("held")
}

func TestRunBatch_ShutsDownQueueWhenEnqueueFails(t *testing.T) {
	release := make(chan struct{})
	col := &collector{}
	q := async.NewProcessorQueue(heldProcessor{release: release}, slog.New(slog.NewTextHandler(io.Discard, nil)),
		async.WithWorkers(1),
		async.WithQueueSize(1),
		async.WithResultHandler(col.add),
	)

	found := []ingest.IngestionResult{
		{SourcePath: "a.pdf"}, {SourcePath: "b.pdf"}, {SourcePath: "c.pdf"}, {SourcePath: "d.pdf"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runBatch(ctx, q, found, col, 20*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
	close(release)

	assert.ErrorIs(t, q.Enqueue(context.Background(), async.Job{Path: "late.pdf"}), async.ErrQueueClosed)
	assert.Eventually(t, func() bool {
		col.mu.Lock()
		defer col.mu.Unlock()
		return len(col.rows) >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestRunBatch_RecordsScanErrors(t *testing.T) {
	col := &collector{}
	q := async.NewProcessorQueue(heldProcessor{release: make(chan struct{})}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := runBatch(context.Background(), q, []ingest.IngestionResult{{SourcePath: "x.pdf", Err: "permission denied"}}, col, time.Second)
	require.NoError(t, err)
	require.Len(t, col.rows, 1)
	assert.Equal(t, "FAILED", col.rows[0].Status)
	assert.Equal(t, "permission denied", col.rows[0].Error)
}
