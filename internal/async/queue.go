package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/coi-quote/internal/pipeline"
)

// Job asks a worker to quote the certificate at Path.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// Result is delivered once per job, in completion order.
type Result struct {
	Job     Job
	Outcome *pipeline.Outcome
	Err     error
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// FileProcessor is the slice of pipeline.Processor the workers need.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.Outcome, error)
}
