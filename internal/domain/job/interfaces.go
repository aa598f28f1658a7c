package job

import (
	"context"
	"time"

	"github.com/ganot/interview-etl/internal/domain/record"
)

// Repository provides persistence for jobs and their results.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, opts ListOptions) ([]Job, error)
	SetStatus(ctx context.Context, id string, status Status, message string) error
	// Complete stores the ordered results and marks the job completed in one transaction.
	Complete(ctx context.Context, id string, results []record.Record, at time.Time) error
	Results(ctx context.Context, id string) ([]record.Record, error)
}
