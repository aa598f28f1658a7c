package workspace

import (
	"context"
	"io"
	"time"

	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/exportsink"
)

// SchemaResolver looks up record schemas by name.
type SchemaResolver interface {
	Resolve(ctx context.Context, name string) (*schema.Schema, error)
}

// JobSource provides completed extraction jobs as bulk record sources.
type JobSource interface {
	Get(ctx context.Context, id string) (*job.Job, error)
	Results(ctx context.Context, id string) ([]record.Record, error)
}

// Sink receives published exports.
type Sink interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (exportsink.Info, error)
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
