package workspace

import (
	"sync"
	"time"

	"github.com/ganot/interview-etl/internal/domain/query"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/domain/session"
)

// SeedKind selects how a new workspace is populated.
type SeedKind string

const (
	SeedEmpty  SeedKind = "empty"
	SeedSample SeedKind = "sample"
	SeedJob    SeedKind = "job"
)

// Workspace is one table: a schema, its record store, a query engine and an editor.
// Every operation on it runs under mu, one at a time.
type Workspace struct {
	mu        sync.Mutex
	id        string
	schema    *schema.Schema
	store     *record.Store
	engine    *query.Engine
	editor    *session.Editor
	createdAt time.Time
	lastUsed  time.Time
}

// Info describes an open workspace.
type Info struct {
	ID           string         `json:"id"`
	Schema       string         `json:"schema"`
	Records      int            `json:"records"`
	Edit         session.Status `json:"edit"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
}

func (w *Workspace) info() Info {
	return Info{
		ID:           w.id,
		Schema:       w.schema.Name,
		Records:      w.store.Len(),
		Edit:         w.editor.Status(),
		CreatedAt:    w.createdAt,
		LastActivity: w.lastUsed,
	}
}

// Publication describes a CSV written to the export sink.
type Publication struct {
	Key     string `json:"key"`
	URL     string `json:"url,omitempty"`
	Records int    `json:"records"`
	Size    int64  `json:"size_bytes"`
}
