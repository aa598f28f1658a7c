package workspace

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ganot/interview-etl/internal/csvcodec"
	"github.com/ganot/interview-etl/internal/domain/query"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/domain/session"
	"github.com/ganot/interview-etl/internal/exportsink"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Options configures a Service.
type Options struct {
	Locale        language.Tag
	DefaultSchema string
	URLExpiry     time.Duration
}

// Service owns the open workspaces. Each workspace belongs to one caller session.
type Service struct {
	schemas SchemaResolver
	jobs    JobSource
	sink    Sink
	opts    Options
	logger  *slog.Logger
	now     func() time.Time

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewService creates a workspace service. jobs and sink may be nil, which disables
// job imports and publishing.
func NewService(schemas SchemaResolver, jobs JobSource, sink Sink, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultSchema == "" {
		opts.DefaultSchema = schema.UserStory().Name
	}
	return &Service{
		schemas:    schemas,
		jobs:       jobs,
		sink:       sink,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// OpenRequest defines workspace creation inputs.
type OpenRequest struct {
	ID     string
	Schema string
	Seed   SeedKind
	JobID  string
}

// Open creates a workspace, replacing any open workspace with the same ID.
func (s *Service) Open(ctx context.Context, req OpenRequest) (*Info, error) {
	name := req.Schema
	if strings.TrimSpace(name) == "" {
		name = s.opts.DefaultSchema
	}
	sc, err := s.schemas.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	seed, err := s.seedFor(ctx, sc, req)
	if err != nil {
		return nil, err
	}
	store, err := record.NewStore(sc, seed)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	now := s.now().UTC()
	ws := &Workspace{
		id:        id,
		schema:    sc,
		store:     store,
		engine:    query.NewEngine(sc, s.opts.Locale),
		editor:    session.NewEditor(store),
		createdAt: now,
		lastUsed:  now,
	}

	s.mu.Lock()
	_, replaced := s.workspaces[id]
	s.workspaces[id] = ws
	s.mu.Unlock()

	s.logger.Info("workspace opened",
		"workspace_id", id,
		"schema", sc.Name,
		"seed", req.Seed,
		"records", store.Len(),
		"replaced", replaced,
	)
	info := ws.info()
	return &info, nil
}

func (s *Service) seedFor(ctx context.Context, sc *schema.Schema, req OpenRequest) (record.Seed, error) {
	switch req.Seed {
	case "", SeedEmpty:
		return record.EmptySeed, nil
	case SeedSample:
		return record.SampleSeed(), nil
	case SeedJob:
		if err := s.checkJob(ctx, sc, req.JobID); err != nil {
			return nil, err
		}
		return record.SourceSeed(ctx, s.jobs, req.JobID), nil
	default:
		return nil, fmt.Errorf("%w: unknown seed %q", ErrInvalidInput, req.Seed)
	}
}

func (s *Service) checkJob(ctx context.Context, sc *schema.Schema, jobID string) error {
	if s.jobs == nil {
		return fmt.Errorf("%w: job storage is not configured", ErrInvalidInput)
	}
	if strings.TrimSpace(jobID) == "" {
		return fmt.Errorf("%w: job id required", ErrInvalidInput)
	}
	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if j.Construct != sc.Name {
		return fmt.Errorf("%w: job %s is %s, workspace is %s", ErrSchemaMismatch, jobID, j.Construct, sc.Name)
	}
	return nil
}

// Close drops a workspace and everything in it.
func (s *Service) Close(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.workspaces[id]
	delete(s.workspaces, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	s.logger.Info("workspace closed", "workspace_id", id)
	return nil
}

// Get describes an open workspace.
func (s *Service) Get(ctx context.Context, id string) (*Info, error) {
	var info Info
	err := s.with(id, func(ws *Workspace) error {
		info = ws.info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Schema returns the workspace's record schema.
func (s *Service) Schema(_ context.Context, id string) (*schema.Schema, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return ws.schema, nil
}

// View returns the records selected and ordered by spec.
func (s *Service) View(_ context.Context, id string, spec query.ViewSpec) ([]record.Record, error) {
	var out []record.Record
	err := s.with(id, func(ws *Workspace) error {
		var err error
		out, err = ws.engine.Evaluate(ws.store.Records(), spec)
		return err
	})
	return out, err
}

// Add inserts a record at the end of the table. An empty ID is generated from the
// schema prefix.
func (s *Service) Add(_ context.Context, id string, rec record.Record) (record.Record, error) {
	var out record.Record
	err := s.with(id, func(ws *Workspace) error {
		var err error
		out, err = ws.store.AddRecord(rec)
		if err != nil {
			return err
		}
		s.logger.Info("record added", "workspace_id", id, "record_id", out.ID, "op", "add")
		return nil
	})
	return out, err
}

// Update patches one record.
func (s *Service) Update(_ context.Context, id, recordID string, patch record.Patch) (record.Record, error) {
	var out record.Record
	err := s.with(id, func(ws *Workspace) error {
		var err error
		out, err = ws.store.UpdateRecord(recordID, patch)
		if err != nil {
			return err
		}
		s.logger.Info("record updated", "workspace_id", id, "record_id", recordID, "op", "update", "fields", len(patch))
		return nil
	})
	return out, err
}

// Remove deletes one record.
func (s *Service) Remove(_ context.Context, id, recordID string) error {
	return s.with(id, func(ws *Workspace) error {
		if err := ws.store.RemoveRecord(recordID); err != nil {
			return err
		}
		s.logger.Info("record removed", "workspace_id", id, "record_id", recordID, "op", "remove")
		return nil
	})
}

// ReplaceAll swaps the table contents; nothing changes unless every record is valid.
func (s *Service) ReplaceAll(_ context.Context, id string, records []record.Record) (int, error) {
	var n int
	err := s.with(id, func(ws *Workspace) error {
		if err := ws.store.ReplaceAll(records); err != nil {
			return err
		}
		n = ws.store.Len()
		s.logger.Info("records replaced", "workspace_id", id, "op", "replace_all", "records", n)
		return nil
	})
	return n, err
}

// GenerateID reserves the next id for prefix; an empty prefix uses the schema's.
func (s *Service) GenerateID(_ context.Context, id, prefix string) (string, error) {
	var out string
	err := s.with(id, func(ws *Workspace) error {
		var err error
		out, err = ws.store.GenerateID(prefix)
		return err
	})
	return out, err
}

// ImportJob replaces the table with a completed job's results.
func (s *Service) ImportJob(ctx context.Context, id, jobID string) (int, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	if err := s.checkJob(ctx, ws.schema, jobID); err != nil {
		return 0, err
	}
	records, err := s.jobs.Results(ctx, jobID)
	if err != nil {
		return 0, err
	}

	var n int
	err = s.with(id, func(ws *Workspace) error {
		if err := ws.store.ReplaceAll(records); err != nil {
			return fmt.Errorf("importing job %s: %w", jobID, err)
		}
		n = ws.store.Len()
		s.logger.Info("job imported", "workspace_id", id, "job_id", jobID, "op", "import_job", "records", n)
		return nil
	})
	return n, err
}

// BeginEdit opens a draft of one record.
func (s *Service) BeginEdit(_ context.Context, id, recordID string) (record.Patch, error) {
	var draft record.Patch
	err := s.with(id, func(ws *Workspace) error {
		var err error
		draft, err = ws.editor.BeginEdit(recordID)
		if err != nil {
			return err
		}
		s.logger.Debug("edit started", "workspace_id", id, "record_id", recordID, "op", "begin_edit")
		return nil
	})
	return draft, err
}

// UpdateDraft changes one draft field.
func (s *Service) UpdateDraft(_ context.Context, id, field string, value schema.Value) (record.Patch, error) {
	var draft record.Patch
	err := s.with(id, func(ws *Workspace) error {
		if err := ws.editor.UpdateDraftField(field, value); err != nil {
			return err
		}
		draft = ws.editor.Draft()
		return nil
	})
	return draft, err
}

// Commit writes the draft to the store.
func (s *Service) Commit(_ context.Context, id string) (record.Record, error) {
	var out record.Record
	err := s.with(id, func(ws *Workspace) error {
		recordID := ws.editor.EditingID()
		var err error
		out, err = ws.editor.Commit()
		if err != nil {
			return err
		}
		s.logger.Info("edit committed", "workspace_id", id, "record_id", recordID, "op", "commit")
		return nil
	})
	return out, err
}

// Discard drops the draft.
func (s *Service) Discard(_ context.Context, id string) error {
	return s.with(id, func(ws *Workspace) error {
		recordID := ws.editor.EditingID()
		if err := ws.editor.Discard(); err != nil {
			return err
		}
		s.logger.Debug("edit discarded", "workspace_id", id, "record_id", recordID, "op", "discard")
		return nil
	})
}

// EditStatus reports the editor state.
func (s *Service) EditStatus(_ context.Context, id string) (session.Status, error) {
	var st session.Status
	err := s.with(id, func(ws *Workspace) error {
		st = ws.editor.Status()
		return nil
	})
	return st, err
}

// ExportRequest selects what to export. A nil View exports every record in
// insertion order; a nil FieldOrder uses the schema order.
type ExportRequest struct {
	View       *query.ViewSpec
	FieldOrder []string
}

// Export renders the selection as CSV text.
func (s *Service) Export(_ context.Context, id string, req ExportRequest) (string, error) {
	var out string
	err := s.with(id, func(ws *Workspace) error {
		records, err := ws.selection(req.View)
		if err != nil {
			return err
		}
		out, err = csvcodec.Encode(records, ws.schema, req.FieldOrder)
		return err
	})
	return out, err
}

// Publish writes the selection to the export sink and returns where it landed.
func (s *Service) Publish(ctx context.Context, id string, req ExportRequest) (*Publication, error) {
	if s.sink == nil {
		return nil, ErrPublishUnavailable
	}

	var (
		buf        bytes.Buffer
		count      int
		schemaName string
	)
	err := s.with(id, func(ws *Workspace) error {
		records, err := ws.selection(req.View)
		if err != nil {
			return err
		}
		count = len(records)
		schemaName = ws.schema.Name
		return csvcodec.EncodeTo(&buf, records, ws.schema, req.FieldOrder)
	})
	if err != nil {
		return nil, err
	}

	key := exportsink.Key(id, schemaName, s.now())
	info, err := s.sink.Put(ctx, key, bytes.NewReader(buf.Bytes()), csvcodec.ContentType)
	if err != nil {
		return nil, fmt.Errorf("publishing export: %w", err)
	}
	url, err := s.sink.PresignURL(ctx, key, s.opts.URLExpiry)
	if err != nil {
		s.logger.Warn("presign failed", "workspace_id", id, "key", key, "error", err)
		url = ""
	}

	s.logger.Info("export published", "workspace_id", id, "key", key, "records", count, "op", "publish")
	return &Publication{Key: key, URL: url, Records: count, Size: info.Size}, nil
}

func (ws *Workspace) selection(spec *query.ViewSpec) ([]record.Record, error) {
	if spec == nil {
		return ws.store.Records(), nil
	}
	return ws.engine.Evaluate(ws.store.Records(), *spec)
}

func (s *Service) lookup(id string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	return ws, nil
}

// with runs fn holding the workspace lock.
func (s *Service) with(id string, fn func(ws *Workspace) error) error {
	ws, err := s.lookup(id)
	if err != nil {
		return err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.lastUsed = s.now().UTC()
	return fn(ws)
}
