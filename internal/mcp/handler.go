package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ganot/interview-etl/internal/csvcodec"
	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/query"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/domain/session"
	"github.com/ganot/interview-etl/internal/domain/workspace"
)

// ErrInvalidParams indicates tool arguments that do not decode into the tool's input.
var ErrInvalidParams = errors.New("invalid tool arguments")

// defaultWorkspace is used when neither an argument nor the transport names a
// workspace, which is the case for a single stdio client.
const defaultWorkspace = "default"

// WorkspaceService defines table operations needed by MCP.
type WorkspaceService interface {
	Open(ctx context.Context, req workspace.OpenRequest) (*workspace.Info, error)
	Close(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*workspace.Info, error)
	Schema(ctx context.Context, id string) (*schema.Schema, error)
	View(ctx context.Context, id string, spec query.ViewSpec) ([]record.Record, error)
	Add(ctx context.Context, id string, rec record.Record) (record.Record, error)
	Update(ctx context.Context, id, recordID string, patch record.Patch) (record.Record, error)
	Remove(ctx context.Context, id, recordID string) error
	ReplaceAll(ctx context.Context, id string, records []record.Record) (int, error)
	GenerateID(ctx context.Context, id, prefix string) (string, error)
	BeginEdit(ctx context.Context, id, recordID string) (record.Patch, error)
	UpdateDraft(ctx context.Context, id, field string, value schema.Value) (record.Patch, error)
	Commit(ctx context.Context, id string) (record.Record, error)
	Discard(ctx context.Context, id string) error
	EditStatus(ctx context.Context, id string) (session.Status, error)
	ImportJob(ctx context.Context, id, jobID string) (int, error)
	Export(ctx context.Context, id string, req workspace.ExportRequest) (string, error)
	Publish(ctx context.Context, id string, req workspace.ExportRequest) (*workspace.Publication, error)
}

// JobService defines extraction job operations needed by MCP.
type JobService interface {
	List(ctx context.Context, opts job.ListOptions) ([]job.Job, error)
}

// ConstructService defines schema catalog operations needed by MCP.
type ConstructService interface {
	List(ctx context.Context) ([]construct.Summary, error)
	Resolve(ctx context.Context, name string) (*schema.Schema, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	workspaces WorkspaceService
	jobs       JobService
	constructs ConstructService
}

// NewHandler creates a new MCP handler. jobs may be nil when no job storage is configured.
func NewHandler(workspaces WorkspaceService, jobs JobService, constructs ConstructService) *Handler {
	return &Handler{
		workspaces: workspaces,
		jobs:       jobs,
		constructs: constructs,
	}
}

// Handle dispatches MCP requests to domain services. sessionID names the caller's
// workspace unless the params carry an explicit workspace_id.
func (h *Handler) Handle(ctx context.Context, sessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "ping":
		return StatusResponse{Status: "pong"}, nil
	case "list_schemas":
		var req ListSchemasParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Name != "" {
			sc, err := h.constructs.Resolve(ctx, req.Name)
			if err != nil {
				return nil, mapError(err)
			}
			return SchemaResponse{Schema: sc}, nil
		}
		list, err := h.constructs.List(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return ListSchemasResponse{Schemas: list}, nil
	case "list_jobs":
		var req ListJobsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if h.jobs == nil {
			return ListJobsResponse{Jobs: []job.Job{}}, nil
		}
		jobs, err := h.jobs.List(ctx, job.ListOptions{
			Status:    req.Status,
			Construct: req.Construct,
			Limit:     req.Limit,
			Offset:    req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return ListJobsResponse{Jobs: jobs}, nil
	case "open_workspace":
		var req OpenWorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		info, err := h.workspaces.Open(ctx, workspace.OpenRequest{
			ID:     workspaceID(sessionID, req.WorkspaceParams),
			Schema: req.Schema,
			Seed:   req.Seed,
			JobID:  req.JobID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return info, nil
	case "close_workspace":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.workspaces.Close(ctx, workspaceID(sessionID, req)); err != nil {
			return nil, mapError(err)
		}
		return StatusResponse{Status: "closed"}, nil
	case "get_workspace":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		info, err := h.workspaces.Get(ctx, workspaceID(sessionID, req))
		if err != nil {
			return nil, mapError(err)
		}
		return info, nil
	case "get_schema":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sc, err := h.workspaces.Schema(ctx, workspaceID(sessionID, req))
		if err != nil {
			return nil, mapError(err)
		}
		return SchemaResponse{Schema: sc}, nil
	case "get_view":
		var req GetViewParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := workspaceID(sessionID, req.WorkspaceParams)
		records, err := h.workspaces.View(ctx, id, req.spec())
		if err != nil {
			return nil, mapError(err)
		}
		status, err := h.workspaces.EditStatus(ctx, id)
		if err != nil {
			return nil, mapError(err)
		}
		return ViewResponse{
			WorkspaceID: id,
			Total:       len(records),
			Records:     page(records, req.Offset, req.Limit),
			Edit:        status,
		}, nil
	case "add_record":
		var req AddRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.workspaces.Add(ctx, workspaceID(sessionID, req.WorkspaceParams), record.Record{
			ID:     req.ID,
			Fields: req.Fields,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return RecordResponse{Record: rec}, nil
	case "update_record":
		var req UpdateRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.workspaces.Update(ctx, workspaceID(sessionID, req.WorkspaceParams), req.ID, req.Fields)
		if err != nil {
			return nil, mapError(err)
		}
		return RecordResponse{Record: rec}, nil
	case "remove_record":
		var req RemoveRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.workspaces.Remove(ctx, workspaceID(sessionID, req.WorkspaceParams), req.ID); err != nil {
			return nil, mapError(err)
		}
		return StatusResponse{Status: "removed"}, nil
	case "replace_records":
		var req ReplaceRecordsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := workspaceID(sessionID, req.WorkspaceParams)
		n, err := h.workspaces.ReplaceAll(ctx, id, req.Records)
		if err != nil {
			return nil, mapError(err)
		}
		return CountResponse{WorkspaceID: id, Records: n}, nil
	case "generate_id":
		var req GenerateIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		next, err := h.workspaces.GenerateID(ctx, workspaceID(sessionID, req.WorkspaceParams), req.Prefix)
		if err != nil {
			return nil, mapError(err)
		}
		return GenerateIDResponse{ID: next}, nil
	case "begin_edit":
		var req BeginEditParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		draft, err := h.workspaces.BeginEdit(ctx, workspaceID(sessionID, req.WorkspaceParams), req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return DraftResponse{EditingID: req.ID, Draft: draft}, nil
	case "update_draft":
		var req UpdateDraftParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := workspaceID(sessionID, req.WorkspaceParams)
		draft, err := h.workspaces.UpdateDraft(ctx, id, req.Field, req.Value)
		if err != nil {
			return nil, mapError(err)
		}
		status, err := h.workspaces.EditStatus(ctx, id)
		if err != nil {
			return nil, mapError(err)
		}
		return DraftResponse{EditingID: status.EditingID, Draft: draft}, nil
	case "commit_edit":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.workspaces.Commit(ctx, workspaceID(sessionID, req))
		if err != nil {
			return nil, mapError(err)
		}
		return RecordResponse{Record: rec}, nil
	case "discard_edit":
		var req WorkspaceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.workspaces.Discard(ctx, workspaceID(sessionID, req)); err != nil {
			return nil, mapError(err)
		}
		return StatusResponse{Status: "discarded"}, nil
	case "import_job":
		var req ImportJobParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := workspaceID(sessionID, req.WorkspaceParams)
		n, err := h.workspaces.ImportJob(ctx, id, req.JobID)
		if err != nil {
			return nil, mapError(err)
		}
		return CountResponse{WorkspaceID: id, Records: n}, nil
	case "export_csv":
		var req ExportParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		text, err := h.workspaces.Export(ctx, workspaceID(sessionID, req.WorkspaceParams), req.request())
		if err != nil {
			return nil, mapError(err)
		}
		return ExportResponse{ContentType: csvcodec.ContentType, CSV: text}, nil
	case "publish_csv":
		var req ExportParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		pub, err := h.workspaces.Publish(ctx, workspaceID(sessionID, req.WorkspaceParams), req.request())
		if err != nil {
			return nil, mapError(err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func workspaceID(sessionID string, p WorkspaceParams) string {
	if p.WorkspaceID != "" {
		return p.WorkspaceID
	}
	if sessionID != "" {
		return sessionID
	}
	return defaultWorkspace
}

func page(records []record.Record, offset, limit int) []record.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []record.Record{}
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
