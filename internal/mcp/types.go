package mcp

import (
	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/query"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/domain/session"
	"github.com/ganot/interview-etl/internal/domain/workspace"
)

// WorkspaceParams is embedded by every tool that acts on a workspace. An empty
// WorkspaceID falls back to the caller's MCP session.
type WorkspaceParams struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
}

type OpenWorkspaceParams struct {
	WorkspaceParams
	Schema string             `json:"schema,omitempty"`
	Seed   workspace.SeedKind `json:"seed,omitempty"`
	JobID  string             `json:"job_id,omitempty"`
}

type ListSchemasParams struct {
	Name string `json:"name,omitempty"`
}

type GetViewParams struct {
	WorkspaceParams
	Search    string            `json:"search,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	SortField string            `json:"sort_field,omitempty"`
	Direction query.Direction   `json:"direction,omitempty"`
	Limit     int               `json:"limit,omitempty"`
	Offset    int               `json:"offset,omitempty"`
}

func (p GetViewParams) spec() query.ViewSpec {
	return query.ViewSpec{
		Search:    p.Search,
		Filters:   p.Filters,
		SortField: p.SortField,
		Direction: p.Direction,
	}
}

type AddRecordParams struct {
	WorkspaceParams
	ID     string                  `json:"id,omitempty"`
	Fields map[string]schema.Value `json:"fields,omitempty"`
}

type UpdateRecordParams struct {
	WorkspaceParams
	ID     string       `json:"id"`
	Fields record.Patch `json:"fields"`
}

type RemoveRecordParams struct {
	WorkspaceParams
	ID string `json:"id"`
}

type ReplaceRecordsParams struct {
	WorkspaceParams
	Records []record.Record `json:"records"`
}

type GenerateIDParams struct {
	WorkspaceParams
	Prefix string `json:"prefix,omitempty"`
}

type BeginEditParams struct {
	WorkspaceParams
	ID string `json:"id"`
}

type UpdateDraftParams struct {
	WorkspaceParams
	Field string       `json:"field"`
	Value schema.Value `json:"value"`
}

type ImportJobParams struct {
	WorkspaceParams
	JobID string `json:"job_id"`
}

type ExportParams struct {
	WorkspaceParams
	FieldOrder []string `json:"field_order,omitempty"`
	// View restricts the export to the records a get_view call would return.
	View *GetViewParams `json:"view,omitempty"`
}

func (p ExportParams) request() workspace.ExportRequest {
	req := workspace.ExportRequest{FieldOrder: p.FieldOrder}
	if p.View != nil {
		spec := p.View.spec()
		req.View = &spec
	}
	return req
}

type ListJobsParams struct {
	Status    job.Status `json:"status,omitempty"`
	Construct string     `json:"construct,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

type ViewResponse struct {
	WorkspaceID string          `json:"workspace_id"`
	Total       int             `json:"total"`
	Records     []record.Record `json:"records"`
	Edit        session.Status  `json:"edit"`
}

type SchemaResponse struct {
	Schema *schema.Schema `json:"schema"`
}

type ListSchemasResponse struct {
	Schemas []construct.Summary `json:"schemas"`
}

type RecordResponse struct {
	Record record.Record `json:"record"`
}

type DraftResponse struct {
	EditingID string       `json:"editing_id"`
	Draft     record.Patch `json:"draft"`
}

type GenerateIDResponse struct {
	ID string `json:"id"`
}

type CountResponse struct {
	WorkspaceID string `json:"workspace_id"`
	Records     int    `json:"records"`
}

type ExportResponse struct {
	ContentType string `json:"content_type"`
	CSV         string `json:"csv"`
}

type ListJobsResponse struct {
	Jobs []job.Job `json:"jobs"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
