package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `interview-etl edits tables of structured records extracted from interview transcripts.

Core concepts:
- Schema: the ordered columns of a table (user_story, requirement, or a stored construct). Every record conforms to it.
- Workspace: one open table. Your MCP session owns one workspace; pass workspace_id to address another.
- Record: an id plus one value per schema field. Ids are unique and never reissued by generate_id.
- View: search + filters + sort over the table. Views never change the records.
- Edit: at most one record is edited at a time through a draft (begin_edit, update_draft, commit_edit or discard_edit).

Default workflow:
1) list_schemas, then open_workspace (seed "sample" for demo rows, "job" with job_id to load extraction results).
2) get_view with search/filters/sort_field/direction to find records.
3) add_record / update_record / remove_record for direct changes, or the begin_edit loop for staged ones.
4) export_csv for the text, publish_csv for a stored file and download URL.
5) close_workspace when done.

Docs:
- etl://docs/index
- etl://docs/concepts
- etl://docs/workflows/editing
- etl://docs/workflows/import-export
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "etl://docs/index",
		Name:        "docs_index",
		Title:       "interview-etl docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read when.",
		Content: `# interview-etl: Agent Docs Index

## Quick start

1. ` + "`list_schemas`" + ` to see the available tables.
2. ` + "`open_workspace`" + ` with a schema and a seed.
3. ` + "`get_view`" + ` to read, then mutate with the record tools.
4. ` + "`export_csv`" + ` or ` + "`publish_csv`" + ` to hand the table back.

## Docs (read on demand)

- ` + "`etl://docs/concepts`" + ` - schemas, field kinds, views and errors.
- ` + "`etl://docs/workflows/editing`" + ` - direct updates and the draft edit loop.
- ` + "`etl://docs/workflows/import-export`" + ` - loading job results and producing CSV.

## Limitations

- Workspaces live in memory. Closing one, or restarting the server, drops its records.
- ` + "`get_view`" + ` returns every matching record unless you pass ` + "`limit`" + `.
`,
	},
	{
		URI:         "etl://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Schemas, field kinds, view semantics and the error codes tools return.",
		Content: `# Concepts and invariants

## Field kinds

- **text**, **longtext**: strings. Carriage returns are rejected.
- **enum**: one of the declared values, matched exactly (` + "`High`" + ` is not ` + "`high`" + `).
- **score**: a number inside the field's range. Out-of-range values are rejected, never clamped.
- **tagset**: an array of strings. Tags may not contain ` + "`;`" + `.

Missing fields on add take the schema default (enum default, score minimum, empty tags).

## Views

- ` + "`search`" + ` is a case-insensitive substring match over the searchable fields.
- ` + "`filters`" + ` maps field to value. ` + "`all`" + ` or empty means no constraint; a tag field matches when its set contains the value.
- ` + "`sort_field`" + ` sorts scores numerically and everything else by locale collation. Ties keep insertion order, and ` + "`desc`" + ` is the exact reverse of ` + "`asc`" + `.

## Error codes

- ` + "`DUPLICATE_ID`" + `, ` + "`NOT_FOUND`" + `, ` + "`WORKSPACE_NOT_FOUND`" + `
- ` + "`VALIDATION_ERROR`" + ` (details name the field), ` + "`INVALID_FIELD`" + `
- ` + "`ALREADY_EDITING`" + `, ` + "`NOT_EDITING`" + `
- ` + "`SCHEMA_MISMATCH`" + `, ` + "`JOB_NOT_COMPLETED`" + `
`,
	},
	{
		URI:         "etl://docs/workflows/editing",
		Name:        "docs_workflow_editing",
		Title:       "Workflow: editing records",
		Description: "Direct updates versus the begin/update/commit draft loop.",
		Content: `# Workflow: editing records

## Direct changes

- ` + "`add_record`" + ` appends. Omit ` + "`id`" + ` to have one generated from the schema prefix.
- ` + "`update_record`" + ` replaces the named fields. If any value is invalid nothing changes.
- ` + "`remove_record`" + ` deletes; other records keep their ids and order.

## Draft loop

1) ` + "`begin_edit(id)`" + ` copies the record into a draft. Only one edit can be open.
2) ` + "`update_draft(field, value)`" + ` changes the draft only. Values are checked on commit.
3) ` + "`commit_edit`" + ` validates and writes. On ` + "`VALIDATION_ERROR`" + ` the draft stays open so you can fix the field.
4) ` + "`discard_edit`" + ` drops the draft.

Call ` + "`begin_edit`" + ` while an edit is open and you get ` + "`ALREADY_EDITING`" + `.
`,
	},
	{
		URI:         "etl://docs/workflows/import-export",
		Name:        "docs_workflow_import_export",
		Title:       "Workflow: import and export",
		Description: "Loading extraction job results and producing CSV files.",
		Content: `# Workflow: import and export

## Import

- ` + "`list_jobs(status=COMPLETED)`" + ` shows jobs with results.
- ` + "`open_workspace(seed=job, job_id)`" + ` or ` + "`import_job(job_id)`" + ` replaces the table. The job's construct must match the workspace schema (` + "`SCHEMA_MISMATCH`" + ` otherwise).

## Export

- ` + "`export_csv`" + ` returns the CSV text: a header of column labels, one line per record, no trailing newline.
- Pass ` + "`field_order`" + ` to choose columns (include ` + "`id`" + ` to re-import later) and ` + "`view`" + ` to export only what a view selects.
- ` + "`publish_csv`" + ` stores the same text and returns its key and a time-limited download URL.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
