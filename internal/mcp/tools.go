package mcp

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var workspaceIDProperty = map[string]any{
	"type":        "string",
	"description": "Workspace ID (omit to use the current MCP session)",
}

var viewProperties = map[string]any{
	"workspace_id": workspaceIDProperty,
	"search": map[string]any{
		"type":        "string",
		"description": "Case-insensitive substring matched against the schema's searchable fields",
	},
	"filters": map[string]any{
		"type":                 "object",
		"description":          "Field name to required value; \"all\" or empty means no constraint. Tag fields match when the set contains the value",
		"additionalProperties": map[string]any{"type": "string"},
	},
	"sort_field": map[string]any{
		"type":        "string",
		"description": "Field to sort by (omit to keep insertion order)",
	},
	"direction": map[string]any{
		"type":        "string",
		"description": "Sort direction",
		"enum":        []string{"asc", "desc"},
	},
	"limit": map[string]any{
		"type":        "integer",
		"description": "Maximum number of records to return",
	},
	"offset": map[string]any{
		"type":        "integer",
		"description": "Offset for pagination",
	},
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "ping",
			Description: "Check that the server is responding",
			InputSchema: objectSchema(map[string]any{}),
		},

		// Schemas and jobs
		{
			Name:        "list_schemas",
			Description: "List the record schemas a workspace can be opened with, or describe one schema in full",
			InputSchema: objectSchema(map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Schema name to describe (omit to list all)",
				},
			}),
		},
		{
			Name:        "list_jobs",
			Description: "List extraction jobs whose results can be imported, newest first",
			InputSchema: objectSchema(map[string]any{
				"status": map[string]any{
					"type":        "string",
					"description": "Filter by job status",
					"enum":        []string{"CREATED", "UPLOADING", "PROCESSING", "COMPLETED", "FAILED"},
				},
				"construct": map[string]any{
					"type":        "string",
					"description": "Filter by schema name",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of jobs",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Offset for pagination",
				},
			}),
		},

		// Workspace lifecycle
		{
			Name:        "open_workspace",
			Description: "Open a table for a schema, replacing any workspace already open under the same ID",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"schema": map[string]any{
					"type":        "string",
					"description": "Schema name (omit for the configured default)",
				},
				"seed": map[string]any{
					"type":        "string",
					"description": "Initial contents",
					"enum":        []string{"empty", "sample", "job"},
				},
				"job_id": map[string]any{
					"type":        "string",
					"description": "Completed job to load when seed is job",
				},
			}),
		},
		{
			Name:        "get_workspace",
			Description: "Describe the workspace: schema, record count and edit state",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProperty}),
		},
		{
			Name:        "get_schema",
			Description: "Get the full schema of the workspace's table",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProperty}),
		},
		{
			Name:        "close_workspace",
			Description: "Close the workspace and discard its records",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProperty}),
		},

		// Reading
		{
			Name:        "get_view",
			Description: "Get records filtered by search text and field filters, optionally sorted",
			InputSchema: objectSchema(viewProperties),
		},

		// Mutations
		{
			Name:        "add_record",
			Description: "Append a record. Missing fields take schema defaults; an omitted id is generated",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"id": map[string]any{
					"type":        "string",
					"description": "Record ID (omit to generate one)",
				},
				"fields": map[string]any{
					"type":        "object",
					"description": "Field values: strings, numbers for scores, string arrays for tag sets",
				},
			}),
		},
		{
			Name:        "update_record",
			Description: "Replace some fields of a record. Nothing changes unless every value is valid",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"id": map[string]any{
					"type":        "string",
					"description": "Record ID",
				},
				"fields": map[string]any{
					"type":        "object",
					"description": "Field values to replace",
				},
			}, "id", "fields"),
		},
		{
			Name:        "remove_record",
			Description: "Delete a record",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"id": map[string]any{
					"type":        "string",
					"description": "Record ID",
				},
			}, "id"),
		},
		{
			Name:        "replace_records",
			Description: "Replace the whole table. Nothing changes unless every record is valid",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"records": map[string]any{
					"type":        "array",
					"description": "Records with id and fields",
					"items":       map[string]any{"type": "object"},
				},
			}, "records"),
		},
		{
			Name:        "generate_id",
			Description: "Reserve a fresh record ID of the form PREFIX-n; IDs are never reissued",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"prefix": map[string]any{
					"type":        "string",
					"description": "ID prefix (omit for the schema's prefix)",
				},
			}),
		},
		{
			Name:        "import_job",
			Description: "Replace the table with the results of a completed extraction job",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"job_id": map[string]any{
					"type":        "string",
					"description": "Job ID",
				},
			}, "job_id"),
		},

		// Editing
		{
			Name:        "begin_edit",
			Description: "Start editing a record; only one record can be edited at a time",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"id": map[string]any{
					"type":        "string",
					"description": "Record ID",
				},
			}, "id"),
		},
		{
			Name:        "update_draft",
			Description: "Change one field of the draft. Values are validated on commit",
			InputSchema: objectSchema(map[string]any{
				"workspace_id": workspaceIDProperty,
				"field": map[string]any{
					"type":        "string",
					"description": "Field name",
				},
				"value": map[string]any{
					"description": "New value: string, number or string array",
				},
			}, "field", "value"),
		},
		{
			Name:        "commit_edit",
			Description: "Validate the draft and write it to the record",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProperty}),
		},
		{
			Name:        "discard_edit",
			Description: "Drop the draft without changing the record",
			InputSchema: objectSchema(map[string]any{"workspace_id": workspaceIDProperty}),
		},

		// Export
		{
			Name:        "export_csv",
			Description: "Render the table, or the records of a view, as CSV text",
			InputSchema: objectSchema(exportProperties()),
		},
		{
			Name:        "publish_csv",
			Description: "Write the CSV export to the configured export store and return its key and download URL",
			InputSchema: objectSchema(exportProperties()),
		},
	}
}

func exportProperties() map[string]any {
	return map[string]any{
		"workspace_id": workspaceIDProperty,
		"field_order": map[string]any{
			"type":        "array",
			"description": "Columns to write, including id (omit for schema order)",
			"items":       map[string]any{"type": "string"},
		},
		"view": map[string]any{
			"type":        "object",
			"description": "Export only the records this view selects",
			"properties":  viewProperties,
		},
	}
}
