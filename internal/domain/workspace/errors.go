package workspace

import "errors"

var (
	// ErrWorkspaceNotFound indicates no open workspace has the ID.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrSchemaMismatch indicates a job produced records for a different schema.
	ErrSchemaMismatch = errors.New("job construct does not match workspace schema")
	// ErrInvalidInput indicates invalid workspace input.
	ErrInvalidInput = errors.New("invalid workspace input")
	// ErrPublishUnavailable indicates no export sink is configured.
	ErrPublishUnavailable = errors.New("publishing is not configured")
)
