package mcp

import (
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
	"github.com/ganot/interview-etl/internal/exportsink"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// FieldDetails identifies the field a validation error refers to.
type FieldDetails struct {
	Field  string `json:"field"`
	Reason string `json:"reason,omitempty"`
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var vErr *schema.ValidationError
	switch {
	case errors.Is(err, workspace.ErrWorkspaceNotFound):
		return &APIError{Code: "WORKSPACE_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call open_workspace first"}
	case errors.Is(err, record.ErrDuplicateID):
		return &APIError{Code: "DUPLICATE_ID", Message: err.Error(), RecoveryHint: "Use generate_id or omit id"}
	case errors.Is(err, record.ErrNotFound),
		errors.Is(err, job.ErrJobNotFound),
		errors.Is(err, construct.ErrConstructNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error(), RecoveryHint: "Check ID spelling"}
	case errors.As(err, &vErr):
		return &APIError{
			Code:         "VALIDATION_ERROR",
			Message:      err.Error(),
			Details:      FieldDetails{Field: vErr.Field, Reason: vErr.Reason},
			RecoveryHint: "Check list_schemas for allowed values",
		}
	case errors.Is(err, schema.ErrValidation), errors.Is(err, query.ErrInvalidDirection):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, schema.ErrInvalidField):
		return &APIError{Code: "INVALID_FIELD", Message: err.Error(), RecoveryHint: "Check list_schemas for field names"}
	case errors.Is(err, session.ErrAlreadyEditing):
		return &APIError{Code: "ALREADY_EDITING", Message: err.Error(), RecoveryHint: "Call commit_edit or discard_edit first"}
	case errors.Is(err, session.ErrNotEditing):
		return &APIError{Code: "NOT_EDITING", Message: err.Error(), RecoveryHint: "Call begin_edit first"}
	case errors.Is(err, csvcodec.ErrSchemaMismatch), errors.Is(err, workspace.ErrSchemaMismatch):
		return &APIError{Code: "SCHEMA_MISMATCH", Message: err.Error()}
	case errors.Is(err, job.ErrNotCompleted):
		return &APIError{Code: "JOB_NOT_COMPLETED", Message: err.Error(), RecoveryHint: "Wait for the job to complete"}
	case errors.Is(err, workspace.ErrPublishUnavailable):
		return &APIError{Code: "PUBLISH_UNAVAILABLE", Message: err.Error(), RecoveryHint: "Use export_csv instead"}
	case errors.Is(err, record.ErrIDsExhausted):
		return &APIError{Code: "CONFLICT", Message: err.Error(), RecoveryHint: "Use a different prefix"}
	case errors.Is(err, exportsink.ErrExists):
		return &APIError{Code: "CONFLICT", Message: err.Error(), RecoveryHint: "Retry to publish under a new key"}
	case errors.Is(err, workspace.ErrInvalidInput), errors.Is(err, construct.ErrAlreadyExists):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}
