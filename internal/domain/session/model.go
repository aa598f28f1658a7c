package session

import "github.com/ganot/interview-etl/internal/domain/record"

// State is the lifecycle state of an Editor.
type State string

const (
	StateIdle    State = "idle"
	StateEditing State = "editing"
)

// Status describes an Editor for callers that render it.
type Status struct {
	State     State        `json:"state"`
	EditingID string       `json:"editing_id,omitempty"`
	Draft     record.Patch `json:"draft,omitempty"`
}
