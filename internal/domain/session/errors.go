package session

import "errors"

var (
	// ErrAlreadyEditing indicates an edit is already in progress.
	ErrAlreadyEditing = errors.New("edit already in progress")
	// ErrNotEditing indicates no edit is in progress.
	ErrNotEditing = errors.New("no edit in progress")
)
