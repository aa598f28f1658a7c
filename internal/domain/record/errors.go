package record

import "errors"

var (
	// ErrNotFound indicates the record doesn't exist in the store.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID indicates the id is already used by another record.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrIDsExhausted indicates no higher numeric suffix is left for the prefix.
	ErrIDsExhausted = errors.New("no ids left for prefix")
)
