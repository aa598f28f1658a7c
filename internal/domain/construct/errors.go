package construct

import "errors"

var (
	// ErrConstructNotFound indicates no built-in or stored construct has the name.
	ErrConstructNotFound = errors.New("construct not found")
	// ErrAlreadyExists indicates a construct name is taken.
	ErrAlreadyExists = errors.New("construct already exists")
)
