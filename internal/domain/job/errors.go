package job

import "errors"

var (
	// ErrJobNotFound indicates the job doesn't exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrNotCompleted indicates results were requested before the job completed.
	ErrNotCompleted = errors.New("job has not completed")
	// ErrInvalidTransition indicates a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid job status transition")
	// ErrInvalidInput indicates invalid job input.
	ErrInvalidInput = errors.New("invalid job input")
)
