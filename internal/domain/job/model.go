package job

import "time"

// Status represents the lifecycle status of an extraction job.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusUploading  Status = "UPLOADING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusUploading, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Job is one extraction run over uploaded transcripts. Its results are the bulk
// record source a workspace imports.
type Job struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Construct   string     `json:"construct"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	ResultCount int        `json:"result_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
