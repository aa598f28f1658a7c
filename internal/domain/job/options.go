package job

// ListOptions provides filtering options for listing jobs.
type ListOptions struct {
	Status    Status
	Construct string
	Limit     int
	Offset    int
}
