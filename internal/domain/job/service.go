package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/repository"
	"github.com/google/uuid"
)

// Service handles extraction job bookkeeping.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new job service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateRequest defines job creation inputs.
type CreateRequest struct {
	ID        string
	Name      string
	Construct string
}

// Create registers a new job in the CREATED state.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Job, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Construct) == "" {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	j := &Job{
		ID:        id,
		Name:      req.Name,
		Construct: req.Construct,
		Status:    StatusCreated,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, j); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: job %s already exists", ErrInvalidInput, id)
		}
		return nil, fmt.Errorf("creating job: %w", err)
	}

	s.logger.Info("job created", "job_id", j.ID, "construct", j.Construct)
	return j, nil
}

// Get fetches a job by ID.
func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return j, nil
}

// List returns jobs, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Job, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, opts.Status)
	}
	return s.repo.List(ctx, opts)
}

// Advance moves a job to UPLOADING or PROCESSING.
func (s *Service) Advance(ctx context.Context, id string, status Status) error {
	if status != StatusUploading && status != StatusProcessing {
		return fmt.Errorf("%w: cannot advance to %s", ErrInvalidTransition, status)
	}
	j, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canTransition(j.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, status)
	}
	if err := s.repo.SetStatus(ctx, id, status, ""); err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}
	s.logger.Info("job advanced", "job_id", id, "status", status)
	return nil
}

// Complete stores the job's ordered results and marks it COMPLETED.
func (s *Service) Complete(ctx context.Context, id string, results []record.Record) error {
	j, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusCompleted)
	}
	if err := s.repo.Complete(ctx, id, results, s.now().UTC()); err != nil {
		return fmt.Errorf("completing job: %w", err)
	}
	s.logger.Info("job completed", "job_id", id, "results", len(results))
	return nil
}

// Fail marks a job FAILED with a reason.
func (s *Service) Fail(ctx context.Context, id, reason string) error {
	j, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusFailed)
	}
	if err := s.repo.SetStatus(ctx, id, StatusFailed, reason); err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}
	s.logger.Warn("job failed", "job_id", id, "reason", reason)
	return nil
}

// Results returns the ordered raw records of a completed job.
func (s *Service) Results(ctx context.Context, id string) ([]record.Record, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotCompleted, id, j.Status)
	}
	records, err := s.repo.Results(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading job results: %w", err)
	}
	return records, nil
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusCreated:
		return to == StatusUploading || to == StatusProcessing
	case StatusUploading:
		return to == StatusProcessing
	}
	return false
}
