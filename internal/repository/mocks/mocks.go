package mocks

import (
	"context"
	"time"

	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/stretchr/testify/mock"
)

// JobRepository is a mock for job.Repository.
type JobRepository struct {
	mock.Mock
}

func (m *JobRepository) Create(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JobRepository) Get(ctx context.Context, id string) (*job.Job, error) {
	args := m.Called(ctx, id)
	if j, ok := args.Get(0).(*job.Job); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JobRepository) List(ctx context.Context, opts job.ListOptions) ([]job.Job, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]job.Job); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JobRepository) SetStatus(ctx context.Context, id string, status job.Status, message string) error {
	args := m.Called(ctx, id, status, message)
	return args.Error(0)
}

func (m *JobRepository) Complete(ctx context.Context, id string, results []record.Record, at time.Time) error {
	args := m.Called(ctx, id, results, at)
	return args.Error(0)
}

func (m *JobRepository) Results(ctx context.Context, id string) ([]record.Record, error) {
	args := m.Called(ctx, id)
	if list, ok := args.Get(0).([]record.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ConstructRepository is a mock for construct.Repository.
type ConstructRepository struct {
	mock.Mock
}

func (m *ConstructRepository) Create(ctx context.Context, c *construct.Construct) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ConstructRepository) Get(ctx context.Context, id string) (*construct.Construct, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*construct.Construct); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConstructRepository) GetByName(ctx context.Context, name string) (*construct.Construct, error) {
	args := m.Called(ctx, name)
	if c, ok := args.Get(0).(*construct.Construct); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConstructRepository) List(ctx context.Context) ([]construct.Construct, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]construct.Construct); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
