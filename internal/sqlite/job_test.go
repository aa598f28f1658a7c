package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/repository"
	"github.com/stretchr/testify/require"
)

func createJob(t *testing.T, repo *JobRepository, id, construct string, createdAt time.Time) *job.Job {
	t.Helper()
	j := &job.Job{ID: id, Name: "Interview round " + id, Construct: construct, Status: job.StatusCreated, CreatedAt: createdAt}
	require.NoError(t, repo.Create(context.Background(), j))
	return j
}

func TestJobRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	createJob(t, repo, "j1", "user_story", time.Now().UTC())

	retrieved, err := repo.Get(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, "user_story", retrieved.Construct)
	require.Equal(t, job.StatusCreated, retrieved.Status)
	require.Nil(t, retrieved.CompletedAt)
	require.Zero(t, retrieved.ResultCount)

	_, err = repo.Get(ctx, "nonexistent")
	require.Equal(t, repository.ErrNotFound, err)

	require.Equal(t, repository.ErrConflict, repo.Create(ctx, &job.Job{ID: "j1", Name: "dup", Construct: "x", Status: job.StatusCreated}))
}

func TestJobRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createJob(t, repo, "j1", "user_story", base)
	createJob(t, repo, "j2", "requirement", base.Add(time.Minute))
	createJob(t, repo, "j3", "user_story", base.Add(2*time.Minute))
	require.NoError(t, repo.SetStatus(ctx, "j3", job.StatusProcessing, ""))

	all, err := repo.List(ctx, job.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"j3", "j2", "j1"}, jobIDs(all))

	stories, err := repo.List(ctx, job.ListOptions{Construct: "user_story"})
	require.NoError(t, err)
	require.Equal(t, []string{"j3", "j1"}, jobIDs(stories))

	processing, err := repo.List(ctx, job.ListOptions{Status: job.StatusProcessing})
	require.NoError(t, err)
	require.Equal(t, []string{"j3"}, jobIDs(processing))

	page, err := repo.List(ctx, job.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"j2"}, jobIDs(page))
}

func TestJobRepository_SetStatus(t *testing.T) {
	db := NewTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	createJob(t, repo, "j1", "user_story", time.Now().UTC())
	require.NoError(t, repo.SetStatus(ctx, "j1", job.StatusFailed, "worker crashed"))

	retrieved, err := repo.Get(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, job.StatusFailed, retrieved.Status)
	require.Equal(t, "worker crashed", retrieved.Error)
	require.NotNil(t, retrieved.CompletedAt)

	require.Equal(t, repository.ErrNotFound, repo.SetStatus(ctx, "nonexistent", job.StatusFailed, ""))
}

func TestJobRepository_CompleteAndResults(t *testing.T) {
	db := NewTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	createJob(t, repo, "j1", "user_story", time.Now().UTC())

	results := []record.Record{
		{ID: "US-2", Fields: map[string]schema.Value{
			"story":       schema.String("As a designer, I need tags, \"fast\""),
			"match_score": schema.Number(0.81),
			"tags":        schema.Tags("dam", "metadata"),
		}},
		{ID: "US-1", Fields: map[string]schema.Value{
			"story":       schema.String("multi\nline"),
			"match_score": schema.Number(1),
			"tags":        schema.Tags(),
		}},
	}
	completedAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Complete(ctx, "j1", results, completedAt))

	retrieved, err := repo.Get(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, job.StatusCompleted, retrieved.Status)
	require.Equal(t, 2, retrieved.ResultCount)
	require.NotNil(t, retrieved.CompletedAt)
	require.True(t, completedAt.Equal(*retrieved.CompletedAt))

	loaded, err := repo.Results(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, []string{"US-2", "US-1"}, record.IDs(loaded), "results keep their original order")
	for i := range results {
		require.True(t, results[i].Equal(loaded[i]), results[i].ID)
	}

	empty, err := repo.Results(ctx, "nonexistent")
	require.NoError(t, err)
	require.Empty(t, empty)

	require.Equal(t, repository.ErrNotFound, repo.Complete(ctx, "nonexistent", results, completedAt))
}

func TestJobRepository_CompleteLargeBatch(t *testing.T) {
	db := NewTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	createJob(t, repo, "j1", "user_story", time.Now().UTC())

	results := make([]record.Record, 450)
	for i := range results {
		results[i] = record.Record{ID: fmt.Sprintf("US-%d", i+1), Fields: map[string]schema.Value{}}
	}
	require.NoError(t, repo.Complete(ctx, "j1", results, time.Now().UTC()))

	// Completing again replaces the previous results.
	require.NoError(t, repo.Complete(ctx, "j1", results[:3], time.Now().UTC()))
	loaded, err := repo.Results(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, []string{"US-1", "US-2", "US-3"}, record.IDs(loaded))
}

func jobIDs(jobs []job.Job) []string {
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return ids
}
