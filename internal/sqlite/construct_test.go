package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/repository"
	"github.com/stretchr/testify/require"
)

func backlogConstruct(id string) *construct.Construct {
	return &construct.Construct{
		ID: id,
		Schema: &schema.Schema{
			Name:        "backlog",
			Description: "Backlog items",
			IDPrefix:    "BL",
			Fields: []schema.Field{
				{Name: "priority", Label: "Priority", Kind: schema.KindEnum, Values: schema.Priorities, Default: "Medium"},
				{Name: "epic", Kind: schema.KindText},
				{Name: "confidence", Kind: schema.KindScore, Max: 1},
				{Name: "tags", Kind: schema.KindTagSet},
			},
			Searchable: []string{"epic", "tags"},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestConstructRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewConstructRepository(db)
	ctx := context.Background()

	c := backlogConstruct("c1")
	require.NoError(t, repo.Create(ctx, c))

	retrieved, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, c.Schema, retrieved.Schema)
	require.WithinDuration(t, c.CreatedAt, retrieved.CreatedAt, time.Second)

	byName, err := repo.GetByName(ctx, "backlog")
	require.NoError(t, err)
	require.Equal(t, "c1", byName.ID)

	_, err = repo.Get(ctx, "nonexistent")
	require.Equal(t, repository.ErrNotFound, err)
	_, err = repo.GetByName(ctx, "nonexistent")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestConstructRepository_UniqueName(t *testing.T) {
	db := NewTestDB(t)
	repo := NewConstructRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, backlogConstruct("c1")))
	require.Equal(t, repository.ErrConflict, repo.Create(ctx, backlogConstruct("c2")))
}

func TestConstructRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewConstructRepository(db)
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	risk := &construct.Construct{
		ID: "c2",
		Schema: &schema.Schema{
			Name:     "risk",
			IDPrefix: "RISK",
			Fields:   []schema.Field{{Name: "impact", Kind: schema.KindScore, Max: 5}},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, risk))
	require.NoError(t, repo.Create(ctx, backlogConstruct("c1")))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "backlog", list[0].Name())
	require.Equal(t, "risk", list[1].Name())
}
