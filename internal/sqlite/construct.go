package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/repository"
)

var constructColumns = []string{"id", "definition", "created_at"}

// ConstructRepository implements construct.Repository for SQLite
type ConstructRepository struct {
	db *DB
}

// NewConstructRepository creates a new ConstructRepository
func NewConstructRepository(db *DB) *ConstructRepository {
	return &ConstructRepository{db: db}
}

// Create stores a construct. Names are unique.
func (r *ConstructRepository) Create(ctx context.Context, c *construct.Construct) error {
	definition, err := schema.Marshal(c.Schema)
	if err != nil {
		return fmt.Errorf("failed to encode construct: %w", err)
	}

	_, err = r.db.exec(ctx, sq.Insert("constructs").
		Columns("id", "name", "description", "definition", "created_at").
		Values(c.ID, c.Schema.Name, c.Schema.Description, string(definition), c.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create construct: %w", err)
	}
	return nil
}

// Get retrieves a construct by ID
func (r *ConstructRepository) Get(ctx context.Context, id string) (*construct.Construct, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByName retrieves a construct by schema name
func (r *ConstructRepository) GetByName(ctx context.Context, name string) (*construct.Construct, error) {
	return r.getOne(ctx, sq.Eq{"name": name})
}

// List returns all constructs ordered by name
func (r *ConstructRepository) List(ctx context.Context) ([]construct.Construct, error) {
	rows, err := r.db.query(ctx, sq.Select(constructColumns...).From("constructs").OrderBy("name"))
	if err != nil {
		return nil, fmt.Errorf("failed to list constructs: %w", err)
	}
	defer rows.Close()

	var out []construct.Construct
	for rows.Next() {
		c, err := scanConstruct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating construct rows: %w", err)
	}
	return out, nil
}

func (r *ConstructRepository) getOne(ctx context.Context, where sq.Eq) (*construct.Construct, error) {
	row, err := r.db.queryRow(ctx, sq.Select(constructColumns...).From("constructs").Where(where))
	if err != nil {
		return nil, err
	}
	c, err := scanConstruct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return c, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConstruct(s scanner) (*construct.Construct, error) {
	var (
		c          construct.Construct
		definition string
	)
	if err := s.Scan(&c.ID, &definition, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan construct: %w", err)
	}

	sc, err := schema.Parse([]byte(definition))
	if err != nil {
		return nil, fmt.Errorf("construct %s has an invalid definition: %w", c.ID, err)
	}
	c.Schema = sc
	return &c, nil
}
