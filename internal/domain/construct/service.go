package construct

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/repository"
	"github.com/google/uuid"
)

// Service resolves record schemas from the built-in set and stored constructs.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new construct service. A nil repository serves built-ins only.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a schema as a new construct.
func (s *Service) Create(ctx context.Context, sc *schema.Schema) (*Construct, error) {
	if sc == nil {
		return nil, fmt.Errorf("%w: nil schema", schema.ErrInvalidSchema)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if _, ok := schema.Builtin(sc.Name); ok {
		return nil, fmt.Errorf("%w: %s is built in", ErrAlreadyExists, sc.Name)
	}
	if s.repo == nil {
		return nil, errors.New("construct storage is not configured")
	}

	c := &Construct{
		ID:        uuid.NewString(),
		Schema:    sc,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, sc.Name)
		}
		return nil, fmt.Errorf("creating construct: %w", err)
	}

	s.logger.Info("construct created", "construct", sc.Name, "fields", len(sc.Fields))
	return c, nil
}

// Import stores every schema in a constructs file, skipping names that already exist.
func (s *Service) Import(ctx context.Context, path string) (int, error) {
	schemas, err := schema.LoadFile(path)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, sc := range schemas {
		if _, err := s.Create(ctx, sc); err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				s.logger.Debug("construct exists", "construct", sc.Name)
				continue
			}
			return created, fmt.Errorf("importing %s: %w", sc.Name, err)
		}
		created++
	}
	return created, nil
}

// Get fetches a stored construct by ID.
func (s *Service) Get(ctx context.Context, id string) (*Construct, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrConstructNotFound, id)
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrConstructNotFound, id)
		}
		return nil, fmt.Errorf("getting construct: %w", err)
	}
	return c, nil
}

// Resolve returns the schema with the given name. Built-ins take precedence.
func (s *Service) Resolve(ctx context.Context, name string) (*schema.Schema, error) {
	if sc, ok := schema.Builtin(name); ok {
		return sc, nil
	}
	if s.repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrConstructNotFound, name)
	}
	c, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrConstructNotFound, name)
		}
		return nil, fmt.Errorf("resolving construct: %w", err)
	}
	return c.Schema, nil
}

// List returns built-in schemas followed by stored constructs.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	for _, sc := range schema.Builtins() {
		out = append(out, summarize(sc, true))
	}
	if s.repo == nil {
		return out, nil
	}

	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing constructs: %w", err)
	}
	for _, c := range stored {
		out = append(out, summarize(c.Schema, false))
	}
	return out, nil
}

func summarize(sc *schema.Schema, builtin bool) Summary {
	return Summary{
		Name:        sc.Name,
		Description: sc.Description,
		IDPrefix:    sc.IDPrefix,
		Fields:      len(sc.Fields),
		Builtin:     builtin,
	}
}
