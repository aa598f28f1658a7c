package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/ganot/interview-etl/internal/repository"
)

// resultBatchSize bounds the bound parameters of one insert statement.
const resultBatchSize = 200

// JobRepository implements job.Repository for SQLite
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

func selectJobs() sq.SelectBuilder {
	return sq.Select(
		"j.id", "j.name", "j.construct", "j.status", "j.error", "j.created_at", "j.completed_at",
		"(SELECT COUNT(*) FROM extraction_results r WHERE r.job_id = j.id) AS result_count",
	).From("extraction_jobs j")
}

// Create creates a new job
func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	_, err := r.db.exec(ctx, sq.Insert("extraction_jobs").
		Columns("id", "name", "construct", "status", "error", "created_at").
		Values(j.ID, j.Name, j.Construct, string(j.Status), j.Error, j.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID
func (r *JobRepository) Get(ctx context.Context, id string) (*job.Job, error) {
	row, err := r.db.queryRow(ctx, selectJobs().Where(sq.Eq{"j.id": id}))
	if err != nil {
		return nil, err
	}
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return j, err
}

// List returns jobs newest first
func (r *JobRepository) List(ctx context.Context, opts job.ListOptions) ([]job.Job, error) {
	q := selectJobs().OrderBy("j.created_at DESC", "j.id")
	if opts.Status != "" {
		q = q.Where(sq.Eq{"j.status": string(opts.Status)})
	}
	if opts.Construct != "" {
		q = q.Where(sq.Eq{"j.construct": opts.Construct})
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}

	rows, err := r.db.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []job.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}

// SetStatus updates a job's status and error message
func (r *JobRepository) SetStatus(ctx context.Context, id string, status job.Status, message string) error {
	update := sq.Update("extraction_jobs").
		Set("status", string(status)).
		Set("error", message).
		Where(sq.Eq{"id": id})
	if status.Terminal() {
		update = update.Set("completed_at", time.Now().UTC())
	}

	result, err := r.db.exec(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return requireAffected(result)
}

// Complete replaces the job's results and marks it completed
func (r *JobRepository) Complete(ctx context.Context, id string, results []record.Record, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Update("extraction_jobs").
		Set("status", string(job.StatusCompleted)).
		Set("error", "").
		Set("completed_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	query, args, err = sq.Delete("extraction_results").Where(sq.Eq{"job_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear job results: %w", err)
	}

	for start := 0; start < len(results); start += resultBatchSize {
		end := min(start+resultBatchSize, len(results))
		insert := sq.Insert("extraction_results").Columns("job_id", "position", "record_id", "fields")
		for i := start; i < end; i++ {
			fields, err := json.Marshal(results[i].Fields)
			if err != nil {
				return fmt.Errorf("failed to encode result %d: %w", i, err)
			}
			insert = insert.Values(id, i, results[i].ID, string(fields))
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to store job results: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Results returns the job's records in their original order
func (r *JobRepository) Results(ctx context.Context, id string) ([]record.Record, error) {
	rows, err := r.db.query(ctx, sq.Select("record_id", "fields").
		From("extraction_results").
		Where(sq.Eq{"job_id": id}).
		OrderBy("position"))
	if err != nil {
		return nil, fmt.Errorf("failed to load job results: %w", err)
	}
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		var (
			rec    record.Record
			fields string
		)
		if err := rows.Scan(&rec.ID, &fields); err != nil {
			return nil, fmt.Errorf("failed to scan job result: %w", err)
		}
		rec.Fields = map[string]schema.Value{}
		if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode result %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return records, nil
}

func scanJob(s scanner) (*job.Job, error) {
	var (
		j         job.Job
		completed sql.NullTime
	)
	err := s.Scan(&j.ID, &j.Name, &j.Construct, &j.Status, &j.Error, &j.CreatedAt, &completed, &j.ResultCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	if completed.Valid {
		t := completed.Time
		j.CompletedAt = &t
	}
	return &j, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
