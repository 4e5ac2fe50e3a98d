package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/database"
)

const uniqueViolation = "23505"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id             UUID PRIMARY KEY,
		fingerprint    TEXT NOT NULL,
		source         TEXT NOT NULL,
		employee_count INTEGER NOT NULL,
		issue_count    INTEGER NOT NULL,
		report         JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS analysis_runs_fingerprint_key ON analysis_runs (fingerprint)`,
	`CREATE INDEX IF NOT EXISTS analysis_runs_created_at_idx ON analysis_runs (created_at DESC)`,
}

type analysisRunRepository struct {
	db *database.DB
}

// EnsureSchema implements attendance.RunRepository.
func (r *analysisRunRepository) EnsureSchema(ctx context.Context) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		for _, stmt := range schemaStatements {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply analysis_runs schema: %w", err)
			}
		}
		return nil
	})
}

// Create implements attendance.RunRepository.
func (r *analysisRunRepository) Create(ctx context.Context, run attendance.AnalysisRun) (attendance.AnalysisRun, error) {
	q := GetQuerier(ctx, r.db)

	report, err := json.Marshal(run.Report)
	if err != nil {
		return attendance.AnalysisRun{}, fmt.Errorf("failed to encode analysis report: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO analysis_runs (id, fingerprint, source, employee_count, issue_count, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		run.ID,
		run.Fingerprint,
		run.Source,
		run.EmployeeCount,
		run.IssueCount,
		report,
		createdAt,
	).Scan(&run.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.AnalysisRun{}, attendance.ErrDuplicateRun
		}
		return attendance.AnalysisRun{}, fmt.Errorf("failed to create analysis run: %w", err)
	}

	return run, nil
}

// GetByID implements attendance.RunRepository.
func (r *analysisRunRepository) GetByID(ctx context.Context, id string) (attendance.AnalysisRun, error) {
	return r.getOne(ctx, "id", id)
}

// GetByFingerprint implements attendance.RunRepository.
func (r *analysisRunRepository) GetByFingerprint(ctx context.Context, fingerprint string) (attendance.AnalysisRun, error) {
	return r.getOne(ctx, "fingerprint", fingerprint)
}

func (r *analysisRunRepository) getOne(ctx context.Context, column, value string) (attendance.AnalysisRun, error) {
	q := GetQuerier(ctx, r.db)

	// column is one of two fixed identifiers, never user input
	query := fmt.Sprintf(`
		SELECT id, fingerprint, source, employee_count, issue_count, report, created_at
		FROM analysis_runs
		WHERE %s = $1
	`, column)

	var run attendance.AnalysisRun
	var report []byte
	err := q.QueryRow(ctx, query, value).Scan(
		&run.ID, &run.Fingerprint, &run.Source, &run.EmployeeCount, &run.IssueCount, &report, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AnalysisRun{}, attendance.ErrRunNotFound
		}
		return attendance.AnalysisRun{}, fmt.Errorf("failed to get analysis run by %s: %w", column, err)
	}

	if err := json.Unmarshal(report, &run.Report); err != nil {
		return attendance.AnalysisRun{}, fmt.Errorf("%w: %v", attendance.ErrInvalidRunReport, err)
	}

	return run, nil
}

// List implements attendance.RunRepository.
func (r *analysisRunRepository) List(ctx context.Context, limit, offset int) ([]attendance.AnalysisRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count analysis runs: %w", err)
	}

	query := `
		SELECT id, fingerprint, source, employee_count, issue_count, created_at
		FROM analysis_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	runs := make([]attendance.AnalysisRun, 0, limit)
	for rows.Next() {
		var run attendance.AnalysisRun
		if err := rows.Scan(&run.ID, &run.Fingerprint, &run.Source, &run.EmployeeCount, &run.IssueCount, &run.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate analysis runs: %w", err)
	}

	return runs, total, nil
}

// DeleteOlderThan implements attendance.RunRepository.
func (r *analysisRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM analysis_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete analysis runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func NewAnalysisRunRepository(db *database.DB) attendance.RunRepository {
	return &analysisRunRepository{db: db}
}
