package attendance

import (
	"context"
	"time"
)

// RunRepository defines data access methods for persisted analysis runs.
type RunRepository interface {
	// EnsureSchema creates the analysis_runs table when missing
	EnsureSchema(ctx context.Context) error

	// Create stores a new run; ErrDuplicateRun when the fingerprint is taken
	Create(ctx context.Context, run AnalysisRun) (AnalysisRun, error)

	// GetByID returns ErrRunNotFound when no run matches
	GetByID(ctx context.Context, id string) (AnalysisRun, error)

	// GetByFingerprint returns ErrRunNotFound when the input was never analyzed
	GetByFingerprint(ctx context.Context, fingerprint string) (AnalysisRun, error)

	// List returns runs without reports, newest first, plus the total count
	List(ctx context.Context, limit, offset int) ([]AnalysisRun, int64, error)

	// DeleteOlderThan removes runs created before cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
