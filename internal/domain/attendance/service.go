package attendance

import (
	"context"
	"time"
)

// AnalysisService defines business logic for punch-clock analysis runs
type AnalysisService interface {
	// Analyze validates the batch, runs the engine and stores the resulting report
	Analyze(ctx context.Context, req AnalyzeRequest) (RunResponse, error)

	// AnalyzeWorkbook extracts employees from an uploaded export and analyzes them
	AnalyzeWorkbook(ctx context.Context, upload WorkbookUpload) (RunResponse, error)

	// GetRun retrieves a stored run including its report
	GetRun(ctx context.Context, id string) (RunResponse, error)

	// ListRuns lists stored runs without their reports, newest first
	ListRuns(ctx context.Context, filter RunFilter) (ListRunsResponse, error)

	// Export renders a stored report as a downloadable file
	Export(ctx context.Context, id string, format ExportFormat) (ExportFile, error)

	// PurgeRuns deletes runs created before the cutoff and returns how many were removed
	PurgeRuns(ctx context.Context, olderThan time.Time) (int64, error)
}
