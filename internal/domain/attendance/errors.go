package attendance

import "errors"

// Attendance analysis domain errors
var (
	// Run errors
	ErrRunNotFound      = errors.New("analysis run not found")
	ErrDuplicateRun     = errors.New("analysis run with the same input already exists")
	ErrInvalidRunReport = errors.New("stored analysis report is corrupt")

	// Export errors
	ErrUnsupportedExportFormat = errors.New("unsupported export format")

	// Ingestion errors
	ErrEmptyWorkbook = errors.New("workbook contains no employee rows")
)
