package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		PayloadTooLarge(w, "Request body is too large")
		return
	}

	switch {
	// Analysis run errors
	case errors.Is(err, attendance.ErrRunNotFound):
		NotFound(w, "Analysis run not found")
	case errors.Is(err, attendance.ErrDuplicateRun):
		Conflict(w, "Analysis run already exists")
	case errors.Is(err, attendance.ErrUnsupportedExportFormat):
		BadRequest(w, "Unsupported export format", map[string]string{"format": "format must be one of: pdf, xlsx"})

	// Ingestion errors
	case errors.Is(err, attendance.ErrEmptyWorkbook):
		ValidationError(w, map[string]string{"file": err.Error()})

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
