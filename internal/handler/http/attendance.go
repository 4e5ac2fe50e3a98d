package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/jwt"
)

// multipartOverhead is allowed on top of the workbook itself for the form boundary and
// the small text fields.
const multipartOverhead = 1 << 20

type AttendanceHandler interface {
	Analyze(w http.ResponseWriter, r *http.Request)
	Upload(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	analysisService attendance.AnalysisService
	maxUploadBytes  int64
}

func NewAttendanceHandler(analysisService attendance.AnalysisService, maxUploadBytes int64) AttendanceHandler {
	return &attendanceHandlerImpl{
		analysisService: analysisService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Analyze handles POST /attendance/analyze
func (h *attendanceHandlerImpl) Analyze(w http.ResponseWriter, r *http.Request) {
	var req attendance.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode analyze request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.analysisService.Analyze(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Analyze request served", "run_id", result.ID, "reused", result.Reused, "requested_by", jwt.Subject(r.Context()))
	respondRun(w, result)
}

// Upload handles POST /attendance/upload
func (h *attendanceHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	// Parse multipart form (max 10MB in memory, rest spills to disk)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.HandleError(w, err)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	upload := attendance.WorkbookUpload{
		Filename:   fileHeader.Filename,
		Size:       fileHeader.Size,
		File:       file,
		Department: r.FormValue("department"),
	}

	monthStr, yearStr := r.FormValue("month"), r.FormValue("year")
	if monthStr != "" || yearStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			response.BadRequest(w, "invalid month parameter", nil)
			return
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "invalid year parameter", nil)
			return
		}
		upload.Period = &attendance.Period{Month: month, Year: year}
	}

	result, err := h.analysisService.AnalyzeWorkbook(r.Context(), upload)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Workbook upload served", "run_id", result.ID, "filename", upload.Filename, "reused", result.Reused, "requested_by", jwt.Subject(r.Context()))
	respondRun(w, result)
}

// ListRuns handles GET /attendance/runs
func (h *attendanceHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	var filter attendance.RunFilter

	// Pagination
	if p := r.URL.Query().Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			response.BadRequest(w, "invalid page parameter", nil)
			return
		}
		filter.Page = page
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil {
			response.BadRequest(w, "invalid limit parameter", nil)
			return
		}
		filter.Limit = limit
	}

	result, err := h.analysisService.ListRuns(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Runs, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// GetRun handles GET /attendance/runs/{id}
func (h *attendanceHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.analysisService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export handles GET /attendance/runs/{id}/export?format=pdf|xlsx
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := attendance.ExportFormat(r.URL.Query().Get("format"))

	file, err := h.analysisService.Export(r.Context(), id, format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}

// respondRun answers 201 for a freshly computed run and 200 when a stored run was reused.
func respondRun(w http.ResponseWriter, result attendance.RunResponse) {
	if result.Reused {
		response.SuccessWithMessage(w, "Identical input already analyzed", result)
		return
	}
	response.Created(w, "Analysis completed", result)
}
