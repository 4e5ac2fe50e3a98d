package attendance

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/export"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/validator"
)

type AnalysisServiceImpl struct {
	engine         *Engine
	runRepository  attendance.RunRepository
	maxUploadBytes int64
}

// Analyze implements attendance.AnalysisService.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, req attendance.AnalyzeRequest) (attendance.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RunResponse{}, err
	}

	fingerprint, err := s.fingerprint(req)
	if err != nil {
		return attendance.RunResponse{}, fmt.Errorf("failed to fingerprint analysis input: %w", err)
	}

	existing, err := s.runRepository.GetByFingerprint(ctx, fingerprint)
	if err == nil {
		slog.Info("Reusing stored analysis run", "run_id", existing.ID, "source", req.Source)
		return toRunResponse(existing, true, true), nil
	}
	if !errors.Is(err, attendance.ErrRunNotFound) {
		return attendance.RunResponse{}, fmt.Errorf("failed to look up analysis run: %w", err)
	}

	start := time.Now()
	report, err := s.engine.Analyze(ctx, req)
	if err != nil {
		return attendance.RunResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.RunResponse{}, fmt.Errorf("failed to generate run id: %w", err)
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	created, err := s.runRepository.Create(ctx, attendance.AnalysisRun{
		ID:            id.String(),
		Fingerprint:   fingerprint,
		Source:        source,
		EmployeeCount: len(report.Employees),
		IssueCount:    report.TotalIssues(),
		Report:        report,
		CreatedAt:     report.GeneratedAt,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateRun) {
			// lost a race against an identical submission
			stored, getErr := s.runRepository.GetByFingerprint(ctx, fingerprint)
			if getErr != nil {
				return attendance.RunResponse{}, fmt.Errorf("failed to load concurrent analysis run: %w", getErr)
			}
			return toRunResponse(stored, true, true), nil
		}
		return attendance.RunResponse{}, fmt.Errorf("failed to store analysis run: %w", err)
	}

	slog.Info("Analysis run completed",
		"run_id", created.ID,
		"source", created.Source,
		"employee_count", created.EmployeeCount,
		"issue_count", created.IssueCount,
		"high_severity", report.SeverityBreakdown.High,
		"duration", time.Since(start),
	)

	return toRunResponse(created, true, false), nil
}

// AnalyzeWorkbook implements attendance.AnalysisService.
func (s *AnalysisServiceImpl) AnalyzeWorkbook(ctx context.Context, upload attendance.WorkbookUpload) (attendance.RunResponse, error) {
	if err := upload.Validate(s.maxUploadBytes); err != nil {
		return attendance.RunResponse{}, err
	}

	reader := upload.File
	if s.maxUploadBytes > 0 {
		reader = io.LimitReader(upload.File, s.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return attendance.RunResponse{}, fmt.Errorf("failed to read uploaded workbook: %w", err)
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return attendance.RunResponse{}, validator.ValidationErrors{{
			Field:   "file",
			Message: fmt.Sprintf("workbook size must not exceed %d bytes", s.maxUploadBytes),
		}}
	}

	employees, err := spreadsheet.Extract(upload.Filename, bytes.NewReader(data), spreadsheet.Options{
		Period:      upload.Period,
		WeekendDays: s.engine.Config().WeekendDays,
	})
	if err != nil {
		if errors.Is(err, spreadsheet.ErrNoEmployees) {
			return attendance.RunResponse{}, attendance.ErrEmptyWorkbook
		}
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) ||
			errors.Is(err, spreadsheet.ErrNoWorksheet) ||
			errors.Is(err, spreadsheet.ErrHeaderNotFound) {
			return attendance.RunResponse{}, validator.ValidationErrors{{Field: "file", Message: err.Error()}}
		}
		return attendance.RunResponse{}, fmt.Errorf("failed to extract workbook: %w", err)
	}

	slog.Info("Workbook extracted", "filename", upload.Filename, "size", len(data), "employee_count", len(employees))

	return s.Analyze(ctx, attendance.AnalyzeRequest{
		Period:     upload.Period,
		Department: upload.Department,
		Employees:  employees,
		Source:     upload.Filename,
	})
}

// GetRun implements attendance.AnalysisService.
func (s *AnalysisServiceImpl) GetRun(ctx context.Context, id string) (attendance.RunResponse, error) {
	run, err := s.getRun(ctx, id)
	if err != nil {
		return attendance.RunResponse{}, err
	}
	return toRunResponse(run, true, false), nil
}

// ListRuns implements attendance.AnalysisService.
func (s *AnalysisServiceImpl) ListRuns(ctx context.Context, filter attendance.RunFilter) (attendance.ListRunsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRunsResponse{}, err
	}

	offset := (filter.Page - 1) * filter.Limit
	runs, total, err := s.runRepository.List(ctx, filter.Limit, offset)
	if err != nil {
		return attendance.ListRunsResponse{}, fmt.Errorf("failed to list analysis runs: %w", err)
	}

	responses := make([]attendance.RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, toRunResponse(run, false, false))
	}

	return attendance.ListRunsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Runs:       responses,
	}, nil
}

// Export implements attendance.AnalysisService.
func (s *AnalysisServiceImpl) Export(ctx context.Context, id string, format attendance.ExportFormat) (attendance.ExportFile, error) {
	if format != attendance.ExportPDF && format != attendance.ExportXLSX {
		return attendance.ExportFile{}, attendance.ErrUnsupportedExportFormat
	}

	run, err := s.getRun(ctx, id)
	if err != nil {
		return attendance.ExportFile{}, err
	}

	file := attendance.ExportFile{
		Filename: fmt.Sprintf("attendance-report-%s.%s", run.ID, format),
	}
	switch format {
	case attendance.ExportPDF:
		file.ContentType = "application/pdf"
		file.Content, err = export.RenderPDF(run.Report)
	case attendance.ExportXLSX:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Content, err = export.RenderXLSX(run.Report)
	}
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	slog.Info("Analysis run exported", "run_id", run.ID, "format", format, "size", len(file.Content))
	return file, nil
}

// PurgeRuns implements attendance.AnalysisService.
func (s *AnalysisServiceImpl) PurgeRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	deleted, err := s.runRepository.DeleteOlderThan(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge analysis runs: %w", err)
	}
	if deleted > 0 {
		slog.Info("Purged analysis runs", "count", deleted, "older_than", olderThan)
	}
	return deleted, nil
}

func (s *AnalysisServiceImpl) getRun(ctx context.Context, id string) (attendance.AnalysisRun, error) {
	if !validator.IsValidUUID(id) {
		return attendance.AnalysisRun{}, attendance.ErrRunNotFound
	}
	run, err := s.runRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrRunNotFound) {
			return attendance.AnalysisRun{}, err
		}
		return attendance.AnalysisRun{}, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return run, nil
}

// fingerprint hashes the request together with the engine configuration, so a
// changed threshold never serves a report computed under the old one.
func (s *AnalysisServiceImpl) fingerprint(req attendance.AnalyzeRequest) (string, error) {
	cfg := s.engine.Config()
	cfg.Workers = 0 // does not affect the report

	payload, err := json.Marshal(struct {
		Config     attendance.Config          `json:"config"`
		Period     *attendance.Period         `json:"period"`
		Department string                     `json:"department"`
		Employees  []attendance.EmployeeInput `json:"employees"`
	}{
		Config:     cfg,
		Period:     req.Period,
		Department: req.Department,
		Employees:  req.Employees,
	})
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func toRunResponse(run attendance.AnalysisRun, withReport, reused bool) attendance.RunResponse {
	resp := attendance.RunResponse{
		ID:            run.ID,
		Source:        run.Source,
		EmployeeCount: run.EmployeeCount,
		IssueCount:    run.IssueCount,
		CreatedAt:     run.CreatedAt.UTC().Format(time.RFC3339),
		Reused:        reused,
	}
	if withReport {
		report := run.Report
		resp.Report = &report
	}
	return resp
}

func NewAnalysisService(engine *Engine, runRepository attendance.RunRepository, maxUploadBytes int64) attendance.AnalysisService {
	return &AnalysisServiceImpl{
		engine:         engine,
		runRepository:  runRepository,
		maxUploadBytes: maxUploadBytes,
	}
}
