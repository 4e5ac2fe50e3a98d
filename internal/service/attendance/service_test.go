package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/validator"
)

// memoryRunRepository is an in-memory attendance.RunRepository.
type memoryRunRepository struct {
	mu   sync.Mutex
	runs []attendance.AnalysisRun

	// raceOnCreate makes Create behave as if an identical run was stored first.
	raceOnCreate bool
	lookupErr    error
	creates      int
}

func (r *memoryRunRepository) EnsureSchema(ctx context.Context) error { return nil }

func (r *memoryRunRepository) Create(ctx context.Context, run attendance.AnalysisRun) (attendance.AnalysisRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++

	if r.raceOnCreate {
		winner := run
		winner.ID = uuid.NewString()
		r.runs = append(r.runs, winner)
		return attendance.AnalysisRun{}, attendance.ErrDuplicateRun
	}
	for _, existing := range r.runs {
		if existing.Fingerprint == run.Fingerprint {
			return attendance.AnalysisRun{}, attendance.ErrDuplicateRun
		}
	}
	r.runs = append(r.runs, run)
	return run, nil
}

func (r *memoryRunRepository) GetByID(ctx context.Context, id string) (attendance.AnalysisRun, error) {
	return r.find(func(run attendance.AnalysisRun) bool { return run.ID == id })
}

func (r *memoryRunRepository) GetByFingerprint(ctx context.Context, fingerprint string) (attendance.AnalysisRun, error) {
	if r.lookupErr != nil {
		return attendance.AnalysisRun{}, r.lookupErr
	}
	return r.find(func(run attendance.AnalysisRun) bool { return run.Fingerprint == fingerprint })
}

func (r *memoryRunRepository) find(match func(attendance.AnalysisRun) bool) (attendance.AnalysisRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if match(run) {
			return run, nil
		}
	}
	return attendance.AnalysisRun{}, attendance.ErrRunNotFound
}

func (r *memoryRunRepository) List(ctx context.Context, limit, offset int) ([]attendance.AnalysisRun, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]attendance.AnalysisRun, len(r.runs))
	copy(sorted, r.runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	total := int64(len(sorted))
	if offset >= len(sorted) {
		return []attendance.AnalysisRun{}, total, nil
	}
	end := min(offset+limit, len(sorted))

	page := make([]attendance.AnalysisRun, 0, end-offset)
	for _, run := range sorted[offset:end] {
		run.Report = attendance.Report{}
		page = append(page, run)
	}
	return page, total, nil
}

func (r *memoryRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.runs[:0]
	var deleted int64
	for _, run := range r.runs {
		if run.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	r.runs = kept
	return deleted, nil
}

func newTestService(t *testing.T, repo attendance.RunRepository, maxUploadBytes int64) attendance.AnalysisService {
	t.Helper()
	return NewAnalysisService(newEngine(t, testConfig()), repo, maxUploadBytes)
}

func TestAnalysisService_Analyze(t *testing.T) {
	repo := &memoryRunRepository{}
	svc := newTestService(t, repo, 0)
	ctx := context.Background()

	first, err := svc.Analyze(ctx, sampleRequest())
	require.NoError(t, err)

	assert.True(t, validator.IsValidUUID(first.ID))
	assert.False(t, first.Reused)
	assert.Equal(t, "api", first.Source)
	assert.Equal(t, 3, first.EmployeeCount)
	assert.Equal(t, 7, first.IssueCount)
	require.NotNil(t, first.Report)
	assert.Len(t, first.Report.Employees, 3)

	t.Run("identical input reuses the stored run", func(t *testing.T) {
		again, err := svc.Analyze(ctx, sampleRequest())
		require.NoError(t, err)
		assert.True(t, again.Reused)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 1, repo.creates)
	})

	t.Run("source does not affect reuse", func(t *testing.T) {
		req := sampleRequest()
		req.Source = "march.xlsx"
		again, err := svc.Analyze(ctx, req)
		require.NoError(t, err)
		assert.True(t, again.Reused)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("changed input creates a new run", func(t *testing.T) {
		req := sampleRequest()
		req.Employees[0].Days[0].PunchTimes = []string{"09:45", "18:31"}
		other, err := svc.Analyze(ctx, req)
		require.NoError(t, err)
		assert.False(t, other.Reused)
		assert.NotEqual(t, first.ID, other.ID)
	})

	t.Run("changed thresholds create a new run", func(t *testing.T) {
		cfg := testConfig()
		cfg.SignificantLateMinutes = 15
		strict := NewAnalysisService(newEngine(t, cfg), repo, 0)

		other, err := strict.Analyze(ctx, sampleRequest())
		require.NoError(t, err)
		assert.False(t, other.Reused)
		assert.NotEqual(t, first.ID, other.ID)
	})
}

func TestAnalysisService_Analyze_ConcurrentDuplicate(t *testing.T) {
	repo := &memoryRunRepository{raceOnCreate: true}
	svc := newTestService(t, repo, 0)

	resp, err := svc.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.True(t, resp.Reused)
	require.Len(t, repo.runs, 1)
	assert.Equal(t, repo.runs[0].ID, resp.ID)
}

func TestAnalysisService_Analyze_Errors(t *testing.T) {
	t.Run("validation error skips the repository", func(t *testing.T) {
		repo := &memoryRunRepository{}
		_, err := newTestService(t, repo, 0).Analyze(context.Background(), attendance.AnalyzeRequest{})

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Zero(t, repo.creates)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		boom := errors.New("connection reset")
		repo := &memoryRunRepository{lookupErr: boom}
		_, err := newTestService(t, repo, 0).Analyze(context.Background(), sampleRequest())

		assert.ErrorIs(t, err, boom)
		assert.Zero(t, repo.creates)
	})
}

func TestAnalysisService_GetRun(t *testing.T) {
	repo := &memoryRunRepository{}
	svc := newTestService(t, repo, 0)
	ctx := context.Background()

	created, err := svc.Analyze(ctx, sampleRequest())
	require.NoError(t, err)

	got, err := svc.GetRun(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.False(t, got.Reused)
	require.NotNil(t, got.Report)
	assert.Equal(t, 7, got.Report.SeverityBreakdown.Total)

	_, err = svc.GetRun(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, attendance.ErrRunNotFound)

	_, err = svc.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrRunNotFound)
}

func TestAnalysisService_ListRuns(t *testing.T) {
	repo := &memoryRunRepository{}
	svc := newTestService(t, repo, 0)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		repo.runs = append(repo.runs, attendance.AnalysisRun{
			ID:          uuid.NewString(),
			Fingerprint: fmt.Sprintf("fp-%d", i),
			Source:      fmt.Sprintf("run-%d.xlsx", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	resp, err := svc.ListRuns(ctx, attendance.RunFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.TotalCount)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.Page)
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "run-2.xlsx", resp.Runs[0].Source)
	assert.Equal(t, "run-1.xlsx", resp.Runs[1].Source)
	assert.Nil(t, resp.Runs[0].Report)

	defaults, err := svc.ListRuns(ctx, attendance.RunFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 20, defaults.Limit)
	assert.Len(t, defaults.Runs, 5)
	assert.Equal(t, "run-4.xlsx", defaults.Runs[0].Source)

	_, err = svc.ListRuns(ctx, attendance.RunFilter{Limit: 500})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"limit"}, verrs.Fields())
}

func TestAnalysisService_Export(t *testing.T) {
	repo := &memoryRunRepository{}
	svc := newTestService(t, repo, 0)
	ctx := context.Background()

	created, err := svc.Analyze(ctx, sampleRequest())
	require.NoError(t, err)

	t.Run("pdf", func(t *testing.T) {
		file, err := svc.Export(ctx, created.ID, attendance.ExportPDF)
		require.NoError(t, err)
		assert.Equal(t, "attendance-report-"+created.ID+".pdf", file.Filename)
		assert.Equal(t, "application/pdf", file.ContentType)
		assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF-")))
	})

	t.Run("xlsx", func(t *testing.T) {
		file, err := svc.Export(ctx, created.ID, attendance.ExportXLSX)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"))

		f, err := excelize.OpenReader(bytes.NewReader(file.Content))
		require.NoError(t, err)
		defer f.Close()
		assert.NotEmpty(t, f.GetSheetList())
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := svc.Export(ctx, created.ID, attendance.ExportFormat("csv"))
		assert.ErrorIs(t, err, attendance.ErrUnsupportedExportFormat)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := svc.Export(ctx, uuid.NewString(), attendance.ExportPDF)
		assert.ErrorIs(t, err, attendance.ErrRunNotFound)
	})
}

func TestAnalysisService_PurgeRuns(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &memoryRunRepository{runs: []attendance.AnalysisRun{
		{ID: "old-1", CreatedAt: now.AddDate(0, 0, -120)},
		{ID: "old-2", CreatedAt: now.AddDate(0, 0, -91)},
		{ID: "recent", CreatedAt: now.AddDate(0, 0, -3)},
	}}
	svc := newTestService(t, repo, 0)

	deleted, err := svc.PurgeRuns(context.Background(), now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	require.Len(t, repo.runs, 1)
	assert.Equal(t, "recent", repo.runs[0].ID)
}

func buildWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestAnalysisService_AnalyzeWorkbook(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Punch Report"},
		[]interface{}{"Employee ID", "Name", "Department", "3", "4", "5"},
		[]interface{}{"E001", "Alice", "Engineering", "09:45 18:30", "10:40 17:00", ""},
		[]interface{}{"E002", "Bob", "", "", "09:30", "09:50 18:40"},
	)

	repo := &memoryRunRepository{}
	svc := newTestService(t, repo, 1<<20)

	upload := func() attendance.WorkbookUpload {
		return attendance.WorkbookUpload{
			Filename:   "march.xlsx",
			Size:       int64(len(data)),
			File:       bytes.NewReader(data),
			Period:     &attendance.Period{Month: 3, Year: 2025},
			Department: "Engineering",
		}
	}

	resp, err := svc.AnalyzeWorkbook(context.Background(), upload())
	require.NoError(t, err)
	assert.Equal(t, "march.xlsx", resp.Source)
	assert.Equal(t, 2, resp.EmployeeCount)
	require.NotNil(t, resp.Report)

	// 2025-03-05 is a Wednesday; 3 and 4 are Monday and Tuesday
	bob := resp.Report.Employees[1]
	assert.Equal(t, "Bob", bob.Name)
	assert.Equal(t, "Engineering", bob.Department)
	assert.Equal(t, 1, bob.Summary.AbsentDays)
	assert.Equal(t, 2, bob.Summary.PresentDays)

	again, err := svc.AnalyzeWorkbook(context.Background(), upload())
	require.NoError(t, err)
	assert.True(t, again.Reused)
	assert.Equal(t, resp.ID, again.ID)
}

func TestAnalysisService_AnalyzeWorkbook_Errors(t *testing.T) {
	headerOnly := buildWorkbook(t, []interface{}{"Employee ID", "Name", "Department", "1", "2"})
	noHeader := buildWorkbook(t, []interface{}{"Staff", "Name"}, []interface{}{"E001", "Alice"})
	valid := buildWorkbook(t,
		[]interface{}{"Employee ID", "Name", "Department", "1"},
		[]interface{}{"E001", "Alice", "Engineering", "09:45 18:30"},
	)

	tests := []struct {
		name      string
		filename  string
		data      []byte
		maxBytes  int64
		wantErr   error
		wantField string
	}{
		{name: "header without employees", filename: "a.xlsx", data: headerOnly, wantErr: attendance.ErrEmptyWorkbook},
		{name: "no header row", filename: "a.xlsx", data: noHeader, wantField: "file"},
		{name: "wrong extension", filename: "a.csv", data: valid, wantField: "file"},
		{name: "larger than allowed", filename: "a.xlsx", data: valid, maxBytes: 64, wantField: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRunRepository{}
			svc := newTestService(t, repo, tt.maxBytes)

			// Size is left unset so the limit is enforced on the bytes actually read.
			_, err := svc.AnalyzeWorkbook(context.Background(), attendance.WorkbookUpload{
				Filename: tt.filename,
				File:     bytes.NewReader(tt.data),
			})
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantField != "" {
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Equal(t, []string{tt.wantField}, verrs.Fields())
			}
			assert.Zero(t, repo.creates)
		})
	}
}
