package attendance

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/validator"
)

// ========================================
// ANALYSIS INPUT DTOs
// ========================================

// DayRecord is one normalized day produced by the workbook extractor.
type DayRecord struct {
	Day        int      `json:"day"`
	IsWeekend  bool     `json:"is_weekend"`
	IsHoliday  bool     `json:"is_holiday"`
	PunchTimes []string `json:"punch_times"`
}

func (d DayRecord) PunchSet() PunchSet {
	punches := make([]string, len(d.PunchTimes))
	copy(punches, d.PunchTimes)
	return PunchSet{
		Day:       d.Day,
		IsWeekend: d.IsWeekend,
		IsHoliday: d.IsHoliday,
		Punches:   punches,
	}
}

type EmployeeInput struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Department string      `json:"department"`
	Days       []DayRecord `json:"days"`
}

type AnalyzeRequest struct {
	Period     *Period         `json:"period,omitempty"`
	Department string          `json:"department,omitempty"`
	Employees  []EmployeeInput `json:"employees"`

	// Source describes where the employees came from, e.g. the uploaded filename.
	Source string `json:"-"`
}

// Validate collects every structural problem in the batch. Unparseable punch
// strings are not validation errors; the classifier degrades them.
func (r *AnalyzeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Period != nil {
		if !validator.IsInRange(r.Period.Month, 1, 12) {
			errs = append(errs, validator.ValidationError{
				Field:   "period.month",
				Message: "month must be between 1 and 12",
			})
		}
		currentYear := time.Now().Year()
		if !validator.IsInRange(r.Period.Year, 2000, currentYear+1) {
			errs = append(errs, validator.ValidationError{
				Field:   "period.year",
				Message: fmt.Sprintf("year must be between 2000 and %d", currentYear+1),
			})
		}
	}

	if len(r.Employees) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employees",
			Message: "at least one employee is required",
		})
		return errs
	}

	maxDay := 31
	if r.Period != nil && len(errs) == 0 {
		maxDay = r.Period.DaysInMonth()
	}

	seenIDs := make(map[string]int, len(r.Employees))
	for i, emp := range r.Employees {
		prefix := fmt.Sprintf("employees[%d]", i)

		if validator.IsEmpty(emp.ID) {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".id",
				Message: "id is required",
			})
		} else if first, dup := seenIDs[strings.TrimSpace(emp.ID)]; dup {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".id",
				Message: fmt.Sprintf("id %q duplicates employees[%d]", emp.ID, first),
			})
		} else {
			seenIDs[strings.TrimSpace(emp.ID)] = i
		}

		if validator.IsEmpty(emp.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".name",
				Message: "name is required",
			})
		}

		if len(emp.Days) == 0 || len(emp.Days) > 31 {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + ".days",
				Message: "days must contain between 1 and 31 records",
			})
			continue
		}

		seenDays := make(map[int]bool, len(emp.Days))
		for j, day := range emp.Days {
			if !validator.IsInRange(day.Day, 1, maxDay) {
				errs = append(errs, validator.ValidationError{
					Field:   fmt.Sprintf("%s.days[%d].day", prefix, j),
					Message: fmt.Sprintf("day must be between 1 and %d", maxDay),
				})
				continue
			}
			if seenDays[day.Day] {
				errs = append(errs, validator.ValidationError{
					Field:   fmt.Sprintf("%s.days[%d].day", prefix, j),
					Message: fmt.Sprintf("day %d appears more than once", day.Day),
				})
			}
			seenDays[day.Day] = true
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WorkbookUpload carries a punch-clock export to be extracted and analyzed.
type WorkbookUpload struct {
	Filename   string
	Size       int64
	File       io.Reader
	Period     *Period
	Department string
}

func (u *WorkbookUpload) Validate(maxBytes int64) error {
	var errs validator.ValidationErrors

	if u.File == nil || validator.IsEmpty(u.Filename) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "punch-clock workbook is required",
		})
	} else {
		ext := strings.ToLower(filepath.Ext(u.Filename))
		if ext != ".xlsx" && ext != ".xls" {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "invalid file type: only xlsx, xls allowed",
			})
		} else if maxBytes > 0 && u.Size > maxBytes {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: fmt.Sprintf("workbook size must not exceed %d bytes", maxBytes),
			})
		}
	}

	if u.Period != nil {
		if !validator.IsInRange(u.Period.Month, 1, 12) {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be between 1 and 12",
			})
		}
		if u.Period.Year < 2000 {
			errs = append(errs, validator.ValidationError{
				Field:   "year",
				Message: "year must not be before 2000",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// ANALYSIS RUN DTOs
// ========================================

type RunResponse struct {
	ID            string  `json:"id"`
	Source        string  `json:"source"`
	EmployeeCount int     `json:"employee_count"`
	IssueCount    int     `json:"issue_count"`
	CreatedAt     string  `json:"created_at"`
	Reused        bool    `json:"reused"`
	Report        *Report `json:"report,omitempty"`
}

type RunFilter struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *RunFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListRunsResponse struct {
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
	Runs       []RunResponse `json:"runs"`
}

// ========================================
// EXPORT DTOs
// ========================================

type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
