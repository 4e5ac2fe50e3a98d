package attendance

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/validator"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs.Fields()
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.CheckInTime = "10am"
	cfg.RegularStart = "10:30"
	cfg.RegularEnd = "10:00"
	cfg.UnusualRequiredHours = 0
	cfg.TopN = 0
	cfg.Workers = -1

	assert.Equal(t, []string{
		"check_in_time",
		"regular_end",
		"unusual_required_hours",
		"top_n",
		"workers",
	}, fields(t, cfg.Validate()))
}

func TestConfig_IsWeekend(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsWeekend(time.Saturday))
	assert.True(t, cfg.IsWeekend(time.Sunday))
	assert.False(t, cfg.IsWeekend(time.Friday))

	cfg.WeekendDays = []time.Weekday{time.Friday}
	assert.True(t, cfg.IsWeekend(time.Friday))
	assert.False(t, cfg.IsWeekend(time.Sunday))
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, 28, Period{Month: 2, Year: 2025}.DaysInMonth())
	assert.Equal(t, 29, Period{Month: 2, Year: 2024}.DaysInMonth())
	assert.Equal(t, 31, Period{Month: 12, Year: 2025}.DaysInMonth())
	assert.Equal(t, time.Saturday, Period{Month: 3, Year: 2025}.Weekday(1))
}

func TestAnalyzeRequest_Validate(t *testing.T) {
	day := DayRecord{Day: 1, PunchTimes: []string{"09:45", "18:30"}}

	t.Run("valid", func(t *testing.T) {
		req := AnalyzeRequest{Employees: []EmployeeInput{{ID: "E001", Name: "Alice", Days: []DayRecord{day}}}}
		assert.NoError(t, req.Validate())
	})

	t.Run("garbage punches are not validation errors", func(t *testing.T) {
		req := AnalyzeRequest{Employees: []EmployeeInput{{
			ID: "E001", Name: "Alice",
			Days: []DayRecord{{Day: 1, PunchTimes: []string{"??", "9.45"}}},
		}}}
		assert.NoError(t, req.Validate())
	})

	t.Run("bad period", func(t *testing.T) {
		req := AnalyzeRequest{
			Period:    &Period{Month: 13, Year: 1999},
			Employees: []EmployeeInput{{ID: "E001", Name: "Alice", Days: []DayRecord{day}}},
		}
		assert.Equal(t, []string{"period.month", "period.year"}, fields(t, req.Validate()))
	})

	t.Run("ids are compared trimmed", func(t *testing.T) {
		req := AnalyzeRequest{Employees: []EmployeeInput{
			{ID: "E001", Name: "Alice", Days: []DayRecord{day}},
			{ID: " E001 ", Name: "Bob", Days: []DayRecord{day}},
		}}
		assert.Equal(t, []string{"employees[1].id"}, fields(t, req.Validate()))
	})

	t.Run("too many days", func(t *testing.T) {
		days := make([]DayRecord, 32)
		for i := range days {
			days[i] = DayRecord{Day: i%31 + 1}
		}
		req := AnalyzeRequest{Employees: []EmployeeInput{{ID: "E001", Name: "Alice", Days: days}}}
		assert.Equal(t, []string{"employees[0].days"}, fields(t, req.Validate()))
	})
}

func TestDayRecord_PunchSetCopiesPunches(t *testing.T) {
	d := DayRecord{Day: 4, IsHoliday: true, PunchTimes: []string{"09:45"}}
	ps := d.PunchSet()
	ps.Punches[0] = "changed"

	assert.Equal(t, "09:45", d.PunchTimes[0])
	assert.Equal(t, 4, ps.Day)
	assert.True(t, ps.IsHoliday)
}

func TestWorkbookUpload_Validate(t *testing.T) {
	file := bytes.NewReader([]byte("data"))

	tests := []struct {
		name   string
		upload WorkbookUpload
		max    int64
		want   []string
	}{
		{"valid xlsx", WorkbookUpload{Filename: "march.xlsx", Size: 10, File: file}, 100, nil},
		{"valid xls upper case", WorkbookUpload{Filename: "MARCH.XLS", Size: 10, File: file}, 100, nil},
		{"missing file", WorkbookUpload{Filename: "march.xlsx"}, 100, []string{"file"}},
		{"wrong type", WorkbookUpload{Filename: "march.csv", File: file}, 100, []string{"file"}},
		{"too large", WorkbookUpload{Filename: "march.xlsx", Size: 101, File: file}, 100, []string{"file"}},
		{"no limit", WorkbookUpload{Filename: "march.xlsx", Size: 1 << 30, File: file}, 0, nil},
		{
			"bad period",
			WorkbookUpload{Filename: "march.xlsx", File: file, Period: &Period{Month: 0, Year: 1990}},
			100,
			[]string{"month", "year"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.upload.Validate(tt.max)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, fields(t, err))
		})
	}
}

func TestRunFilter_Validate(t *testing.T) {
	f := RunFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	bad := RunFilter{Page: -1, Limit: 101}
	assert.Equal(t, []string{"page", "limit"}, fields(t, bad.Validate()))
}
