package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

func sampleReport() attendance.Report {
	late := attendance.LateArrivalRecord{
		EmployeeID: "E002", EmployeeName: "Bob Müller",
		TotalLateDays: 2, TotalLateMinutes: 75, AverageLateMinutes: 37.5,
		Pattern: attendance.PatternSevere, Severity: attendance.SeverityMedium,
	}
	absence := attendance.AbsenceRecord{
		EmployeeID: "E002", EmployeeName: "Bob Müller",
		WorkingDays: 5, TotalAbsentDays: 2, AbsenceRate: 40, MaxConsecutiveDays: 2,
		ConsecutiveAbsences: []attendance.ConsecutiveAbsence{{StartDay: 4, EndDay: 5, Days: 2}},
		Pattern:             attendance.PatternChronic, Severity: attendance.SeverityHigh,
	}

	return attendance.Report{
		Period:      &attendance.Period{Month: 3, Year: 2025},
		Department:  "Engineering",
		GeneratedAt: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
		Employees: []attendance.EmployeeSummary{
			{EmployeeID: "E001", Name: "Alice", Department: "Engineering", PunctualityScore: 100,
				Summary: attendance.AttendanceSummary{WorkingDays: 5, PresentDays: 5, FullDays: 5, AttendanceRate: 100}},
			{EmployeeID: "E002", Name: "Bob Müller", Department: "Engineering", PunctualityScore: 35, IssueCount: 4,
				Summary: attendance.AttendanceSummary{WorkingDays: 5, PresentDays: 3, AbsentDays: 2, LateDays: 2, AttendanceRate: 60}},
		},
		Issues: []attendance.EmployeeIssues{{
			EmployeeID: "E002", Name: "Bob Müller", Department: "Engineering",
			Issues: []attendance.Issue{
				{Day: 1, Type: attendance.IssueLateArrival, Severity: attendance.SeverityHigh, Message: "Arrived at 10:45 on day 1, 45 minutes late"},
				{Day: 2, Type: attendance.IssueLateArrival, Severity: attendance.SeverityMedium, Message: "Arrived at 10:30 on day 2, 30 minutes late"},
				{Day: 4, Type: attendance.IssueAbsent, Severity: attendance.SeverityHigh, Message: "Absent on day 4: no punches recorded"},
				{Day: 5, Type: attendance.IssueAbsent, Severity: attendance.SeverityHigh, Message: "Absent on day 5: no punches recorded"},
			},
			LateArrivalDetails: late,
			AbsenceDetails:     absence,
		}},
		LateArrivalSummary: attendance.LateArrivalSummary{TotalEmployees: 2, EmployeesAffected: 1, TotalLateDays: 2, TopOffenders: []attendance.LateArrivalRecord{late}},
		AbsenceSummary:     attendance.AbsenceSummary{TotalEmployees: 2, EmployeesAffected: 1, TotalAbsentDays: 2, TopAbsentees: []attendance.AbsenceRecord{absence}},
		PunctualitySummary: attendance.PunctualitySummary{
			TotalEmployees: 2,
			Ranking: []attendance.PunctualityRecord{
				{EmployeeID: "E001", EmployeeName: "Alice", PunctualityScore: 100, ConsistencyScore: 100, Rank: 1, Percentile: 50, Category: "Good"},
				{EmployeeID: "E002", EmployeeName: "Bob Müller", PunctualityScore: 35, ConsistencyScore: 20, Rank: 2, Percentile: 100, Category: "Needs Improvement"},
			},
		},
		SeverityBreakdown: attendance.SeverityBreakdown{High: 3, Medium: 1, Total: 4},
	}
}

func TestRenderPDF(t *testing.T) {
	content, err := RenderPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestRenderPDF_EmptySections(t *testing.T) {
	content, err := RenderPDF(attendance.Report{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestRenderPDF_ManyEmployeesSpansPages(t *testing.T) {
	report := sampleReport()
	for i := 0; i < 120; i++ {
		report.Employees = append(report.Employees, report.Employees[0])
	}

	content, err := RenderPDF(report)
	require.NoError(t, err)
	assert.Greater(t, bytes.Count(content, []byte("/Type /Page\n")), 1)
}

func TestRenderXLSX(t *testing.T) {
	content, err := RenderXLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{
		SheetRoster, SheetIssues, SheetLateArrivals, SheetAbsences, SheetHalfDays, SheetPunctuality,
	}, f.GetSheetList())

	roster, err := f.GetRows(SheetRoster)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, "Employee ID", roster[0][0])
	assert.Equal(t, "E002", roster[2][0])

	issues, err := f.GetRows(SheetIssues)
	require.NoError(t, err)
	assert.Len(t, issues, 5)

	absences, err := f.GetRows(SheetAbsences)
	require.NoError(t, err)
	require.Len(t, absences, 2)
	assert.Equal(t, "4-5", absences[1][6])

	halfDays, err := f.GetRows(SheetHalfDays)
	require.NoError(t, err)
	assert.Len(t, halfDays, 1, "header only")

	ranking, err := f.GetRows(SheetPunctuality)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "Needs Improvement", ranking[2][9])
}
