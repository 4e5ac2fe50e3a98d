package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

const (
	SheetRoster       = "Roster"
	SheetIssues       = "Issues"
	SheetLateArrivals = "Late Arrivals"
	SheetAbsences     = "Absences"
	SheetHalfDays     = "Half Days"
	SheetPunctuality  = "Punctuality"
)

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]interface{}
}

// RenderXLSX writes one sheet per report view. Every sheet has a styled header row
// and one row per record.
func RenderXLSX(report attendance.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []sheet{
		rosterSheet(report),
		issuesSheet(report),
		lateArrivalSheet(report),
		absenceSheet(report),
		halfDaySheet(report),
		punctualitySheet(report),
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to write sheet %q: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to generate XLSX: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	headers := make([]interface{}, len(s.headers))
	for i, h := range s.headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &headers); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return err
		}
	}
	return f.SetPanes(s.name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func rosterSheet(report attendance.Report) sheet {
	s := sheet{
		name: SheetRoster,
		headers: []string{"Employee ID", "Name", "Department", "Working Days", "Present", "Absent",
			"Late", "Full Days", "Half Days", "Total Hours", "Avg Hours", "Attendance %", "Punctuality", "Issues"},
		widths: []float64{14, 28, 20, 14, 10, 10, 10, 10, 10, 12, 12, 14, 12, 10},
	}
	for _, e := range report.Employees {
		s.rows = append(s.rows, []interface{}{
			e.EmployeeID, e.Name, e.Department,
			e.Summary.WorkingDays, e.Summary.PresentDays, e.Summary.AbsentDays,
			e.Summary.LateDays, e.Summary.FullDays, e.Summary.HalfDays,
			e.Summary.TotalWorkHours, e.Summary.AverageWorkHours, e.Summary.AttendanceRate,
			e.PunctualityScore, e.IssueCount,
		})
	}
	return s
}

func issuesSheet(report attendance.Report) sheet {
	s := sheet{
		name:    SheetIssues,
		headers: []string{"Employee ID", "Name", "Day", "Type", "Severity", "Message"},
		widths:  []float64{14, 28, 8, 20, 12, 60},
	}
	for _, e := range report.Issues {
		for _, issue := range e.Issues {
			s.rows = append(s.rows, []interface{}{
				e.EmployeeID, e.Name, issue.Day, string(issue.Type), string(issue.Severity), issue.Message,
			})
		}
	}
	return s
}

func lateArrivalSheet(report attendance.Report) sheet {
	s := sheet{
		name: SheetLateArrivals,
		headers: []string{"Employee ID", "Name", "Late Days", "Total Minutes", "Avg Minutes",
			"Max Minutes", "Longest Streak", "Late %", "Pattern", "Severity"},
		widths: []float64{14, 28, 10, 14, 12, 12, 14, 10, 14, 10},
	}
	for _, e := range report.Issues {
		r := e.LateArrivalDetails
		if r.TotalLateDays == 0 {
			continue
		}
		s.rows = append(s.rows, []interface{}{
			r.EmployeeID, r.EmployeeName, r.TotalLateDays, r.TotalLateMinutes, r.AverageLateMinutes,
			r.MaxLateMinutes, r.MaxConsecutiveLateDays, r.LateRate, string(r.Pattern), string(r.Severity),
		})
	}
	return s
}

func absenceSheet(report attendance.Report) sheet {
	s := sheet{
		name: SheetAbsences,
		headers: []string{"Employee ID", "Name", "Working Days", "Absent Days", "Absence %",
			"Longest Run", "Runs", "Pattern", "Severity"},
		widths: []float64{14, 28, 14, 12, 12, 12, 30, 14, 10},
	}
	for _, e := range report.Issues {
		r := e.AbsenceDetails
		if r.TotalAbsentDays == 0 {
			continue
		}
		runs := ""
		for i, run := range r.ConsecutiveAbsences {
			if i > 0 {
				runs += ", "
			}
			runs += fmt.Sprintf("%d-%d", run.StartDay, run.EndDay)
		}
		s.rows = append(s.rows, []interface{}{
			r.EmployeeID, r.EmployeeName, r.WorkingDays, r.TotalAbsentDays, r.AbsenceRate,
			r.MaxConsecutiveDays, runs, string(r.Pattern), string(r.Severity),
		})
	}
	return s
}

func halfDaySheet(report attendance.Report) sheet {
	s := sheet{
		name: SheetHalfDays,
		headers: []string{"Employee ID", "Name", "Present Days", "Half Days", "Shortfall Hours",
			"Avg Shortfall", "Half Day %", "Pattern", "Severity"},
		widths: []float64{14, 28, 12, 10, 14, 12, 12, 14, 10},
	}
	for _, e := range report.Issues {
		r := e.HalfDayDetails
		if r.TotalHalfDays == 0 {
			continue
		}
		s.rows = append(s.rows, []interface{}{
			r.EmployeeID, r.EmployeeName, r.PresentDays, r.TotalHalfDays, r.TotalShortfallHours,
			r.AverageShortfallHours, r.HalfDayRate, string(r.Pattern), string(r.Severity),
		})
	}
	return s
}

func punctualitySheet(report attendance.Report) sheet {
	s := sheet{
		name: SheetPunctuality,
		headers: []string{"Rank", "Employee ID", "Name", "Score", "Consistency", "On Time",
			"Late", "Absent", "Percentile", "Category"},
		widths: []float64{8, 14, 28, 10, 12, 10, 10, 10, 12, 20},
	}
	for _, r := range report.PunctualitySummary.Ranking {
		s.rows = append(s.rows, []interface{}{
			r.Rank, r.EmployeeID, r.EmployeeName, r.PunctualityScore, r.ConsistencyScore,
			r.OnTimeDays, r.LateDays, r.AbsentDays, r.Percentile, r.Category,
		})
	}
	return s
}
