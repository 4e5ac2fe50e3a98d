// Package export renders stored attendance reports as downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

const (
	pageMarginLeft  = 15.0
	pageMarginRight = 15.0
	pageMarginBot   = 20.0
	pageWidth       = 210.0
	contentWidth    = pageWidth - pageMarginLeft - pageMarginRight
	rowHeight       = 6.0
)

type pdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// RenderPDF renders an A4 portrait summary of the report.
func RenderPDF(report attendance.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginLeft, 20, pageMarginRight)
	pdf.SetAutoPageBreak(true, pageMarginBot)
	pdf.AliasNbPages("{nb}")

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	w.title(report)
	w.overview(report)

	rosterRows := make([][]string, 0, len(report.Employees))
	for _, e := range report.Employees {
		rosterRows = append(rosterRows, []string{
			e.EmployeeID,
			e.Name,
			fmt.Sprintf("%d/%d", e.Summary.PresentDays, e.Summary.WorkingDays),
			fmt.Sprint(e.Summary.AbsentDays),
			fmt.Sprint(e.Summary.LateDays),
			fmt.Sprint(e.Summary.HalfDays),
			fmt.Sprintf("%.0f%%", e.Summary.AttendanceRate),
			fmt.Sprintf("%.1f", e.PunctualityScore),
			fmt.Sprint(e.IssueCount),
		})
	}
	w.table("Employee Roster",
		[]string{"ID", "Name", "Present", "Absent", "Late", "Half", "Rate", "Score", "Issues"},
		[]float64{20, 50, 18, 16, 14, 14, 16, 16, 16},
		rosterRows,
	)

	lateRows := make([][]string, 0, len(report.LateArrivalSummary.TopOffenders))
	for _, r := range report.LateArrivalSummary.TopOffenders {
		lateRows = append(lateRows, []string{
			r.EmployeeID, r.EmployeeName,
			fmt.Sprint(r.TotalLateDays),
			fmt.Sprintf("%.1f", r.AverageLateMinutes),
			string(r.Pattern), string(r.Severity),
		})
	}
	w.table("Top Late Arrivals",
		[]string{"ID", "Name", "Days", "Avg Min", "Pattern", "Severity"},
		[]float64{20, 60, 20, 20, 30, 30},
		lateRows,
	)

	absenceRows := make([][]string, 0, len(report.AbsenceSummary.TopAbsentees))
	for _, r := range report.AbsenceSummary.TopAbsentees {
		absenceRows = append(absenceRows, []string{
			r.EmployeeID, r.EmployeeName,
			fmt.Sprint(r.TotalAbsentDays),
			fmt.Sprint(r.MaxConsecutiveDays),
			fmt.Sprintf("%.1f%%", r.AbsenceRate),
			string(r.Pattern), string(r.Severity),
		})
	}
	w.table("Top Absentees",
		[]string{"ID", "Name", "Days", "Max Run", "Rate", "Pattern", "Severity"},
		[]float64{20, 50, 16, 18, 20, 30, 26},
		absenceRows,
	)

	halfDayRows := make([][]string, 0, len(report.HalfDaySummary.TopOffenders))
	for _, r := range report.HalfDaySummary.TopOffenders {
		halfDayRows = append(halfDayRows, []string{
			r.EmployeeID, r.EmployeeName,
			fmt.Sprint(r.TotalHalfDays),
			fmt.Sprintf("%.2f", r.TotalShortfallHours),
			fmt.Sprintf("%.1f%%", r.HalfDayRate),
			string(r.Pattern), string(r.Severity),
		})
	}
	w.table("Top Half Days",
		[]string{"ID", "Name", "Days", "Short (h)", "Rate", "Pattern", "Severity"},
		[]float64{20, 50, 16, 18, 20, 30, 26},
		halfDayRows,
	)

	rankingRows := make([][]string, 0, len(report.PunctualitySummary.Ranking))
	for _, r := range report.PunctualitySummary.Ranking {
		rankingRows = append(rankingRows, []string{
			fmt.Sprint(r.Rank), r.EmployeeID, r.EmployeeName,
			fmt.Sprintf("%.1f", r.PunctualityScore),
			fmt.Sprintf("%.1f", r.ConsistencyScore),
			r.Category,
		})
	}
	w.table("Punctuality Ranking",
		[]string{"Rank", "ID", "Name", "Score", "Consistency", "Category"},
		[]float64{14, 20, 56, 20, 24, 46},
		rankingRows,
	)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) title(report attendance.Report) {
	pdf := w.pdf
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 10, "Attendance Analysis Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(108, 117, 125)
	subtitle := "All days"
	if report.Period != nil {
		subtitle = time.Date(report.Period.Year, time.Month(report.Period.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	}
	if report.Department != "" {
		subtitle += " - " + report.Department
	}
	pdf.CellFormat(0, 6, w.tr(subtitle), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated "+report.GeneratedAt.UTC().Format("02 Jan 2006 15:04 UTC"), "", 1, "L", false, 0, "")

	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(0, 102, 204)
	pdf.Line(pageMarginLeft, pdf.GetY()+2, pageMarginLeft+contentWidth, pdf.GetY()+2)
	pdf.Ln(6)
}

func (w *pdfWriter) overview(report attendance.Report) {
	pdf := w.pdf
	items := []struct {
		label string
		value string
	}{
		{"Employees", fmt.Sprint(len(report.Employees))},
		{"Employees with issues", fmt.Sprint(len(report.Issues))},
		{"Total issues", fmt.Sprint(report.SeverityBreakdown.Total)},
		{"High severity", fmt.Sprint(report.SeverityBreakdown.High)},
		{"Medium severity", fmt.Sprint(report.SeverityBreakdown.Medium)},
		{"Late days", fmt.Sprint(report.LateArrivalSummary.TotalLateDays)},
		{"Absent days", fmt.Sprint(report.AbsenceSummary.TotalAbsentDays)},
		{"Half days", fmt.Sprint(report.HalfDaySummary.TotalHalfDays)},
		{"Average punctuality", fmt.Sprintf("%.1f", report.PunctualitySummary.AverageScore)},
	}

	w.sectionTitle("Overview")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(33, 37, 41)
	for _, item := range items {
		pdf.CellFormat(60, rowHeight, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, rowHeight, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (w *pdfWriter) sectionTitle(title string) {
	pdf := w.pdf
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

// table draws a header row and body rows, repeating the header after page breaks.
func (w *pdfWriter) table(title string, headers []string, widths []float64, rows [][]string) {
	pdf := w.pdf
	_, pageHeight := pdf.GetPageSize()

	w.sectionTitle(title)
	if len(rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(0, rowHeight, "No entries", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	header := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(0, 102, 204)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(222, 226, 230)
		for i, h := range headers {
			pdf.CellFormat(widths[i], rowHeight+1, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(33, 37, 41)
	}
	header()

	for n, row := range rows {
		if pdf.GetY()+rowHeight > pageHeight-pageMarginBot {
			pdf.AddPage()
			header()
		}
		fill := n%2 == 1
		pdf.SetFillColor(248, 249, 250)
		for i, value := range row {
			align := "C"
			if i > 0 && widths[i] >= 40 {
				align = "L"
			}
			pdf.CellFormat(widths[i], rowHeight, w.fit(w.tr(value), widths[i]-2), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

// fit truncates s so it fits in width millimetres at the current font.
func (w *pdfWriter) fit(s string, width float64) string {
	if w.pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && w.pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
