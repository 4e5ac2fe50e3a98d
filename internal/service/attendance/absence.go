package attendance

import (
	"sort"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

type AbsenceDetector struct {
	cfg attendance.Config
}

func NewAbsenceDetector(cfg attendance.Config) *AbsenceDetector {
	return &AbsenceDetector{cfg: cfg}
}

func (d *AbsenceDetector) Name() string { return "absence" }

func (d *AbsenceDetector) Analyze(emp attendance.Employee, out *attendance.EmployeeAnalysis) {
	out.Absence = d.AnalyzeEmployee(emp)
}

// AnalyzeEmployee walks the days in calendar order. Weekend and holiday days are
// skipped entirely, so an absence on Friday and Monday forms one run.
func (d *AbsenceDetector) AnalyzeEmployee(emp attendance.Employee) attendance.AbsenceRecord {
	rec := attendance.AbsenceRecord{
		EmployeeID:          emp.ID,
		EmployeeName:        emp.Name,
		ConsecutiveAbsences: []attendance.ConsecutiveAbsence{},
		Occurrences:         []attendance.AbsenceOccurrence{},
	}

	var run attendance.ConsecutiveAbsence
	flush := func() {
		if run.Days > rec.MaxConsecutiveDays {
			rec.MaxConsecutiveDays = run.Days
		}
		if run.Days >= d.cfg.Absence.MinConsecutiveRecord {
			rec.ConsecutiveAbsences = append(rec.ConsecutiveAbsences, run)
		}
		run = attendance.ConsecutiveAbsence{}
	}

	for _, day := range emp.Days {
		if !day.IsWorkingDay() {
			continue
		}
		rec.WorkingDays++

		if day.Status != attendance.StatusAbsent {
			flush()
			continue
		}

		rec.TotalAbsentDays++
		rec.Occurrences = append(rec.Occurrences, attendance.AbsenceOccurrence{
			Day:    day.Day,
			Reason: "No punches recorded",
		})
		if run.Days == 0 {
			run.StartDay = day.Day
		}
		run.EndDay = day.Day
		run.Days++
	}
	flush()

	rec.AbsenceRate = utils.Percentage(rec.TotalAbsentDays, rec.WorkingDays, 2)
	rec.Pattern = absencePattern(rec, d.cfg.Absence)
	rec.Severity = absenceSeverity(rec, d.cfg.Absence)
	return rec
}

func (d *AbsenceDetector) Summarize(analyses []attendance.EmployeeAnalysis, report *attendance.Report) {
	records := make([]attendance.AbsenceRecord, len(analyses))
	for i := range analyses {
		records[i] = analyses[i].Absence
	}
	report.AbsenceSummary = d.SummarizeRecords(records)
}

func (d *AbsenceDetector) SummarizeRecords(records []attendance.AbsenceRecord) attendance.AbsenceSummary {
	summary := attendance.AbsenceSummary{
		TotalEmployees: len(records),
		TopAbsentees:   []attendance.AbsenceRecord{},
	}

	var rateSum float64
	patterns := make([]attendance.Pattern, 0, len(records))
	severities := make([]attendance.Severity, 0, len(records))
	affected := make([]attendance.AbsenceRecord, 0, len(records))
	for _, r := range records {
		summary.TotalAbsentDays += r.TotalAbsentDays
		rateSum += r.AbsenceRate
		patterns = append(patterns, r.Pattern)
		severities = append(severities, r.Severity)
		if r.TotalAbsentDays > 0 {
			affected = append(affected, r)
		}
	}
	summary.EmployeesAffected = len(affected)
	if len(records) > 0 {
		summary.AverageAbsenceRate = utils.Round(rateSum/float64(len(records)), 2)
		summary.AverageAbsentDays = utils.Round(float64(summary.TotalAbsentDays)/float64(len(records)), 2)
	}

	sort.SliceStable(affected, func(i, j int) bool {
		if affected[i].TotalAbsentDays != affected[j].TotalAbsentDays {
			return affected[i].TotalAbsentDays > affected[j].TotalAbsentDays
		}
		if affected[i].MaxConsecutiveDays != affected[j].MaxConsecutiveDays {
			return affected[i].MaxConsecutiveDays > affected[j].MaxConsecutiveDays
		}
		return affected[i].EmployeeID < affected[j].EmployeeID
	})
	summary.TopAbsentees = limit(affected, d.cfg.TopN)
	summary.PatternDistribution = patternDistribution(patterns)
	summary.SeverityDistribution = severityDistribution(severities)
	return summary
}

func absencePattern(r attendance.AbsenceRecord, t attendance.AbsenceThresholds) attendance.Pattern {
	switch {
	case r.AbsenceRate >= t.ChronicRate:
		return attendance.PatternChronic
	case r.MaxConsecutiveDays >= t.ExtendedLeaveRun:
		return attendance.PatternExtendedLeave
	case r.AbsenceRate >= t.FrequentRate:
		return attendance.PatternFrequent
	case r.MaxConsecutiveDays >= t.ConsecutiveRun:
		return attendance.PatternConsecutive
	case r.TotalAbsentDays >= t.OccasionalDays:
		return attendance.PatternOccasional
	default:
		return attendance.PatternRare
	}
}

func absenceSeverity(r attendance.AbsenceRecord, t attendance.AbsenceThresholds) attendance.Severity {
	switch {
	case r.AbsenceRate >= t.HighRate || r.MaxConsecutiveDays >= t.HighRun:
		return attendance.SeverityHigh
	case r.AbsenceRate >= t.MediumRate || r.MaxConsecutiveDays >= t.MediumRun:
		return attendance.SeverityMedium
	default:
		return attendance.SeverityLow
	}
}
