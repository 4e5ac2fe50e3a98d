package attendance

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

type LateArrivalDetector struct {
	cfg attendance.Config
}

func NewLateArrivalDetector(cfg attendance.Config) *LateArrivalDetector {
	return &LateArrivalDetector{cfg: cfg}
}

func (d *LateArrivalDetector) Name() string { return "late_arrival" }

func (d *LateArrivalDetector) Analyze(emp attendance.Employee, out *attendance.EmployeeAnalysis) {
	out.LateArrival = d.AnalyzeEmployee(emp)
}

// AnalyzeEmployee counts present days with a late first punch. Days must be in
// calendar order for the streak to be meaningful.
func (d *LateArrivalDetector) AnalyzeEmployee(emp attendance.Employee) attendance.LateArrivalRecord {
	rec := attendance.LateArrivalRecord{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Occurrences:  []attendance.LateOccurrence{},
	}

	workingDays, streak := 0, 0
	for _, day := range emp.Days {
		if !day.IsWorkingDay() {
			continue
		}
		workingDays++

		if day.Status != attendance.StatusPresent || !day.IsLate {
			streak = 0
			continue
		}

		streak++
		if streak > rec.MaxConsecutiveLateDays {
			rec.MaxConsecutiveLateDays = streak
		}
		rec.TotalLateDays++
		rec.TotalLateMinutes += day.LateMinutes
		if day.LateMinutes > rec.MaxLateMinutes {
			rec.MaxLateMinutes = day.LateMinutes
		}
		rec.Occurrences = append(rec.Occurrences, attendance.LateOccurrence{
			Day:         day.Day,
			FirstPunch:  day.FirstPunch,
			LateMinutes: day.LateMinutes,
			Reason:      d.reason(day.LateMinutes),
		})
	}

	if rec.TotalLateDays > 0 {
		rec.AverageLateMinutes = utils.Round(float64(rec.TotalLateMinutes)/float64(rec.TotalLateDays), 1)
	}
	rec.LateRate = utils.Percentage(rec.TotalLateDays, workingDays, 2)
	rec.Pattern = latePattern(rec.TotalLateDays, rec.AverageLateMinutes, d.cfg.Late)
	rec.Severity = lateSeverity(rec.TotalLateDays, rec.AverageLateMinutes, d.cfg.Late)
	return rec
}

func (d *LateArrivalDetector) Summarize(analyses []attendance.EmployeeAnalysis, report *attendance.Report) {
	records := make([]attendance.LateArrivalRecord, len(analyses))
	for i := range analyses {
		records[i] = analyses[i].LateArrival
	}
	report.LateArrivalSummary = d.SummarizeRecords(records)
}

func (d *LateArrivalDetector) SummarizeRecords(records []attendance.LateArrivalRecord) attendance.LateArrivalSummary {
	summary := attendance.LateArrivalSummary{
		TotalEmployees: len(records),
		TopOffenders:   []attendance.LateArrivalRecord{},
	}

	patterns := make([]attendance.Pattern, 0, len(records))
	severities := make([]attendance.Severity, 0, len(records))
	affected := make([]attendance.LateArrivalRecord, 0, len(records))
	for _, r := range records {
		summary.TotalLateDays += r.TotalLateDays
		summary.TotalLateMinutes += r.TotalLateMinutes
		patterns = append(patterns, r.Pattern)
		severities = append(severities, r.Severity)
		if r.TotalLateDays > 0 {
			affected = append(affected, r)
		}
	}
	summary.EmployeesAffected = len(affected)
	if summary.TotalLateDays > 0 {
		summary.AverageLateMinutes = utils.Round(float64(summary.TotalLateMinutes)/float64(summary.TotalLateDays), 1)
	}

	sort.SliceStable(affected, func(i, j int) bool {
		if affected[i].TotalLateDays != affected[j].TotalLateDays {
			return affected[i].TotalLateDays > affected[j].TotalLateDays
		}
		if affected[i].TotalLateMinutes != affected[j].TotalLateMinutes {
			return affected[i].TotalLateMinutes > affected[j].TotalLateMinutes
		}
		return affected[i].EmployeeID < affected[j].EmployeeID
	})
	summary.TopOffenders = limit(affected, d.cfg.TopN)
	summary.PatternDistribution = patternDistribution(patterns)
	summary.SeverityDistribution = severityDistribution(severities)
	return summary
}

func (d *LateArrivalDetector) reason(lateMinutes int) string {
	t := d.cfg.Late
	switch {
	case lateMinutes >= t.VeryLateMinutes:
		return fmt.Sprintf("Very Late (%d min)", lateMinutes)
	case lateMinutes >= t.SignificantlyLate:
		return fmt.Sprintf("Significantly Late (%d min)", lateMinutes)
	case lateMinutes >= t.ModeratelyLate:
		return fmt.Sprintf("Moderately Late (%d min)", lateMinutes)
	default:
		return fmt.Sprintf("Slightly Late (%d min)", lateMinutes)
	}
}

func latePattern(days int, avgMinutes float64, t attendance.LateThresholds) attendance.Pattern {
	switch {
	case days >= t.ChronicDays:
		return attendance.PatternChronic
	case days >= t.FrequentDays:
		return attendance.PatternFrequent
	case days > 0 && avgMinutes >= t.SevereAvgMinutes:
		return attendance.PatternSevere
	case days >= t.OccasionalDays:
		return attendance.PatternOccasional
	default:
		return attendance.PatternNone
	}
}

func lateSeverity(days int, avgMinutes float64, t attendance.LateThresholds) attendance.Severity {
	switch {
	case days >= t.HighDays || avgMinutes >= t.HighAvgMinutes:
		return attendance.SeverityHigh
	case days >= t.MediumDays || avgMinutes >= t.MediumAvgMinutes:
		return attendance.SeverityMedium
	default:
		return attendance.SeverityLow
	}
}
