package attendance

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

type HalfDayDetector struct {
	cfg attendance.Config
}

func NewHalfDayDetector(cfg attendance.Config) *HalfDayDetector {
	return &HalfDayDetector{cfg: cfg}
}

func (d *HalfDayDetector) Name() string { return "half_day" }

func (d *HalfDayDetector) Analyze(emp attendance.Employee, out *attendance.EmployeeAnalysis) {
	out.HalfDay = d.AnalyzeEmployee(emp)
}

// AnalyzeEmployee reports present days that fell short of their required hours.
// The rate is taken over present days only.
func (d *HalfDayDetector) AnalyzeEmployee(emp attendance.Employee) attendance.HalfDayRecord {
	rec := attendance.HalfDayRecord{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Occurrences:  []attendance.HalfDayOccurrence{},
	}

	var shortfall float64
	for _, day := range emp.Days {
		if day.Status != attendance.StatusPresent {
			continue
		}
		rec.PresentDays++
		if !day.IsHalfDay() {
			continue
		}

		short := utils.Round(day.ShortfallHours(), 2)
		shortfall += short
		rec.TotalHalfDays++
		rec.Occurrences = append(rec.Occurrences, attendance.HalfDayOccurrence{
			Day:            day.Day,
			FirstPunch:     day.FirstPunch,
			LastPunch:      day.LastPunch,
			WorkedHours:    day.WorkDurationHours,
			RequiredHours:  day.RequiredHours,
			ShortfallHours: short,
			TimingCategory: day.Timing(),
			Reason:         d.reason(short),
		})
	}

	rec.TotalShortfallHours = utils.Round(shortfall, 2)
	if rec.TotalHalfDays > 0 {
		rec.AverageShortfallHours = utils.Round(shortfall/float64(rec.TotalHalfDays), 2)
	}
	rec.HalfDayRate = utils.Percentage(rec.TotalHalfDays, rec.PresentDays, 2)
	rec.Pattern = halfDayPattern(rec, d.cfg.HalfDay)
	rec.Severity = halfDaySeverity(rec, d.cfg.HalfDay)
	return rec
}

func (d *HalfDayDetector) Summarize(analyses []attendance.EmployeeAnalysis, report *attendance.Report) {
	records := make([]attendance.HalfDayRecord, len(analyses))
	for i := range analyses {
		records[i] = analyses[i].HalfDay
	}
	report.HalfDaySummary = d.SummarizeRecords(records)
}

func (d *HalfDayDetector) SummarizeRecords(records []attendance.HalfDayRecord) attendance.HalfDaySummary {
	summary := attendance.HalfDaySummary{
		TotalEmployees: len(records),
		TopOffenders:   []attendance.HalfDayRecord{},
	}

	var shortfall float64
	patterns := make([]attendance.Pattern, 0, len(records))
	severities := make([]attendance.Severity, 0, len(records))
	affected := make([]attendance.HalfDayRecord, 0, len(records))
	for _, r := range records {
		summary.TotalHalfDays += r.TotalHalfDays
		shortfall += r.TotalShortfallHours
		patterns = append(patterns, r.Pattern)
		severities = append(severities, r.Severity)
		if r.TotalHalfDays > 0 {
			affected = append(affected, r)
		}
	}
	summary.EmployeesAffected = len(affected)
	summary.TotalShortfallHours = utils.Round(shortfall, 2)
	if summary.TotalHalfDays > 0 {
		summary.AverageShortfallHours = utils.Round(shortfall/float64(summary.TotalHalfDays), 2)
	}

	sort.SliceStable(affected, func(i, j int) bool {
		if affected[i].TotalHalfDays != affected[j].TotalHalfDays {
			return affected[i].TotalHalfDays > affected[j].TotalHalfDays
		}
		if affected[i].TotalShortfallHours != affected[j].TotalShortfallHours {
			return affected[i].TotalShortfallHours > affected[j].TotalShortfallHours
		}
		return affected[i].EmployeeID < affected[j].EmployeeID
	})
	summary.TopOffenders = limit(affected, d.cfg.TopN)
	summary.PatternDistribution = patternDistribution(patterns)
	summary.SeverityDistribution = severityDistribution(severities)
	return summary
}

func (d *HalfDayDetector) reason(shortfall float64) string {
	t := d.cfg.HalfDay
	label := "Minor Shortage"
	switch {
	case shortfall >= t.MajorShortageHours:
		label = "Major Shortage"
	case shortfall >= t.SignificantHours:
		label = "Significant Shortage"
	case shortfall >= t.ModerateHours:
		label = "Moderate Shortage"
	}
	return fmt.Sprintf("%s (%s short)", label, utils.FormatDuration(shortfall))
}

func halfDayPattern(r attendance.HalfDayRecord, t attendance.HalfDayThresholds) attendance.Pattern {
	switch {
	case r.TotalHalfDays == 0:
		return attendance.PatternNone
	case r.HalfDayRate >= t.ChronicRate:
		return attendance.PatternChronic
	case r.TotalHalfDays >= t.FrequentCount:
		return attendance.PatternFrequent
	case r.TotalHalfDays >= t.OccasionalCount:
		return attendance.PatternOccasional
	default:
		return attendance.PatternRare
	}
}

func halfDaySeverity(r attendance.HalfDayRecord, t attendance.HalfDayThresholds) attendance.Severity {
	switch {
	case r.HalfDayRate >= t.HighRate || r.TotalHalfDays >= t.HighCount:
		return attendance.SeverityHigh
	case r.HalfDayRate >= t.MediumRate || r.TotalHalfDays >= t.MediumCount:
		return attendance.SeverityMedium
	default:
		return attendance.SeverityLow
	}
}
