package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

// IssueExtractor turns classified days into per-day issues and owns the severity
// breakdown of the report.
type IssueExtractor struct {
	cfg    attendance.Config
	cutoff int
}

func NewIssueExtractor(cfg attendance.Config) *IssueExtractor {
	return &IssueExtractor{
		cfg:    cfg,
		cutoff: utils.ParseClock(cfg.MissingPunchCutoff),
	}
}

func (x *IssueExtractor) Name() string { return "day_issues" }

func (x *IssueExtractor) Analyze(emp attendance.Employee, out *attendance.EmployeeAnalysis) {
	issues := []attendance.Issue{}
	for _, day := range emp.Days {
		issues = append(issues, x.DayIssues(day)...)
	}
	out.Issues = issues
}

// DayIssues lists the issues of one day. With a single punch only one side of the
// shift is known, so late arrival and early departure are reported only for the side
// the punch identifies.
func (x *IssueExtractor) DayIssues(day attendance.ClassifiedDay) []attendance.Issue {
	switch day.Status {
	case attendance.StatusAbsent:
		return []attendance.Issue{{
			Day:      day.Day,
			Type:     attendance.IssueAbsent,
			Message:  fmt.Sprintf("Absent on day %d: no punches recorded", day.Day),
			Severity: attendance.SeverityHigh,
		}}
	case attendance.StatusPresent:
	default:
		return nil
	}

	var issues []attendance.Issue
	hasArrival, hasDeparture := true, true

	if day.PunchCount == 1 {
		if utils.ParseClock(day.FirstPunch) < x.cutoff {
			hasDeparture = false
			issues = append(issues, attendance.Issue{
				Day:      day.Day,
				Type:     attendance.IssueMissingPunchOut,
				Message:  fmt.Sprintf("Single punch at %s on day %d: no punch-out recorded", day.FirstPunch, day.Day),
				Severity: attendance.SeverityMedium,
			})
		} else {
			hasArrival = false
			issues = append(issues, attendance.Issue{
				Day:      day.Day,
				Type:     attendance.IssueMissingPunchIn,
				Message:  fmt.Sprintf("Single punch at %s on day %d: no punch-in recorded", day.FirstPunch, day.Day),
				Severity: attendance.SeverityMedium,
			})
		}
	}

	if hasArrival && day.IsLate {
		severity := attendance.SeverityMedium
		if day.LateMinutes > x.cfg.SignificantLateMinutes {
			severity = attendance.SeverityHigh
		}
		issues = append(issues, attendance.Issue{
			Day:      day.Day,
			Type:     attendance.IssueLateArrival,
			Message:  fmt.Sprintf("Arrived at %s on day %d, %d minutes late", day.FirstPunch, day.Day, day.LateMinutes),
			Severity: severity,
		})
	}

	if hasDeparture && day.IsEarlyDeparture {
		severity := attendance.SeverityMedium
		if day.EarlyDepartureMinutes > x.cfg.SignificantEarlyMinutes {
			severity = attendance.SeverityHigh
		}
		issues = append(issues, attendance.Issue{
			Day:      day.Day,
			Type:     attendance.IssueEarlyDeparture,
			Message:  fmt.Sprintf("Left at %s on day %d, %d minutes early", day.LastPunch, day.Day, day.EarlyDepartureMinutes),
			Severity: severity,
		})
	}

	if day.PunchCount >= 2 && !day.IsFullDay {
		short := day.ShortfallHours()
		severity := attendance.SeverityMedium
		if short >= x.cfg.HalfDay.HighIssueShortfallHours {
			severity = attendance.SeverityHigh
		}
		issues = append(issues, attendance.Issue{
			Day:  day.Day,
			Type: attendance.IssueHalfDay,
			Message: fmt.Sprintf("Worked %s of required %s on day %d",
				utils.FormatDuration(day.WorkDurationHours), utils.FormatDuration(day.RequiredHours), day.Day),
			Severity: severity,
		})
	}

	if x.cfg.ExpectedPunches > 0 && day.PunchCount < x.cfg.ExpectedPunches {
		issues = append(issues, attendance.Issue{
			Day:      day.Day,
			Type:     attendance.IssueIncompleteShift,
			Message:  fmt.Sprintf("%d of %d expected punches on day %d", day.PunchCount, x.cfg.ExpectedPunches, day.Day),
			Severity: attendance.SeverityMedium,
		})
	}

	return issues
}

func (x *IssueExtractor) Summarize(analyses []attendance.EmployeeAnalysis, report *attendance.Report) {
	breakdown := attendance.SeverityBreakdown{ByType: make(map[attendance.IssueType]int)}
	for _, a := range analyses {
		for _, issue := range a.Issues {
			breakdown.Total++
			breakdown.ByType[issue.Type]++
			switch issue.Severity {
			case attendance.SeverityHigh:
				breakdown.High++
			case attendance.SeverityMedium:
				breakdown.Medium++
			}
		}
	}
	report.SeverityBreakdown = breakdown
}
