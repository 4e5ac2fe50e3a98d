package attendance

import (
	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

// Detector is implemented by every per-employee analyzer. Analyze fills the detector's
// slot of one EmployeeAnalysis and must not touch anything else, so the engine can run
// it for many employees concurrently. Summarize runs once over all employees.
type Detector interface {
	Name() string
	Analyze(emp attendance.Employee, out *attendance.EmployeeAnalysis)
	Summarize(analyses []attendance.EmployeeAnalysis, report *attendance.Report)
}

// DefaultDetectors returns the full detector set in report order.
func DefaultDetectors(cfg attendance.Config) []Detector {
	return []Detector{
		NewIssueExtractor(cfg),
		NewLateArrivalDetector(cfg),
		NewAbsenceDetector(cfg),
		NewHalfDayDetector(cfg),
		NewPunctualityDetector(cfg),
	}
}

func limit[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

func patternDistribution(patterns []attendance.Pattern) map[attendance.Pattern]int {
	dist := make(map[attendance.Pattern]int)
	for _, p := range patterns {
		dist[p]++
	}
	return dist
}

func severityDistribution(severities []attendance.Severity) map[attendance.Severity]int {
	dist := map[attendance.Severity]int{
		attendance.SeverityHigh:   0,
		attendance.SeverityMedium: 0,
		attendance.SeverityLow:    0,
	}
	for _, s := range severities {
		dist[s]++
	}
	return dist
}
