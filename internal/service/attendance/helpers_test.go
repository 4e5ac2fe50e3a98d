package attendance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

func testConfig() attendance.Config {
	cfg := attendance.DefaultConfig()
	cfg.Workers = 4
	return cfg
}

func newEngine(t *testing.T, cfg attendance.Config, detectors ...Detector) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, detectors...)
	require.NoError(t, err)
	return e
}

func workDay(day int, punches ...string) attendance.DayRecord {
	if punches == nil {
		punches = []string{}
	}
	return attendance.DayRecord{Day: day, PunchTimes: punches}
}

func weekendDay(day int, punches ...string) attendance.DayRecord {
	d := workDay(day, punches...)
	d.IsWeekend = true
	return d
}

func holiday(day int) attendance.DayRecord {
	return attendance.DayRecord{Day: day, IsHoliday: true, PunchTimes: []string{}}
}

func employeeInput(id string, days ...attendance.DayRecord) attendance.EmployeeInput {
	return attendance.EmployeeInput{ID: id, Name: "Employee " + id, Department: "Engineering", Days: days}
}

// classify runs the classifier over days with the default test config.
func classify(id string, days ...attendance.DayRecord) attendance.Employee {
	return NewClassifier(testConfig()).ClassifyEmployee(employeeInput(id, days...), "")
}

// lateDays returns n consecutive working days arriving lateMinutes after 10:00 and
// leaving at 19:30.
func lateDays(n, lateMinutes int) []attendance.DayRecord {
	clock := utils.FormatClock(10*60 + lateMinutes)
	days := make([]attendance.DayRecord, n)
	for i := range days {
		days[i] = workDay(i+1, clock, "19:30")
	}
	return days
}
