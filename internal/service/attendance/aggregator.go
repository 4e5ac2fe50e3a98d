package attendance

import (
	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

// Summarize folds an employee's classified days into day counts and rates.
func Summarize(emp attendance.Employee) attendance.AttendanceSummary {
	var s attendance.AttendanceSummary
	var totalMinutes float64

	for _, d := range emp.Days {
		switch d.Status {
		case attendance.StatusWeekendOff:
			s.WeekendDays++
		case attendance.StatusHoliday:
			s.HolidayDays++
		case attendance.StatusAbsent:
			s.WorkingDays++
			s.AbsentDays++
		case attendance.StatusPresent:
			s.WorkingDays++
			s.PresentDays++
			totalMinutes += d.WorkDurationHours * 60
			if d.IsFullDay {
				s.FullDays++
			} else {
				s.HalfDays++
			}
			if d.IsLate {
				s.LateDays++
			}
		}
	}

	s.TotalWorkHours = utils.Round(totalMinutes/60, 2)
	s.AttendanceRate = utils.Percentage(s.PresentDays, s.WorkingDays, 0)
	if s.PresentDays > 0 {
		s.AverageWorkHours = utils.Round(totalMinutes/60/float64(s.PresentDays), 2)
	}
	return s
}
