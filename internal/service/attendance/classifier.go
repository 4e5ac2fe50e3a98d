package attendance

import (
	"sort"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

// Classifier turns a PunchSet into a ClassifiedDay. Config clocks are parsed once.
type Classifier struct {
	cfg          attendance.Config
	checkIn      int
	checkOut     int
	regularStart int
	regularEnd   int
}

func NewClassifier(cfg attendance.Config) *Classifier {
	return &Classifier{
		cfg:          cfg,
		checkIn:      utils.ParseClock(cfg.CheckInTime),
		checkOut:     utils.ParseClock(cfg.CheckOutTime),
		regularStart: utils.ParseClock(cfg.RegularStart),
		regularEnd:   utils.ParseClock(cfg.RegularEnd),
	}
}

// Classify never fails. Unparseable punches are dropped, so a day whose cells are all
// garbage comes out absent.
func (c *Classifier) Classify(ps attendance.PunchSet) attendance.ClassifiedDay {
	day := attendance.ClassifiedDay{Day: ps.Day}

	if ps.IsWeekend {
		day.Status = attendance.StatusWeekendOff
		return day
	}
	if ps.IsHoliday {
		day.Status = attendance.StatusHoliday
		return day
	}

	punches := normalizePunches(ps.Punches)
	if len(punches) == 0 {
		day.Status = attendance.StatusAbsent
		return day
	}

	first, last := punches[0], punches[len(punches)-1]

	timing := attendance.TimingUnusual
	if first >= c.regularStart && first <= c.regularEnd {
		timing = attendance.TimingRegular
	}
	required := c.cfg.UnusualRequiredHours
	if timing == attendance.TimingRegular {
		required = c.cfg.RegularRequiredHours
	}

	worked := utils.MinutesToHours(utils.DurationMinutes(first, last))

	day.Status = attendance.StatusPresent
	day.TimingCategory = &timing
	day.FirstPunch = utils.FormatClock(first)
	day.LastPunch = utils.FormatClock(last)
	day.Punches = make([]string, len(punches))
	for i, p := range punches {
		day.Punches[i] = utils.FormatClock(p)
	}
	day.PunchCount = len(punches)
	day.WorkDurationHours = worked
	day.RequiredHours = required
	day.IsFullDay = worked >= required

	day.LateMinutes = utils.MinutesPast(first, c.checkIn)
	day.IsLate = day.LateMinutes > 0
	day.EarlyDepartureMinutes = utils.MinutesPast(c.checkOut, last)
	day.IsEarlyDeparture = day.EarlyDepartureMinutes > 0

	return day
}

// ClassifyEmployee classifies every input day and orders the result by day number.
func (c *Classifier) ClassifyEmployee(in attendance.EmployeeInput, defaultDepartment string) attendance.Employee {
	days := make([]attendance.ClassifiedDay, 0, len(in.Days))
	for _, d := range in.Days {
		days = append(days, c.Classify(d.PunchSet()))
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	department := in.Department
	if department == "" {
		department = defaultDepartment
	}

	return attendance.Employee{
		ID:         in.ID,
		Name:       in.Name,
		Department: department,
		Days:       days,
	}
}

// normalizePunches parses, deduplicates and sorts punch strings as minutes.
func normalizePunches(raw []string) []int {
	seen := make(map[int]struct{}, len(raw))
	out := make([]int, 0, len(raw))
	for _, r := range raw {
		m, err := utils.ParseClockStrict(r)
		if err != nil {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}
