// Package spreadsheet reads monthly punch-clock exports into analysis input.
//
// The expected layout is fixed: a header row whose first cell is "Employee ID",
// followed by Name, Department and one column per day of the month. An optional
// weekday row (empty first cell, "Mon".."Sun" labels) may sit directly under the
// header. Rows with an empty ID continue the previous employee.
package spreadsheet

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

const (
	colID         = 0
	colName       = 1
	colDepartment = 2
	firstDayCol   = 3
)

type Options struct {
	// Period, when set, drops day columns past the end of the month and supplies
	// calendar weekends if the sheet has no weekday row.
	Period *attendance.Period

	// WeekendDays defaults to Saturday and Sunday.
	WeekendDays []time.Weekday
}

func (o Options) isWeekend(wd time.Weekday) bool {
	days := o.WeekendDays
	if len(days) == 0 {
		days = []time.Weekday{time.Saturday, time.Sunday}
	}
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

type dayColumn struct {
	col int
	day int
}

type cellMarks struct {
	weekend bool
	holiday bool
	punches []string
}

// Extract reads the workbook and parses its first worksheet.
func Extract(filename string, r io.Reader, opts Options) ([]attendance.EmployeeInput, error) {
	rows, err := ReadRows(filename, r)
	if err != nil {
		return nil, err
	}
	return Parse(rows, opts)
}

// Parse turns worksheet rows into employees, one DayRecord per day column.
func Parse(rows [][]string, opts Options) ([]attendance.EmployeeInput, error) {
	headerIdx := -1
	for i, row := range rows {
		if strings.EqualFold(cell(row, colID), "Employee ID") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound
	}

	header := rows[headerIdx]
	maxDay := 31
	if opts.Period != nil {
		maxDay = opts.Period.DaysInMonth()
	}

	var columns []dayColumn
	for c := firstDayCol; c < len(header); c++ {
		day, ok := leadingDay(header[c])
		if !ok || day > maxDay {
			continue
		}
		columns = append(columns, dayColumn{col: c, day: day})
	}
	if len(columns) == 0 {
		return nil, ErrHeaderNotFound
	}

	start := headerIdx + 1
	weekendByDay := make(map[int]bool, len(columns))
	if start < len(rows) && isWeekdayRow(rows[start], columns) {
		for _, dc := range columns {
			if wd, ok := parseWeekday(cell(rows[start], dc.col)); ok && opts.isWeekend(wd) {
				weekendByDay[dc.day] = true
			}
		}
		start++
	} else if opts.Period != nil {
		for _, dc := range columns {
			if opts.isWeekend(opts.Period.Weekday(dc.day)) {
				weekendByDay[dc.day] = true
			}
		}
	}

	type pending struct {
		input attendance.EmployeeInput
		marks map[int]*cellMarks
	}
	var employees []*pending
	var current *pending

	for _, row := range rows[start:] {
		id := cell(row, colID)
		if id == "" {
			if current == nil || isBlank(row) {
				continue
			}
		} else {
			current = &pending{
				input: attendance.EmployeeInput{
					ID:         id,
					Name:       cell(row, colName),
					Department: cell(row, colDepartment),
				},
				marks: make(map[int]*cellMarks, len(columns)),
			}
			employees = append(employees, current)
		}

		for _, dc := range columns {
			m, ok := current.marks[dc.day]
			if !ok {
				m = &cellMarks{}
				current.marks[dc.day] = m
			}
			readCell(cell(row, dc.col), m)
		}
	}

	if len(employees) == 0 {
		return nil, ErrNoEmployees
	}

	out := make([]attendance.EmployeeInput, 0, len(employees))
	for _, p := range employees {
		days := make([]attendance.DayRecord, 0, len(columns))
		seen := make(map[int]bool, len(columns))
		for _, dc := range columns {
			if seen[dc.day] {
				continue
			}
			seen[dc.day] = true
			m := p.marks[dc.day]
			punches := m.punches
			if punches == nil {
				punches = []string{}
			}
			days = append(days, attendance.DayRecord{
				Day:        dc.day,
				IsWeekend:  weekendByDay[dc.day] || m.weekend,
				IsHoliday:  m.holiday,
				PunchTimes: punches,
			})
		}
		p.input.Days = days
		out = append(out, p.input)
	}
	return out, nil
}

func readCell(value string, m *cellMarks) {
	switch strings.ToUpper(value) {
	case "":
		return
	case "WO", "W", "OFF":
		m.weekend = true
		return
	case "H", "HOL", "HOLIDAY":
		m.holiday = true
		return
	}
	m.punches = append(m.punches, SplitPunches(value)...)
}

// SplitPunches splits a day cell into punch strings. "9:45 AM" style values are
// converted to 24-hour clocks and Excel day fractions ("0.40625") to HH:MM. Anything
// else is passed through untouched for the classifier to judge.
func SplitPunches(value string) []string {
	tokens := strings.FieldsFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		upper := strings.ToUpper(t)
		if (upper == "AM" || upper == "PM") && len(out) > 0 {
			out[len(out)-1] = to24Hour(out[len(out)-1], upper)
			continue
		}
		if strings.HasSuffix(upper, "AM") || strings.HasSuffix(upper, "PM") {
			out = append(out, to24Hour(t[:len(t)-2], upper[len(upper)-2:]))
			continue
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil && strings.Contains(t, ".") && f >= 0 && f < 1 {
			out = append(out, utils.FormatClock(int(math.Round(f*24*60))))
			continue
		}
		out = append(out, t)
	}
	return out
}

func to24Hour(clock, suffix string) string {
	minutes, err := utils.ParseClockStrict(clock)
	if err != nil || minutes >= 13*60 {
		return clock + suffix
	}
	hour := minutes / 60
	switch {
	case suffix == "PM" && hour < 12:
		minutes += 12 * 60
	case suffix == "AM" && hour == 12:
		minutes -= 12 * 60
	}
	return utils.FormatClock(minutes)
}

func isWeekdayRow(row []string, columns []dayColumn) bool {
	if cell(row, colID) != "" {
		return false
	}
	for _, dc := range columns {
		if _, ok := parseWeekday(cell(row, dc.col)); ok {
			return true
		}
	}
	return false
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// leadingDay reads the day number a header starts with: "1", "01", "01 Mon".
func leadingDay(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || end > 2 {
		return 0, false
	}
	day, _ := strconv.Atoi(s[:end])
	if day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
