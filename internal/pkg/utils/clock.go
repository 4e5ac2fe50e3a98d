package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var ErrInvalidClock = errors.New("invalid clock value")

// ParseClockStrict parses a time of day into minutes since midnight.
// Accepted forms: "H:MM", "HH:MM", "HH:MM:SS" (seconds dropped) and "HHMM".
func ParseClockStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidClock
	}

	var hourPart, minutePart string
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		hourPart, minutePart = parts[0], parts[1]
		if len(parts) == 3 && !isDigits(parts[2], 2) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		if len(hourPart) < 1 || len(hourPart) > 2 || len(minutePart) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	} else {
		if len(s) != 4 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		hourPart, minutePart = s[:2], s[2:]
	}

	if !isDigits(hourPart, len(hourPart)) || !isDigits(minutePart, 2) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	hour, _ := strconv.Atoi(hourPart)
	minute, _ := strconv.Atoi(minutePart)
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	return hour*60 + minute, nil
}

// ParseClock is the tolerant variant of ParseClockStrict: unparseable input yields 0.
func ParseClock(s string) int {
	minutes, err := ParseClockStrict(s)
	if err != nil {
		return 0
	}
	return minutes
}

// IsValidClock reports whether s can be parsed as a time of day.
func IsValidClock(s string) bool {
	_, err := ParseClockStrict(s)
	return err == nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IsAfter reports whether t1 is strictly later than t2. Unparseable input yields false.
func IsAfter(t1, t2 string) bool {
	a, errA := ParseClockStrict(t1)
	b, errB := ParseClockStrict(t2)
	if errA != nil || errB != nil {
		return false
	}
	return a > b
}

// IsBefore reports whether t1 is strictly earlier than t2. Unparseable input yields false.
func IsBefore(t1, t2 string) bool {
	a, errA := ParseClockStrict(t1)
	b, errB := ParseClockStrict(t2)
	if errA != nil || errB != nil {
		return false
	}
	return a < b
}

// DurationHours returns the hours between first and last, wrapping past midnight
// for overnight shifts. Missing or unparseable input yields 0.
func DurationHours(first, last string) float64 {
	start, errStart := ParseClockStrict(first)
	end, errEnd := ParseClockStrict(last)
	if errStart != nil || errEnd != nil {
		return 0
	}
	return MinutesToHours(DurationMinutes(start, end))
}

// DurationMinutes is DurationHours for already parsed values.
func DurationMinutes(start, end int) int {
	diff := end - start
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff
}

// LateMinutes returns how many minutes actual is past expected, never negative.
func LateMinutes(actual, expected string) int {
	a, errA := ParseClockStrict(actual)
	e, errE := ParseClockStrict(expected)
	if errA != nil || errE != nil {
		return 0
	}
	return MinutesPast(a, e)
}

// MinutesPast is LateMinutes for already parsed values.
func MinutesPast(actual, expected int) int {
	if actual <= expected {
		return 0
	}
	return actual - expected
}

// MinutesToHours converts minutes to hours, rounded to 2 decimal places
func MinutesToHours(minutes int) float64 {
	return Round(float64(minutes)/60.0, 2)
}

// FormatDuration renders fractional hours as "8h 45m".
func FormatDuration(hours float64) string {
	if hours <= 0 {
		return "0h 0m"
	}
	total := int(math.Round(hours * 60))
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Percentage returns part/whole*100 rounded to places, or 0 when whole is 0.
func Percentage(part, whole, places int) float64 {
	if whole <= 0 {
		return 0
	}
	return Round(float64(part)/float64(whole)*100, places)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
