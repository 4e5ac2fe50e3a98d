package attendance

import (
	"runtime"
	"time"

	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/validator"
)

// Config carries every knob the analysis engine reads. It is passed explicitly to
// constructors; nothing in the engine reads global state.
type Config struct {
	CheckInTime             string
	CheckOutTime            string
	RegularStart            string
	RegularEnd              string
	RegularRequiredHours    float64
	UnusualRequiredHours    float64
	SignificantLateMinutes  int
	SignificantEarlyMinutes int
	MissingPunchCutoff      string
	ExpectedPunches         int
	TopN                    int
	Workers                 int
	Department              string
	WeekendDays             []time.Weekday

	Late        LateThresholds
	Absence     AbsenceThresholds
	HalfDay     HalfDayThresholds
	Punctuality PunctualityWeights
}

type LateThresholds struct {
	ChronicDays       int
	FrequentDays      int
	SevereAvgMinutes  float64
	OccasionalDays    int
	HighDays          int
	HighAvgMinutes    float64
	MediumDays        int
	MediumAvgMinutes  float64
	VeryLateMinutes   int
	SignificantlyLate int
	ModeratelyLate    int
}

type AbsenceThresholds struct {
	ChronicRate          float64
	ExtendedLeaveRun     int
	FrequentRate         float64
	ConsecutiveRun       int
	OccasionalDays       int
	HighRate             float64
	HighRun              int
	MediumRate           float64
	MediumRun            int
	MinConsecutiveRecord int
}

type HalfDayThresholds struct {
	ChronicRate             float64
	FrequentCount           int
	OccasionalCount         int
	HighRate                float64
	HighCount               int
	MediumRate              float64
	MediumCount             int
	MajorShortageHours      float64
	SignificantHours        float64
	ModerateHours           float64
	HighIssueShortfallHours float64
}

type PunctualityWeights struct {
	LatePenaltyPerMinute  float64
	AbsencePenaltyPerDay  float64
	AbsencePenaltyCap     float64
	ConsistencyMultiplier float64
}

// DefaultConfig returns the punch-based defaults used by the department export.
func DefaultConfig() Config {
	return Config{
		CheckInTime:             "10:00",
		CheckOutTime:            "18:30",
		RegularStart:            "09:30",
		RegularEnd:              "10:01",
		RegularRequiredHours:    8.75,
		UnusualRequiredHours:    9,
		SignificantLateMinutes:  30,
		SignificantEarlyMinutes: 60,
		MissingPunchCutoff:      "14:00",
		ExpectedPunches:         4,
		TopN:                    10,
		Workers:                 runtime.GOMAXPROCS(0),
		WeekendDays:             []time.Weekday{time.Saturday, time.Sunday},
		Late: LateThresholds{
			ChronicDays:       15,
			FrequentDays:      8,
			SevereAvgMinutes:  30,
			OccasionalDays:    3,
			HighDays:          10,
			HighAvgMinutes:    45,
			MediumDays:        5,
			MediumAvgMinutes:  20,
			VeryLateMinutes:   60,
			SignificantlyLate: 30,
			ModeratelyLate:    15,
		},
		Absence: AbsenceThresholds{
			ChronicRate:          30,
			ExtendedLeaveRun:     5,
			FrequentRate:         15,
			ConsecutiveRun:       3,
			OccasionalDays:       3,
			HighRate:             25,
			HighRun:              5,
			MediumRate:           10,
			MediumRun:            3,
			MinConsecutiveRecord: 2,
		},
		HalfDay: HalfDayThresholds{
			ChronicRate:             50,
			FrequentCount:           8,
			OccasionalCount:         3,
			HighRate:                40,
			HighCount:               8,
			MediumRate:              20,
			MediumCount:             4,
			MajorShortageHours:      4,
			SignificantHours:        2,
			ModerateHours:           1,
			HighIssueShortfallHours: 4,
		},
		Punctuality: PunctualityWeights{
			LatePenaltyPerMinute:  2,
			AbsencePenaltyPerDay:  5,
			AbsencePenaltyCap:     25,
			ConsistencyMultiplier: 2,
		},
	}
}

// IsWeekend reports whether wd is one of the configured weekend days.
func (c Config) IsWeekend(wd time.Weekday) bool {
	for _, d := range c.WeekendDays {
		if d == wd {
			return true
		}
	}
	return false
}

func (c Config) Validate() error {
	var errs validator.ValidationErrors

	clocks := []struct {
		field string
		value string
	}{
		{"check_in_time", c.CheckInTime},
		{"check_out_time", c.CheckOutTime},
		{"regular_start", c.RegularStart},
		{"regular_end", c.RegularEnd},
		{"missing_punch_cutoff", c.MissingPunchCutoff},
	}
	for _, clock := range clocks {
		if !validator.IsValidClock(clock.value) {
			errs = append(errs, validator.ValidationError{
				Field:   clock.field,
				Message: clock.field + " must be a time of day in HH:MM format",
			})
		}
	}

	if validator.IsValidClock(c.RegularStart) && validator.IsValidClock(c.RegularEnd) &&
		utils.ParseClock(c.RegularStart) > utils.ParseClock(c.RegularEnd) {
		errs = append(errs, validator.ValidationError{
			Field:   "regular_end",
			Message: "regular_end must not be before regular_start",
		})
	}

	if c.RegularRequiredHours <= 0 || c.RegularRequiredHours > 24 {
		errs = append(errs, validator.ValidationError{
			Field:   "regular_required_hours",
			Message: "regular_required_hours must be between 0 and 24",
		})
	}
	if c.UnusualRequiredHours <= 0 || c.UnusualRequiredHours > 24 {
		errs = append(errs, validator.ValidationError{
			Field:   "unusual_required_hours",
			Message: "unusual_required_hours must be between 0 and 24",
		})
	}
	if c.SignificantLateMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "significant_late_minutes",
			Message: "significant_late_minutes must not be negative",
		})
	}
	if c.SignificantEarlyMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "significant_early_minutes",
			Message: "significant_early_minutes must not be negative",
		})
	}
	if c.ExpectedPunches < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "expected_punches",
			Message: "expected_punches must not be negative",
		})
	}
	if c.TopN <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "top_n",
			Message: "top_n must be a positive number",
		})
	}
	if c.Workers <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "workers",
			Message: "workers must be a positive number",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
