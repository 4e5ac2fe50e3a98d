package attendance

import (
	"time"
)

type DayStatus string

const (
	StatusPresent    DayStatus = "present"
	StatusAbsent     DayStatus = "absent"
	StatusWeekendOff DayStatus = "weekend_off"
	StatusHoliday    DayStatus = "holiday"
)

type TimingCategory string

const (
	TimingRegular TimingCategory = "regular"
	TimingUnusual TimingCategory = "unusual"
)

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

type Pattern string

const (
	PatternNone          Pattern = "None"
	PatternRare          Pattern = "Rare"
	PatternOccasional    Pattern = "Occasional"
	PatternFrequent      Pattern = "Frequent"
	PatternChronic       Pattern = "Chronic"
	PatternSevere        Pattern = "Severe"
	PatternConsecutive   Pattern = "Consecutive"
	PatternExtendedLeave Pattern = "ExtendedLeave"
)

type IssueType string

const (
	IssueAbsent          IssueType = "absent"
	IssueLateArrival     IssueType = "late_arrival"
	IssueEarlyDeparture  IssueType = "early_departure"
	IssueHalfDay         IssueType = "half_day"
	IssueMissingPunchIn  IssueType = "missing_punch_in"
	IssueMissingPunchOut IssueType = "missing_punch_out"
	IssueIncompleteShift IssueType = "incomplete_shift"
)

// PunchSet is the raw input for one employee on one calendar day.
type PunchSet struct {
	Day       int
	IsWeekend bool
	IsHoliday bool
	Punches   []string
}

// ClassifiedDay is the outcome of classifying a PunchSet. It is never mutated.
type ClassifiedDay struct {
	Day                   int             `json:"day"`
	Status                DayStatus       `json:"status"`
	TimingCategory        *TimingCategory `json:"timing_category,omitempty"`
	FirstPunch            string          `json:"first_punch,omitempty"`
	LastPunch             string          `json:"last_punch,omitempty"`
	Punches               []string        `json:"punches,omitempty"`
	PunchCount            int             `json:"punch_count"`
	WorkDurationHours     float64         `json:"work_duration_hours"`
	RequiredHours         float64         `json:"required_hours"`
	IsFullDay             bool            `json:"is_full_day"`
	LateMinutes           int             `json:"late_minutes"`
	IsLate                bool            `json:"is_late"`
	EarlyDepartureMinutes int             `json:"early_departure_minutes"`
	IsEarlyDeparture      bool            `json:"is_early_departure"`
}

// IsWorkingDay reports whether the day counts towards attendance (not weekend, not holiday).
func (d ClassifiedDay) IsWorkingDay() bool {
	return d.Status == StatusPresent || d.Status == StatusAbsent
}

// IsHalfDay reports a present day whose worked duration misses the requirement.
func (d ClassifiedDay) IsHalfDay() bool {
	return d.Status == StatusPresent && !d.IsFullDay
}

// ShortfallHours is how far the worked duration falls short of the requirement.
func (d ClassifiedDay) ShortfallHours() float64 {
	if d.Status != StatusPresent || d.WorkDurationHours >= d.RequiredHours {
		return 0
	}
	return d.RequiredHours - d.WorkDurationHours
}

// Timing returns the timing category, defaulting to unusual.
func (d ClassifiedDay) Timing() TimingCategory {
	if d.TimingCategory == nil {
		return TimingUnusual
	}
	return *d.TimingCategory
}

type Employee struct {
	ID         string
	Name       string
	Department string
	Days       []ClassifiedDay
}

// AttendanceSummary holds the per-employee day counts and rates.
type AttendanceSummary struct {
	WorkingDays      int     `json:"working_days"`
	PresentDays      int     `json:"present_days"`
	AbsentDays       int     `json:"absent_days"`
	WeekendDays      int     `json:"weekend_days"`
	HolidayDays      int     `json:"holiday_days"`
	FullDays         int     `json:"full_days"`
	HalfDays         int     `json:"half_days"`
	LateDays         int     `json:"late_days"`
	TotalWorkHours   float64 `json:"total_work_hours"`
	AttendanceRate   float64 `json:"attendance_rate"`
	AverageWorkHours float64 `json:"average_work_hours"`
}

type Issue struct {
	Day      int       `json:"day"`
	Type     IssueType `json:"type"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}

// ========================================
// PER-EMPLOYEE DETECTOR RECORDS
// ========================================

type LateOccurrence struct {
	Day         int    `json:"day"`
	FirstPunch  string `json:"first_punch"`
	LateMinutes int    `json:"late_minutes"`
	Reason      string `json:"reason"`
}

type LateArrivalRecord struct {
	EmployeeID             string           `json:"employee_id"`
	EmployeeName           string           `json:"employee_name"`
	TotalLateDays          int              `json:"total_late_days"`
	TotalLateMinutes       int              `json:"total_late_minutes"`
	AverageLateMinutes     float64          `json:"average_late_minutes"`
	MaxLateMinutes         int              `json:"max_late_minutes"`
	MaxConsecutiveLateDays int              `json:"max_consecutive_late_days"`
	LateRate               float64          `json:"late_rate"`
	Occurrences            []LateOccurrence `json:"occurrences"`
	Pattern                Pattern          `json:"pattern"`
	Severity               Severity         `json:"severity"`
}

type AbsenceOccurrence struct {
	Day    int    `json:"day"`
	Reason string `json:"reason"`
}

type ConsecutiveAbsence struct {
	StartDay int `json:"start_day"`
	EndDay   int `json:"end_day"`
	Days     int `json:"days"`
}

type AbsenceRecord struct {
	EmployeeID          string               `json:"employee_id"`
	EmployeeName        string               `json:"employee_name"`
	WorkingDays         int                  `json:"working_days"`
	TotalAbsentDays     int                  `json:"total_absent_days"`
	AbsenceRate         float64              `json:"absence_rate"`
	MaxConsecutiveDays  int                  `json:"max_consecutive_days"`
	ConsecutiveAbsences []ConsecutiveAbsence `json:"consecutive_absences"`
	Occurrences         []AbsenceOccurrence  `json:"occurrences"`
	Pattern             Pattern              `json:"pattern"`
	Severity            Severity             `json:"severity"`
}

type HalfDayOccurrence struct {
	Day            int            `json:"day"`
	FirstPunch     string         `json:"first_punch"`
	LastPunch      string         `json:"last_punch"`
	WorkedHours    float64        `json:"worked_hours"`
	RequiredHours  float64        `json:"required_hours"`
	ShortfallHours float64        `json:"shortfall_hours"`
	TimingCategory TimingCategory `json:"timing_category"`
	Reason         string         `json:"reason"`
}

type HalfDayRecord struct {
	EmployeeID            string              `json:"employee_id"`
	EmployeeName          string              `json:"employee_name"`
	PresentDays           int                 `json:"present_days"`
	TotalHalfDays         int                 `json:"total_half_days"`
	TotalShortfallHours   float64             `json:"total_shortfall_hours"`
	AverageShortfallHours float64             `json:"average_shortfall_hours"`
	HalfDayRate           float64             `json:"half_day_rate"`
	Occurrences           []HalfDayOccurrence `json:"occurrences"`
	Pattern               Pattern             `json:"pattern"`
	Severity              Severity            `json:"severity"`
}

type PunctualityRecord struct {
	EmployeeID        string  `json:"employee_id"`
	EmployeeName      string  `json:"employee_name"`
	WorkingDays       int     `json:"working_days"`
	OnTimeDays        int     `json:"on_time_days"`
	LateDays          int     `json:"late_days"`
	AbsentDays        int     `json:"absent_days"`
	AverageDailyScore float64 `json:"average_daily_score"`
	AbsencePenalty    float64 `json:"absence_penalty"`
	PunctualityScore  float64 `json:"punctuality_score"`
	ConsistencyScore  float64 `json:"consistency_score"`
	Rank              int     `json:"rank"`
	Percentile        float64 `json:"percentile"`
	Category          string  `json:"category"`
}

// EmployeeAnalysis is the per-employee slot every detector writes into.
type EmployeeAnalysis struct {
	Employee    Employee
	Summary     AttendanceSummary
	Issues      []Issue
	LateArrival LateArrivalRecord
	Absence     AbsenceRecord
	HalfDay     HalfDayRecord
	Punctuality PunctualityRecord
}

// ========================================
// REPORT
// ========================================

type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// DaysInMonth returns the number of calendar days in the period.
func (p Period) DaysInMonth() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weekday returns the weekday of the given day of the period.
func (p Period) Weekday(day int) time.Weekday {
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC).Weekday()
}

type Report struct {
	Period             *Period            `json:"period,omitempty"`
	Department         string             `json:"department,omitempty"`
	GeneratedAt        time.Time          `json:"generated_at"`
	Employees          []EmployeeSummary  `json:"employees"`
	Issues             []EmployeeIssues   `json:"issues"`
	LateArrivalSummary LateArrivalSummary `json:"late_arrival_summary"`
	AbsenceSummary     AbsenceSummary     `json:"absence_summary"`
	HalfDaySummary     HalfDaySummary     `json:"half_day_summary"`
	PunctualitySummary PunctualitySummary `json:"punctuality_summary"`
	SeverityBreakdown  SeverityBreakdown  `json:"severity_breakdown"`
	DailyBreakdown     []DailyBreakdown   `json:"daily_breakdown"`
}

// TotalIssues counts issues across every employee.
func (r Report) TotalIssues() int {
	return r.SeverityBreakdown.Total
}

type EmployeeSummary struct {
	EmployeeID       string            `json:"employee_id"`
	Name             string            `json:"name"`
	Department       string            `json:"department"`
	Summary          AttendanceSummary `json:"summary"`
	PunctualityScore float64           `json:"punctuality_score"`
	IssueCount       int               `json:"issue_count"`
	Days             []ClassifiedDay   `json:"days"`
}

type EmployeeIssues struct {
	EmployeeID         string            `json:"employee_id"`
	Name               string            `json:"name"`
	Department         string            `json:"department"`
	Issues             []Issue           `json:"issues"`
	LateArrivalDetails LateArrivalRecord `json:"late_arrival_details"`
	AbsenceDetails     AbsenceRecord     `json:"absence_details"`
	HalfDayDetails     HalfDayRecord     `json:"half_day_details"`
}

type LateArrivalSummary struct {
	TotalEmployees       int                 `json:"total_employees"`
	EmployeesAffected    int                 `json:"employees_affected"`
	TotalLateDays        int                 `json:"total_late_days"`
	TotalLateMinutes     int                 `json:"total_late_minutes"`
	AverageLateMinutes   float64             `json:"average_late_minutes"`
	TopOffenders         []LateArrivalRecord `json:"top_offenders"`
	PatternDistribution  map[Pattern]int     `json:"pattern_distribution"`
	SeverityDistribution map[Severity]int    `json:"severity_distribution"`
}

type AbsenceSummary struct {
	TotalEmployees       int              `json:"total_employees"`
	EmployeesAffected    int              `json:"employees_affected"`
	TotalAbsentDays      int              `json:"total_absent_days"`
	AverageAbsenceRate   float64          `json:"average_absence_rate"`
	AverageAbsentDays    float64          `json:"average_absent_days"`
	TopAbsentees         []AbsenceRecord  `json:"top_absentees"`
	PatternDistribution  map[Pattern]int  `json:"pattern_distribution"`
	SeverityDistribution map[Severity]int `json:"severity_distribution"`
}

type HalfDaySummary struct {
	TotalEmployees        int              `json:"total_employees"`
	EmployeesAffected     int              `json:"employees_affected"`
	TotalHalfDays         int              `json:"total_half_days"`
	TotalShortfallHours   float64          `json:"total_shortfall_hours"`
	AverageShortfallHours float64          `json:"average_shortfall_hours"`
	TopOffenders          []HalfDayRecord  `json:"top_offenders"`
	PatternDistribution   map[Pattern]int  `json:"pattern_distribution"`
	SeverityDistribution  map[Severity]int `json:"severity_distribution"`
}

type PunctualitySummary struct {
	TotalEmployees       int                 `json:"total_employees"`
	AverageScore         float64             `json:"average_score"`
	AverageConsistency   float64             `json:"average_consistency"`
	Ranking              []PunctualityRecord `json:"ranking"`
	TopPerformers        []PunctualityRecord `json:"top_performers"`
	NeedsImprovement     []PunctualityRecord `json:"needs_improvement"`
	CategoryDistribution map[string]int      `json:"category_distribution"`
}

type SeverityBreakdown struct {
	High   int               `json:"high"`
	Medium int               `json:"medium"`
	Total  int               `json:"total"`
	ByType map[IssueType]int `json:"by_type"`
}

type DailyBreakdown struct {
	Day        int `json:"day"`
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Late       int `json:"late"`
	HalfDay    int `json:"half_day"`
	WeekendOff int `json:"weekend_off"`
	Holiday    int `json:"holiday"`
}

// AnalysisRun is a persisted report together with the fingerprint of its input.
type AnalysisRun struct {
	ID            string
	Fingerprint   string
	Source        string
	EmployeeCount int
	IssueCount    int
	Report        Report
	CreatedAt     time.Time
}
