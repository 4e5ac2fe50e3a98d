package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

// Engine classifies raw punches and runs every detector over the batch.
type Engine struct {
	cfg        attendance.Config
	classifier *Classifier
	detectors  []Detector
	now        func() time.Time
}

// NewEngine builds an engine with the given detectors, or DefaultDetectors when none
// are passed. A config that fails Validate is rejected.
func NewEngine(cfg attendance.Config, detectors ...Detector) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if len(detectors) == 0 {
		detectors = DefaultDetectors(cfg)
	}
	return &Engine{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
		detectors:  detectors,
		now:        time.Now,
	}, nil
}

func (e *Engine) Config() attendance.Config {
	return e.cfg
}

// Analyze validates the whole batch first; one bad employee fails the request.
func (e *Engine) Analyze(ctx context.Context, req attendance.AnalyzeRequest) (attendance.Report, error) {
	if err := req.Validate(); err != nil {
		return attendance.Report{}, err
	}

	department := req.Department
	if department == "" {
		department = e.cfg.Department
	}

	employees := make([]attendance.Employee, len(req.Employees))
	for i, in := range req.Employees {
		employees[i] = e.classifier.ClassifyEmployee(in, department)
	}

	return e.AnalyzeEmployees(ctx, employees, req.Period, department)
}

// AnalyzeEmployees runs the per-employee pass concurrently and the population pass
// sequentially. Each worker writes only its own slot of analyses.
func (e *Engine) AnalyzeEmployees(ctx context.Context, employees []attendance.Employee, period *attendance.Period, department string) (attendance.Report, error) {
	analyses := make([]attendance.EmployeeAnalysis, len(employees))

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range employees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analyses[i] = e.analyzeEmployee(employees[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return attendance.Report{}, err
	}

	report := attendance.Report{
		Period:      period,
		Department:  department,
		GeneratedAt: e.now().UTC(),
	}
	for _, d := range e.detectors {
		d.Summarize(analyses, &report)
	}

	report.Employees = roster(analyses)
	report.Issues = issuesView(analyses)
	report.DailyBreakdown = dailyBreakdown(employees)
	return report, nil
}

func (e *Engine) analyzeEmployee(emp attendance.Employee) attendance.EmployeeAnalysis {
	out := attendance.EmployeeAnalysis{
		Employee: emp,
		Summary:  Summarize(emp),
	}
	for _, d := range e.detectors {
		d.Analyze(emp, &out)
	}
	return out
}

func roster(analyses []attendance.EmployeeAnalysis) []attendance.EmployeeSummary {
	out := make([]attendance.EmployeeSummary, len(analyses))
	for i, a := range analyses {
		out[i] = attendance.EmployeeSummary{
			EmployeeID:       a.Employee.ID,
			Name:             a.Employee.Name,
			Department:       a.Employee.Department,
			Summary:          a.Summary,
			PunctualityScore: a.Punctuality.PunctualityScore,
			IssueCount:       len(a.Issues),
			Days:             a.Employee.Days,
		}
	}
	return out
}

func issuesView(analyses []attendance.EmployeeAnalysis) []attendance.EmployeeIssues {
	out := []attendance.EmployeeIssues{}
	for _, a := range analyses {
		if len(a.Issues) == 0 {
			continue
		}
		out = append(out, attendance.EmployeeIssues{
			EmployeeID:         a.Employee.ID,
			Name:               a.Employee.Name,
			Department:         a.Employee.Department,
			Issues:             a.Issues,
			LateArrivalDetails: a.LateArrival,
			AbsenceDetails:     a.Absence,
			HalfDayDetails:     a.HalfDay,
		})
	}
	return out
}

func dailyBreakdown(employees []attendance.Employee) []attendance.DailyBreakdown {
	byDay := make(map[int]*attendance.DailyBreakdown)
	for _, emp := range employees {
		for _, d := range emp.Days {
			b, ok := byDay[d.Day]
			if !ok {
				b = &attendance.DailyBreakdown{Day: d.Day}
				byDay[d.Day] = b
			}
			switch d.Status {
			case attendance.StatusPresent:
				b.Present++
				if d.IsLate {
					b.Late++
				}
				if d.IsHalfDay() {
					b.HalfDay++
				}
			case attendance.StatusAbsent:
				b.Absent++
			case attendance.StatusWeekendOff:
				b.WeekendOff++
			case attendance.StatusHoliday:
				b.Holiday++
			}
		}
	}

	out := make([]attendance.DailyBreakdown, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
