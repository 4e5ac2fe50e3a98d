package attendance

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/utils"
)

const (
	CategoryTopPerformer     = "Top Performer"
	CategoryExcellent        = "Excellent"
	CategoryGood             = "Good"
	CategoryAverage          = "Average"
	CategoryNeedsImprovement = "Needs Improvement"
)

type PunctualityDetector struct {
	cfg attendance.Config
}

func NewPunctualityDetector(cfg attendance.Config) *PunctualityDetector {
	return &PunctualityDetector{cfg: cfg}
}

func (d *PunctualityDetector) Name() string { return "punctuality" }

func (d *PunctualityDetector) Analyze(emp attendance.Employee, out *attendance.EmployeeAnalysis) {
	out.Punctuality = d.AnalyzeEmployee(emp)
}

// AnalyzeEmployee scores every working day and derives the employee's score and
// consistency. Rank, percentile and category are left for Summarize.
func (d *PunctualityDetector) AnalyzeEmployee(emp attendance.Employee) attendance.PunctualityRecord {
	w := d.cfg.Punctuality
	rec := attendance.PunctualityRecord{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
	}

	scores := make(stats.Float64Data, 0, len(emp.Days))
	for _, day := range emp.Days {
		if !day.IsWorkingDay() {
			continue
		}
		rec.WorkingDays++

		switch {
		case day.Status == attendance.StatusAbsent:
			rec.AbsentDays++
			scores = append(scores, 0)
		case day.IsLate:
			rec.LateDays++
			scores = append(scores, math.Max(0, 100-w.LatePenaltyPerMinute*float64(day.LateMinutes)))
		default:
			rec.OnTimeDays++
			scores = append(scores, 100)
		}
	}

	if len(scores) == 0 {
		return rec
	}

	mean, err := scores.Mean()
	if err != nil {
		return rec
	}
	sd, err := scores.StandardDeviationPopulation()
	if err != nil {
		sd = 0
	}

	rec.AverageDailyScore = utils.Round(mean, 2)
	rec.AbsencePenalty = math.Min(float64(rec.AbsentDays)*w.AbsencePenaltyPerDay, w.AbsencePenaltyCap)
	rec.PunctualityScore = utils.Round(clamp(mean-rec.AbsencePenalty, 0, 100), 1)
	rec.ConsistencyScore = utils.Round(math.Max(0, 100-w.ConsistencyMultiplier*sd), 1)
	return rec
}

// Summarize ranks every employee and writes rank, percentile and category back into
// the analyses so the roster and exports see the same values as the ranking.
func (d *PunctualityDetector) Summarize(analyses []attendance.EmployeeAnalysis, report *attendance.Report) {
	records := make([]attendance.PunctualityRecord, len(analyses))
	for i := range analyses {
		records[i] = analyses[i].Punctuality
	}

	summary := d.SummarizeRecords(records)

	byID := make(map[string]attendance.PunctualityRecord, len(summary.Ranking))
	for _, r := range summary.Ranking {
		byID[r.EmployeeID] = r
	}
	for i := range analyses {
		if r, ok := byID[analyses[i].Punctuality.EmployeeID]; ok {
			analyses[i].Punctuality = r
		}
	}
	report.PunctualitySummary = summary
}

func (d *PunctualityDetector) SummarizeRecords(records []attendance.PunctualityRecord) attendance.PunctualitySummary {
	ranking := Rank(records)

	summary := attendance.PunctualitySummary{
		TotalEmployees:   len(ranking),
		Ranking:          ranking,
		TopPerformers:    limit(ranking, d.cfg.TopN),
		NeedsImprovement: []attendance.PunctualityRecord{},
		CategoryDistribution: map[string]int{
			CategoryTopPerformer:     0,
			CategoryExcellent:        0,
			CategoryGood:             0,
			CategoryAverage:          0,
			CategoryNeedsImprovement: 0,
		},
	}
	if len(ranking) == 0 {
		summary.TopPerformers = []attendance.PunctualityRecord{}
		return summary
	}

	var scoreSum, consistencySum float64
	for _, r := range ranking {
		scoreSum += r.PunctualityScore
		consistencySum += r.ConsistencyScore
		summary.CategoryDistribution[r.Category]++
	}
	summary.AverageScore = utils.Round(scoreSum/float64(len(ranking)), 1)
	summary.AverageConsistency = utils.Round(consistencySum/float64(len(ranking)), 1)

	// worst first
	for i := len(ranking) - 1; i >= 0 && len(summary.NeedsImprovement) < d.cfg.TopN; i-- {
		if ranking[i].Category == CategoryNeedsImprovement {
			summary.NeedsImprovement = append(summary.NeedsImprovement, ranking[i])
		}
	}
	return summary
}

// Rank orders records by score, then consistency, then employee ID, and assigns the
// 1-based rank, percentile and category. The percentile is the share of the batch ranked
// at or above the record (rank/N), so Top Performer needs a batch of at least ten.
// The input slice is not modified.
func Rank(records []attendance.PunctualityRecord) []attendance.PunctualityRecord {
	ranking := make([]attendance.PunctualityRecord, len(records))
	copy(ranking, records)

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].PunctualityScore != ranking[j].PunctualityScore {
			return ranking[i].PunctualityScore > ranking[j].PunctualityScore
		}
		if ranking[i].ConsistencyScore != ranking[j].ConsistencyScore {
			return ranking[i].ConsistencyScore > ranking[j].ConsistencyScore
		}
		return ranking[i].EmployeeID < ranking[j].EmployeeID
	})

	n := float64(len(ranking))
	for i := range ranking {
		ranking[i].Rank = i + 1
		ranking[i].Percentile = utils.Round(float64(i+1)/n*100, 2)
		ranking[i].Category = category(ranking[i].Percentile)
	}
	return ranking
}

func category(percentile float64) string {
	switch {
	case percentile <= 10:
		return CategoryTopPerformer
	case percentile <= 25:
		return CategoryExcellent
	case percentile <= 50:
		return CategoryGood
	case percentile <= 75:
		return CategoryAverage
	default:
		return CategoryNeedsImprovement
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
