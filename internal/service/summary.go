package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/godilite/survey-table/internal/survey"
)

const (
	// Unassigned groups responses without an account manager.
	Unassigned = "Unassigned"
	// Undated groups responses whose completion date cannot be parsed.
	Undated = "Undated"

	promoterMin  = 9
	detractorMax = 6
	satisfiedMin = 4
)

var ErrNoRows = errors.New("no rows to summarize")

// SummaryService aggregates survey responses per account manager.
type SummaryService struct {
	rows   RowSource
	logger *zap.Logger
}

func NewSummaryService(rows RowSource, logger *zap.Logger) *SummaryService {
	if rows == nil {
		panic("rows must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &SummaryService{
		rows:   rows,
		logger: logger,
	}
}

// WidgetSummary summarizes the rows a widget currently shows.
func (s *SummaryService) WidgetSummary(ctx context.Context, widgetID string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	rows, err := s.rows.FilteredRows(widgetID)
	if err != nil {
		return Summary{}, fmt.Errorf("rows for %s: %w", widgetID, err)
	}
	if len(rows) == 0 {
		return Summary{}, ErrNoRows
	}

	summary := Summarize(rows)
	s.logger.Info("summarized widget rows",
		zap.String("widget", widgetID),
		zap.Int("rows", len(rows)),
		zap.Int("managers", len(summary.Managers)),
		zap.Int("quarters", len(summary.Quarters)))
	return summary, nil
}

// Summarize groups rows by account manager and by completion quarter.
// Managers are ordered by response count, busiest first, then by name.
// Quarters are ordered oldest first with Undated last.
func Summarize(rows []survey.Row) Summary {
	overall := &accumulator{}
	groups := make(map[string]*accumulator)
	quarters := make(map[quarterKey]*accumulator)
	for _, r := range rows {
		qk := quarterKeyOf(r)
		qacc, ok := quarters[qk]
		if !ok {
			qacc = &accumulator{}
			quarters[qk] = qacc
		}
		qacc.add(r)

		name := r.AccountManager
		if name == "" {
			name = Unassigned
		}
		acc, ok := groups[name]
		if !ok {
			acc = &accumulator{}
			groups[name] = acc
		}
		acc.add(r)
		overall.add(r)
	}

	managers := make([]ManagerSummary, 0, len(groups))
	for name, acc := range groups {
		managers = append(managers, ManagerSummary{Manager: name, Stats: acc.stats()})
	}
	sort.Slice(managers, func(i, j int) bool {
		if managers[i].Responses != managers[j].Responses {
			return managers[i].Responses > managers[j].Responses
		}
		return managers[i].Manager < managers[j].Manager
	})

	return Summary{
		Overall:  overall.stats(),
		Managers: managers,
		Quarters: quarterSummaries(quarters),
	}
}

// quarterKey orders quarters chronologically. The zero key is Undated.
type quarterKey struct {
	year, quarter int
}

func quarterKeyOf(r survey.Row) quarterKey {
	year, q, ok := r.QuarterOf()
	if !ok {
		return quarterKey{}
	}
	return quarterKey{year: year, quarter: q}
}

func (k quarterKey) label() string {
	if k == (quarterKey{}) {
		return Undated
	}
	return fmt.Sprintf("Q%d %d", k.quarter, k.year)
}

func quarterSummaries(groups map[quarterKey]*accumulator) []QuarterSummary {
	keys := make([]quarterKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if (a == quarterKey{}) != (b == quarterKey{}) {
			return b == quarterKey{}
		}
		if a.year != b.year {
			return a.year < b.year
		}
		return a.quarter < b.quarter
	})

	out := make([]QuarterSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, QuarterSummary{Quarter: k.label(), Stats: groups[k].stats()})
	}
	return out
}

type accumulator struct {
	responses    int
	npsCount     int
	npsSum       int
	promoters    int
	detractors   int
	satCount     int
	satSum       int
	satisfiedCnt int
}

func (a *accumulator) add(r survey.Row) {
	a.responses++
	if r.NPSScore != nil {
		n := *r.NPSScore
		a.npsCount++
		a.npsSum += n
		switch {
		case n >= promoterMin:
			a.promoters++
		case n <= detractorMax:
			a.detractors++
		}
	}
	if r.SatisfactionScore != nil {
		n := *r.SatisfactionScore
		a.satCount++
		a.satSum += n
		if n >= satisfiedMin {
			a.satisfiedCnt++
		}
	}
}

func (a *accumulator) stats() Stats {
	st := Stats{
		Responses:             a.responses,
		NPSResponses:          a.npsCount,
		Promoters:             a.promoters,
		Detractors:            a.detractors,
		SatisfactionResponses: a.satCount,
		Satisfied:             a.satisfiedCnt,
	}
	if a.npsCount > 0 {
		st.AverageNPS = round1(float64(a.npsSum) / float64(a.npsCount))
		st.NPS = round1(float64(a.promoters-a.detractors) * 100 / float64(a.npsCount))
	}
	if a.satCount > 0 {
		st.AverageSatisfaction = round1(float64(a.satSum) / float64(a.satCount))
	}
	return st
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
