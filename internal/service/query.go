package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"squadload/internal/analysis"
	"squadload/internal/config"
	"squadload/internal/metrics"
	"squadload/internal/store"
)

// ErrUnknownAthlete is returned when an athlete has no stored records
var ErrUnknownAthlete = errors.New("unknown athlete")

// QueryService runs the analytics engine over the stored record table
type QueryService struct {
	store     *store.Store
	metrics   *metrics.Manager
	weight    float64 // ACWR share of the combined risk
	threshold float64 // wellness alert threshold
	now       func() time.Time
}

// NewQueryService creates a new query service
func NewQueryService(s *store.Store, m *metrics.Manager, cfg *config.Config) *QueryService {
	q := &QueryService{
		store:     s,
		metrics:   m,
		weight:    config.DefaultACWRWeight,
		threshold: config.DefaultAlertThreshold,
		now:       time.Now,
	}
	if cfg != nil {
		q.weight = cfg.Weight()
		q.threshold = cfg.Threshold()
	}
	return q
}

// WithClock replaces the wall clock used to resolve "today"
func (q *QueryService) WithClock(now func() time.Time) *QueryService {
	q.now = now
	return q
}

// Weight returns the configured ACWR weight
func (q *QueryService) Weight() float64 {
	return q.weight
}

func (q *QueryService) today() time.Time {
	return analysis.DayOf(q.now())
}

// observe records the duration of one engine operation
func (q *QueryService) observe(operation string, start time.Time) {
	q.metrics.HistEngineDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Table loads the whole record table
func (q *QueryService) Table(ctx context.Context) (*analysis.Table, error) {
	defer q.observe("load_table", time.Now())

	t, err := q.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	q.metrics.GaugeRecords.Set(float64(t.Len()))
	return t, nil
}

// GetRoster returns the active roster ordered by name
func (q *QueryService) GetRoster(ctx context.Context) ([]store.Athlete, error) {
	athletes, err := q.store.ListAthletes(ctx)
	if err != nil {
		return nil, err
	}
	active := athletes[:0]
	for _, a := range athletes {
		if a.Active {
			active = append(active, a)
		}
	}
	return active, nil
}

// DashboardData contains all data needed for the group dashboard
type DashboardData struct {
	Period analysis.Period
	Start  time.Time
	End    time.Time
	Today  time.Time
	Empty  bool

	Records  int
	Athletes int

	Wellness analysis.MetricBlock
	RPE      analysis.MetricBlock
	Load     analysis.MetricBlock
	Pain     analysis.MetricBlock

	Alerts         analysis.AlertSummary
	ICS            analysis.ICSCounts
	ICSList        []analysis.ICSEntry
	Players        []analysis.PlayerSummary
	Pending        analysis.Pending
	WellnessAlerts analysis.WellnessAlertReport
}

// GetDashboardData summarizes a period. An empty period name picks the
// narrowest period with recent data.
func (q *QueryService) GetDashboardData(ctx context.Context, period string) (*DashboardData, error) {
	table, err := q.Table(ctx)
	if err != nil {
		return nil, err
	}
	defer q.observe("dashboard", time.Now())

	today := q.today()
	p := analysis.DefaultPeriod(table, today)
	if period != "" {
		if p, err = analysis.ParsePeriod(period); err != nil {
			return nil, err
		}
	}

	view := analysis.FilterPeriod(table, p, today)
	data := &DashboardData{
		Period: p,
		Start:  view.Start,
		End:    view.End,
		Today:  today,
		Empty:  view.Empty,
	}

	roster, err := q.GetRoster(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]analysis.RosterEntry, len(roster))
	for i, a := range roster {
		entries[i] = analysis.RosterEntry{AthleteID: a.ID, AthleteName: a.Name}
	}
	data.Pending = analysis.PendingSubmissions(analysis.FilterPeriod(table, analysis.PeriodToday, today).Table, entries)

	if view.Empty {
		logrus.WithField("period", p.String()).Debug("no records in period")
		return data, nil
	}

	data.Records = view.Table.Len()
	data.Athletes = len(view.Table.Athletes())
	data.Wellness = analysis.MetricBlockFor(view, analysis.MetricWellness)
	data.RPE = analysis.MetricBlockFor(view, analysis.MetricRPE)
	data.Load = analysis.MetricBlockFor(view, analysis.MetricLoad)
	data.Pain = analysis.MetricBlockFor(view, analysis.MetricPain)
	data.Alerts = analysis.CountAlerts(view.Table)
	data.ICS = analysis.CountICS(view.Table)
	data.ICSList = analysis.ClassifyRows(view.Table)
	data.Players = analysis.PlayerSummaries(view.Table)
	data.WellnessAlerts = analysis.WellnessAlerts(view.Table, view.End, q.threshold)

	return data, nil
}

// RiskBoard is the team risk ranking at a reference day
type RiskBoard struct {
	ReferenceDay time.Time
	Weight       float64
	Scores       []analysis.RiskScore
	Summary      analysis.RiskSummary
}

// GetRiskBoard scores every athlete. A nil weight uses the configured one
// and a zero asOf the last day with data.
func (q *QueryService) GetRiskBoard(ctx context.Context, weight *float64, asOf time.Time) (*RiskBoard, error) {
	table, err := q.Table(ctx)
	if err != nil {
		return nil, err
	}
	defer q.observe("risk_board", time.Now())

	w := q.weight
	if weight != nil {
		w = analysis.NormalizeWeight(*weight)
	}

	scores, err := analysis.ScoreTeam(ctx, table, asOf, w)
	if err != nil {
		return nil, fmt.Errorf("scoring team: %w", err)
	}

	board := &RiskBoard{
		Weight:  w,
		Scores:  scores,
		Summary: analysis.SummarizeRisk(scores),
	}
	if len(scores) > 0 {
		board.ReferenceDay = scores[0].ReferenceDay
	}
	q.metrics.GaugeAthletesAtRisk.Set(float64(board.Summary.DangerCount))

	logrus.WithFields(logrus.Fields{
		"athletes": board.Summary.Athletes,
		"danger":   board.Summary.DangerCount,
		"red":      board.Summary.RedCount,
	}).Debug("risk board computed")

	return board, nil
}

// AthleteReport is one athlete's load history and current risk
type AthleteReport struct {
	AthleteID      string
	AthleteName    string
	ReferenceDay   time.Time
	Weight         float64
	Score          analysis.RiskScore
	Interpretation analysis.LoadInterpretation
	Series         []analysis.ACWRPoint
	Recent         []analysis.Row // newest first
	LastCheckIn    time.Time      // zero when the athlete never checked in
}

// GetAthleteReport builds the ACWR series and risk score of one athlete.
// weight and asOf default the same way as in GetRiskBoard, so the report
// matches the athlete's row on the board.
func (q *QueryService) GetAthleteReport(ctx context.Context, athleteID string, weight *float64, asOf time.Time) (*AthleteReport, error) {
	table, err := q.Table(ctx)
	if err != nil {
		return nil, err
	}
	defer q.observe("athlete_report", time.Now())

	athlete := table.ForAthlete(athleteID)
	if athlete.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAthlete, athleteID)
	}

	w := q.weight
	if weight != nil {
		w = analysis.NormalizeWeight(*weight)
	}
	ref := analysis.DayOf(asOf)
	if asOf.IsZero() {
		ref, _ = table.MaxDay()
	}

	score := analysis.ScoreAthlete(table, athleteID, ref, w)
	series := analysis.ACWRSeries(analysis.DailyLoads(athlete.CheckOuts()), ref)
	report := &AthleteReport{
		AthleteID:      athleteID,
		AthleteName:    athlete.AthleteNames()[athleteID],
		ReferenceDay:   ref,
		Weight:         w,
		Score:          score,
		Interpretation: analysis.Interpret(score.Windows, score.Indices),
		Series:         analysis.WithInjuryRisk(series, athlete),
	}

	rows := athlete.Between(time.Time{}, ref).Rows()
	for i := len(rows) - 1; i >= 0 && len(report.Recent) < RecentRecordsLimit; i-- {
		report.Recent = append(report.Recent, rows[i])
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].HasCheckIn() {
			report.LastCheckIn = rows[i].Day
			break
		}
	}
	return report, nil
}

// GetLoadReport runs the filtered team load view
func (q *QueryService) GetLoadReport(ctx context.Context, f analysis.LoadFilter) (analysis.LoadReport, error) {
	table, err := q.Table(ctx)
	if err != nil {
		return analysis.LoadReport{}, err
	}
	defer q.observe("load_report", time.Now())

	return analysis.BuildLoadReport(table, f), nil
}
