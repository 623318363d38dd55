package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squadload/internal/analysis"
	"squadload/internal/config"
	"squadload/internal/metrics"
	"squadload/internal/store"
)

type fixture struct {
	store   *store.Store
	metrics *metrics.Manager
	ingest  *IngestService
	query   *QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewTestStore(t)
	m := metrics.NewTestManager()
	cfg := config.DefaultConfig()
	today := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)
	return &fixture{
		store:   s,
		metrics: m,
		ingest:  NewIngestService(s, m),
		query:   NewQueryService(s, m, &cfg).WithClock(func() time.Time { return today }),
	}
}

// seed stores the three-week load scenario for athlete "a" and a couple of
// check-ins, mirroring the engine tests
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	loads := map[string]int{
		"2024-03-04": 400, "2024-03-06": 400, "2024-03-08": 400, "2024-03-11": 400,
		"2024-03-13": 400, "2024-03-18": 400, "2024-03-22": 400,
		"2024-03-25": 300, "2024-03-27": 400, "2024-03-30": 500,
	}
	for date, ua := range loads {
		_, err := f.ingest.SubmitCheckOut(ctx, CheckOut{
			AthleteID: "a", SessionDate: date, Shift: "1", SessionMinutes: ua / 10, RPE: 10,
		})
		require.NoError(t, err)
	}
	// b: ten light days, then a week of 900 UA (ACWR around 2.1)
	for d := 4; d <= 31; d++ {
		minutes := 10
		if d >= 25 {
			minutes = 90
		} else if d > 13 {
			continue
		}
		_, err := f.ingest.SubmitCheckOut(ctx, CheckOut{
			AthleteID: "b", AthleteName: "Bea", SessionDate: fmt.Sprintf("2024-03-%02d", d),
			Shift: "1", SessionMinutes: minutes, RPE: 10,
		})
		require.NoError(t, err)
	}

	in := validCheckIn()
	in.AthleteID, in.AthleteName, in.SessionDate, in.Shift = "a", "Ana", "2024-03-31", "1"
	_, err := f.ingest.SubmitCheckIn(ctx, in)
	require.NoError(t, err)

	red := validCheckIn()
	red.AthleteID, red.AthleteName, red.SessionDate, red.Shift = "b", "Bea", "2024-03-31", "1"
	red.Recovery, red.Pain, red.PainBodyParts = 1, 5, []string{"hamstring"}
	_, err = f.ingest.SubmitCheckIn(ctx, red)
	require.NoError(t, err)
}

func TestSubmitMergesCheckInAndCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.ingest.SubmitCheckIn(ctx, validCheckIn())
	require.NoError(t, err)
	assert.True(t, res.Created)

	res, err = f.ingest.SubmitCheckOut(ctx, CheckOut{AthleteID: "7", SessionDate: "2024-03-01", Shift: "Shift2", SessionMinutes: 60, RPE: 5})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, res.Record.HasCheckIn())
	assert.Equal(t, 300.0, *res.Record.InternalLoad())

	n, err := f.store.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSubmissions.WithLabelValues(KindCheckIn, OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSubmissions.WithLabelValues(KindCheckOut, OutcomeMerged)))
}

func TestSubmitInvalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.ingest.SubmitCheckOut(context.Background(), CheckOut{AthleteID: "7", SessionDate: "2024-03-01", RPE: 12})
	assert.ErrorIs(t, err, ErrInvalidSubmission)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSubmissions.WithLabelValues(KindCheckOut, OutcomeInvalid)))

	n, err := f.store.CountRecords(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "records.jsonl")
	lines := []string{
		`{"id_jugadora": "1", "fecha_sesion": "2024-03-01", "minutos_sesion": 60, "rpe": 5}`,
		`{"id_jugadora": "1", "fecha_sesion": "2024-03-01", "recuperacion": 3}`,
		`garbage`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0600))

	res, err := f.ingest.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, store.ImportResult{Lines: 3, Created: 1, Merged: 1, Skipped: 1}, res)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterImportedLines.WithLabelValues("skipped")))

	_, err = f.ingest.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestGetRiskBoard(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	board, err := f.query.GetRiskBoard(context.Background(), nil, time.Time{})
	require.NoError(t, err)

	require.Len(t, board.Scores, 2)
	assert.Equal(t, "b", board.Scores[0].AthleteID, "a danger ACWR and a RED check-in rank first")
	assert.Equal(t, analysis.ICSRed, board.Scores[0].ICS)
	assert.Equal(t, 2024, board.ReferenceDay.Year())
	assert.Equal(t, 31, board.ReferenceDay.Day())
	assert.Equal(t, 0.5, board.Weight)

	a := board.Scores[1]
	require.NotNil(t, a.ACWR())
	assert.InDelta(t, 0.4286, *a.ACWR(), 0.0001)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GaugeAthletesAtRisk))

	loadOnly := 1.0
	board, err = f.query.GetRiskBoard(context.Background(), &loadOnly, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, board.Scores[1].CombinedRisk, 1e-9)
}

func TestGetRiskBoardEmpty(t *testing.T) {
	f := newFixture(t)

	board, err := f.query.GetRiskBoard(context.Background(), nil, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, board.Scores)
	assert.Nil(t, board.Summary.MeanRisk)
}

func TestGetAthleteReport(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	report, err := f.query.GetAthleteReport(ctx, "a", nil, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Ana", report.AthleteName)
	assert.Equal(t, 31, report.ReferenceDay.Day())
	assert.Len(t, report.Series, 28)
	assert.Len(t, report.Recent, 11)
	assert.Equal(t, 31, report.Recent[0].Day.Day(), "recent rows are newest first")
	assert.Equal(t, 31, report.LastCheckIn.Day())
	assert.Equal(t, 0.5, report.Weight)
	assert.Equal(t, analysis.ACWRReading(report.Score.ACWR()), report.Interpretation.ACWR)

	_, err = f.query.GetAthleteReport(ctx, "nobody", nil, time.Time{})
	assert.True(t, errors.Is(err, ErrUnknownAthlete))
}

func TestAthleteReportMatchesBoardRow(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	// c stops training on 03-20 while the rest of the team carries on
	for d := 10; d <= 20; d++ {
		_, err := f.ingest.SubmitCheckOut(ctx, CheckOut{
			AthleteID: "c", SessionDate: fmt.Sprintf("2024-03-%02d", d), Shift: "1", SessionMinutes: 50, RPE: 6,
		})
		require.NoError(t, err)
	}

	w := 0.9
	board, err := f.query.GetRiskBoard(ctx, &w, time.Time{})
	require.NoError(t, err)
	var row *analysis.RiskScore
	for i := range board.Scores {
		if board.Scores[i].AthleteID == "c" {
			row = &board.Scores[i]
		}
	}
	require.NotNil(t, row)

	report, err := f.query.GetAthleteReport(ctx, "c", &w, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, board.ReferenceDay, report.ReferenceDay)
	assert.Equal(t, 0.9, report.Weight)
	assert.InDelta(t, row.CombinedRisk, report.Score.CombinedRisk, 1e-12)
	require.NotNil(t, report.Score.ACWR())
	assert.InDelta(t, *row.ACWR(), *report.Score.ACWR(), 1e-12)
	assert.Equal(t, 0.0, *report.Score.ACWR(), "no sessions in the last seven days")

	last := report.Series[len(report.Series)-1]
	assert.True(t, last.Date.Equal(report.ReferenceDay), "series runs to the team reference day")
}

func TestGetLoadReport(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	report, err := f.query.GetLoadReport(context.Background(), analysis.LoadFilter{
		Athletes: []string{"Bea"},
		End:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.False(t, report.Empty)
	assert.Equal(t, 900.0, report.Windows.DayLoad)
	assert.Equal(t, 6300.0, report.Windows.Acute7dSum)

	report, err = f.query.GetLoadReport(context.Background(), analysis.LoadFilter{Athletes: []string{"ghost"}})
	require.NoError(t, err)
	assert.True(t, report.Empty)
}

func TestGetDashboardData(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpsertAthlete(ctx, store.Athlete{ID: "c", Name: "Cleo", Active: true}))

	data, err := f.query.GetDashboardData(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, analysis.PeriodToday, data.Period, "today has check-ins")
	assert.False(t, data.Empty)
	assert.Equal(t, 2, data.Records)
	assert.Equal(t, analysis.ICSCounts{Red: 1, Green: 1}, data.ICS)
	assert.Equal(t, analysis.ICSRed, data.ICSList[0].Class)
	assert.Equal(t, []analysis.RosterEntry{{AthleteID: "c", AthleteName: "Cleo"}}, data.Pending.CheckIn)
	require.Len(t, data.WellnessAlerts.Alerts, 2)
	assert.Equal(t, "b", data.WellnessAlerts.Alerts[0].AthleteID)

	data, err = f.query.GetDashboardData(ctx, "week")
	require.NoError(t, err)
	assert.Equal(t, analysis.PeriodWeek, data.Period)
	require.NotNil(t, data.Load.Value)

	_, err = f.query.GetDashboardData(ctx, "fortnight")
	assert.ErrorIs(t, err, analysis.ErrUnknownPeriod)
}

func TestGetRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpsertAthlete(ctx, store.Athlete{ID: "1", Name: "Ana", Active: true}))
	require.NoError(t, f.store.UpsertAthlete(ctx, store.Athlete{ID: "2", Name: "Bea", Active: false}))

	roster, err := f.query.GetRoster(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Athlete{{ID: "1", Name: "Ana", Active: true}}, roster)
}
