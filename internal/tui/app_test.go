package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squadload/internal/config"
	"squadload/internal/metrics"
	"squadload/internal/service"
	"squadload/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	ctx := context.Background()
	s := store.NewTestStore(t)
	m := metrics.NewTestManager()
	cfg := config.DefaultConfig()

	ingest := service.NewIngestService(s, m)
	for d := 1; d <= 14; d++ {
		_, err := ingest.SubmitCheckOut(ctx, service.CheckOut{
			AthleteID: "9", AthleteName: "Iris", SessionDate: fmt.Sprintf("2024-03-%02d", d), Shift: "1",
			SessionMinutes: 60 + d*5, RPE: 6,
		})
		require.NoError(t, err)
	}
	_, err := ingest.SubmitCheckIn(ctx, service.CheckIn{
		AthleteID: "9", SessionDate: "2024-03-14", Shift: "1",
		Recovery: 4, Energy: 2, Sleep: 2, Stress: 2, Pain: 3, PainBodyParts: []string{"knee"},
	})
	require.NoError(t, err)

	query := service.NewQueryService(s, m, &cfg).WithClock(func() time.Time {
		return time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	})
	app := NewApp(query, "Test FC", "")
	app.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	return app
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run feeds the command's message back into the app, like the runtime would
func run(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	app.Update(cmd())
}

func TestDashboardLoads(t *testing.T) {
	app := newTestApp(t)
	run(app, app.Init())

	view := app.View()
	assert.Contains(t, view, "Test FC")
	assert.Contains(t, view, "Today")
	assert.Contains(t, view, "Iris")
	assert.Contains(t, view, "RED")
	assert.Contains(t, view, "moderate", "RPE 6 reads as moderate")

	_, cmd := app.Update(key("w"))
	run(app, cmd)
	assert.Equal(t, "week", app.dashboard.period)
	assert.Contains(t, app.View(), "Week")
}

func TestRiskBoardToAthlete(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(key("2"))
	assert.Equal(t, ScreenRisk, app.screen)
	run(app, cmd)
	require.NotNil(t, app.risk.board)
	assert.Contains(t, app.View(), "Iris")

	_, cmd = app.Update(key("+"))
	run(app, cmd)
	assert.Equal(t, 0.6, app.risk.board.Weight)

	selected := app.risk.board.Scores[app.risk.cursor]

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	run(app, cmd) // OpenAthleteMsg
	assert.Equal(t, ScreenAthlete, app.screen)
	run(app, app.athlete.Init())
	require.NotNil(t, app.athlete.report)
	assert.Equal(t, 0.6, app.athlete.report.Weight)
	assert.InDelta(t, selected.CombinedRisk, app.athlete.report.Score.CombinedRisk, 1e-12)
	assert.True(t, selected.ReferenceDay.Equal(app.athlete.report.ReferenceDay))
	assert.Contains(t, app.View(), "Iris")
	assert.Contains(t, app.View(), "Recent sessions")
	assert.Contains(t, app.View(), "Acute fatigue")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ScreenRisk, app.screen)
}

func TestHelpReturnsToPreviousScreen(t *testing.T) {
	app := newTestApp(t)
	app.Update(key("2"))
	app.Update(key("?"))
	assert.Equal(t, ScreenHelp, app.screen)
	assert.Contains(t, app.View(), "Keyboard Shortcuts")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ScreenRisk, app.screen)
}
