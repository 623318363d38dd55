package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"squadload/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenRisk
	ScreenAthlete
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	dashboard DashboardModel
	risk      RiskModel
	athlete   AthleteModel
	help      HelpModel

	queryService *service.QueryService
	teamName     string

	width  int
	height int
}

// NewApp creates the app on the group dashboard. period may be empty.
func NewApp(queryService *service.QueryService, teamName, period string) *App {
	return &App{
		screen:       ScreenDashboard,
		queryService: queryService,
		teamName:     teamName,
		dashboard:    NewDashboardModel(queryService, period, 0, 0),
		risk:         NewRiskModel(queryService),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.screen = ScreenDashboard
			return a, a.dashboard.Init()
		case "2":
			a.screen = ScreenRisk
			return a, a.risk.Init()
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case "esc":
			switch a.screen {
			case ScreenHelp:
				a.screen = a.prevScreen
				return a, nil
			case ScreenAthlete:
				a.screen = ScreenRisk
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// every viewport screen tracks the size, not just the visible one
		m, _ := a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
		if a.screen == ScreenAthlete {
			m, _ = a.athlete.Update(msg)
			a.athlete = m.(AthleteModel)
		}
		return a, nil

	case OpenAthleteMsg:
		a.screen = ScreenAthlete
		a.athlete = NewAthleteModel(a.queryService, msg.AthleteID, msg.Weight, a.width, a.height)
		return a, a.athlete.Init()
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenRisk:
		var m tea.Model
		m, cmd = a.risk.Update(msg)
		a.risk = m.(RiskModel)
	case ScreenAthlete:
		var m tea.Model
		m, cmd = a.athlete.Update(msg)
		a.athlete = m.(AthleteModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenRisk:
		content = a.risk.View()
	case ScreenAthlete:
		content = a.athlete.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render(a.teamName + "  Load & Risk")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Risk board", ScreenRisk},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}
		label := "[" + item.key + "] " + item.label
		active := a.screen == item.screen || (item.screen == ScreenRisk && a.screen == ScreenAthlete)
		if active {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}
	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}
