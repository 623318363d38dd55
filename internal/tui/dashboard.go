package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"squadload/internal/analysis"
	"squadload/internal/service"
)

// DashboardModel is the group dashboard for one period
type DashboardModel struct {
	queryService *service.QueryService
	period       string // empty picks the default period
	data         *service.DashboardData
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, period string, width, height int) DashboardModel {
	m := DashboardModel{
		queryService: qs,
		period:       period,
		loading:      true,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}
	return m
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData(context.Background(), m.period)
	return dashboardDataMsg{data: data, err: err}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.data != nil {
			m.period = m.data.Period.String()
		}
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		case "p":
			m.period = nextPeriod(m.period).String()
			m.loading = true
			return m, m.loadData
		case "t", "l", "w", "m":
			m.period = map[string]string{"t": "today", "l": "last_day", "w": "week", "m": "month"}[msg.String()]
			m.loading = true
			return m, m.loadData
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func nextPeriod(current string) analysis.Period {
	p, err := analysis.ParsePeriod(current)
	if err != nil {
		return analysis.PeriodToday
	}
	periods := analysis.Periods()
	return periods[(int(p)+1)%len(periods)]
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  p: next period  t/l/w/m: today, last day, week, month  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m DashboardModel) renderContent() string {
	d := m.data
	if d == nil {
		return "No data"
	}

	title := cardTitleStyle.Render(fmt.Sprintf("%s  %s", d.Period.Label(), periodRange(d)))
	sections := []string{title}

	if d.Empty {
		sections = append(sections, mutedStyle.Render("No records in this period. Import a file or run 'squadload seed'."))
		sections = append(sections, m.renderPending())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderMetricsCard(), "  ", m.renderICSCard(), "  ", m.renderAlertsCard())
	sections = append(sections, topRow)

	if len(d.Load.Series) > 1 {
		sections = append(sections, m.renderTrendChart())
	}
	sections = append(sections, m.renderPlayers())
	sections = append(sections, m.renderPending())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func periodRange(d *service.DashboardData) string {
	if d.Start.IsZero() {
		return ""
	}
	if d.Start.Equal(d.End) {
		return mutedStyle.Render(d.Start.Format("Mon Jan 02"))
	}
	return mutedStyle.Render(d.Start.Format("Jan 02") + " - " + d.End.Format("Jan 02"))
}

func (m DashboardModel) renderMetricsCard() string {
	d := m.data
	lines := []string{
		cardTitleStyle.Render("Group"),
		RenderMetric("Wellness (5-25)", withReading(formatOpt(d.Wellness.Value, "%.1f"), d.Wellness.Reading), formatDelta(d.Wellness.Delta)),
		RenderMetric("RPE", withReading(formatOpt(d.RPE.Value, "%.1f"), d.RPE.Reading), formatDelta(d.RPE.Delta)),
		RenderMetric("Load (UA)", formatLoad(d.Load.Value), formatDelta(d.Load.Delta)),
		RenderMetric("Pain", formatOpt(d.Pain.Value, "%.1f"), formatDelta(d.Pain.Delta)),
		"",
		RenderMetric("Records", humanize.Comma(int64(d.Records)), ""),
		RenderMetric("Athletes", fmt.Sprintf("%d", d.Athletes), ""),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m DashboardModel) renderICSCard() string {
	c := m.data.ICS
	lines := []string{
		cardTitleStyle.Render("Check-in status"),
		icsStyle(analysis.ICSRed).Render(fmt.Sprintf("RED     %3d", c.Red)),
		icsStyle(analysis.ICSYellow).Render(fmt.Sprintf("YELLOW  %3d", c.Yellow)),
		icsStyle(analysis.ICSGreen).Render(fmt.Sprintf("GREEN   %3d", c.Green)),
	}
	if c.Unknown > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("no data %3d", c.Unknown)))
	}
	return cardStyle.Width(22).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m DashboardModel) renderAlertsCard() string {
	a := m.data.Alerts
	w := m.data.WellnessAlerts

	lines := []string{
		cardTitleStyle.Render("Alerts"),
		fmt.Sprintf("At risk  %d/%d  %.1f%%", a.AtRisk, a.Athletes, a.Percent),
		RenderProgressBar(a.Percent/100, 20),
		"",
		fmt.Sprintf("Wellness index >= %.1f: %d", w.Threshold, w.FlaggedCount),
	}
	for i, alert := range w.Alerts {
		if i >= 5 || !alert.Flagged {
			break
		}
		lines = append(lines, errorStyle.Render(fmt.Sprintf("  %-16s %4.1f", truncateName(displayName(alert.AthleteID, alert.AthleteName), 16), alert.Index)))
	}
	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m DashboardModel) renderTrendChart() string {
	title := cardTitleStyle.Render("Team load per " + trendUnit(m.data.Period))
	graph := asciigraph.Plot(m.data.Load.Series,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func trendUnit(p analysis.Period) string {
	switch p {
	case analysis.PeriodWeek:
		return "week"
	case analysis.PeriodMonth:
		return "month"
	default:
		return "day"
	}
}

func (m DashboardModel) renderPlayers() string {
	title := cardTitleStyle.Render("Players")
	players := m.data.Players
	if len(players) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No players in period"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-18s %5s %5s %5s %5s %5s %6s %5s %8s %5s",
		"Athlete", "Rec", "Ener", "Sleep", "Strs", "Pain", "Well", "RPE", "Load", "Days"))
	rows := []string{header}
	for _, p := range players {
		row := fmt.Sprintf("%-18s %5s %5s %5s %5s %5s %6s %5s %8s %2d/%-2d",
			truncateName(displayName(p.AthleteID, p.AthleteName), 18),
			formatOpt(p.Recovery, "%.1f"),
			formatOpt(p.Energy, "%.1f"),
			formatOpt(p.Sleep, "%.1f"),
			formatOpt(p.Stress, "%.1f"),
			formatOpt(p.Pain, "%.1f"),
			formatOpt(p.Composite(), "%.1f"),
			formatOpt(p.MeanRPE, "%.1f"),
			humanize.Comma(int64(p.TotalLoad)),
			p.Records, p.PeriodDays,
		)
		if p.AtRisk {
			rows = append(rows, errorStyle.Inherit(tableRowStyle).Render(row))
		} else {
			rows = append(rows, tableRowStyle.Render(row))
		}
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (m DashboardModel) renderPending() string {
	p := m.data.Pending
	lines := []string{cardTitleStyle.Render("Pending today")}
	lines = append(lines, "Check-in:  "+rosterNames(p.CheckIn))
	lines = append(lines, "Check-out: "+rosterNames(p.CheckOut))
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func rosterNames(entries []analysis.RosterEntry) string {
	if len(entries) == 0 {
		return successStyle.Render("none")
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = displayName(e.AthleteID, e.AthleteName)
	}
	return warningStyle.Render(strings.Join(names, ", "))
}

func displayName(id, name string) string {
	if name == "" {
		return id
	}
	return name
}

func formatLoad(v *float64) string {
	if v == nil {
		return "-"
	}
	return humanize.Comma(int64(*v))
}

// withReading appends a metric's reading, e.g. "7.5 high"
func withReading(value, reading string) string {
	if reading == "" || value == "-" {
		return value
	}
	return value + " " + mutedStyle.Render(reading)
}
