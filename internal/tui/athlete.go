package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"squadload/internal/analysis"
	"squadload/internal/service"
)

// AthleteModel shows one athlete's ACWR history, windows and recent records
type AthleteModel struct {
	queryService *service.QueryService
	athleteID    string
	weight       float64
	report       *service.AthleteReport
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewAthleteModel creates a new athlete load model scored with ACWR weight w
func NewAthleteModel(qs *service.QueryService, athleteID string, w float64, width, height int) AthleteModel {
	m := AthleteModel{
		queryService: qs,
		athleteID:    athleteID,
		weight:       w,
		loading:      true,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}
	return m
}

// Init initializes the athlete screen
func (m AthleteModel) Init() tea.Cmd {
	return m.loadReport
}

type athleteReportMsg struct {
	report *service.AthleteReport
	err    error
}

func (m AthleteModel) loadReport() tea.Msg {
	w := m.weight
	report, err := m.queryService.GetAthleteReport(context.Background(), m.athleteID, &w, time.Time{})
	return athleteReportMsg{report: report, err: err}
}

// Update handles messages
func (m AthleteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case athleteReportMsg:
		m.loading = false
		m.err = msg.err
		m.report = msg.report
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
		if m.report != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadReport
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the athlete screen
func (m AthleteModel) View() string {
	if m.loading {
		return "\n  Loading athlete..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to risk board  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m AthleteModel) renderContent() string {
	if m.report == nil {
		return "No data"
	}

	sections := []string{m.renderHeader(), m.renderRisk(), m.renderWindows(), m.renderInterpretation()}
	if chart := m.renderACWRChart(); chart != "" {
		sections = append(sections, chart)
	}
	sections = append(sections, m.renderRecent())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AthleteModel) renderHeader() string {
	r := m.report
	title := cardTitleStyle.Render(displayName(r.AthleteID, r.AthleteName))

	lastCheckIn := "never checked in"
	if !r.LastCheckIn.IsZero() {
		lastCheckIn = "last check-in " + humanize.RelTime(r.LastCheckIn, today(), "ago", "from now")
	}
	subtitle := mutedStyle.Render(fmt.Sprintf("%s  •  as of %s  •  %s",
		r.AthleteID, r.ReferenceDay.Format("Monday, January 2"), lastCheckIn))

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, "")
}

// today is midnight UTC, the same calendar the engine uses
func today() time.Time {
	return analysis.DayOf(time.Now())
}

func (m AthleteModel) renderRisk() string {
	s := m.report.Score
	lines := []string{sectionStyle.Render("Risk")}
	lines = append(lines,
		RenderMetric("Combined", riskStyle(s.CombinedRisk).Render(fmt.Sprintf("%.2f  (%.1f/10)", s.CombinedRisk, s.Score10())),
			fmt.Sprintf("weight %.1f", m.report.Weight)),
		RenderMetric("From ACWR", fmt.Sprintf("%.2f", s.RiskFromACWR), ""),
		RenderMetric("From wellness", fmt.Sprintf("%.2f", s.RiskFromICS), ""),
		RenderMetric("Latest ICS", icsStyle(s.ICS).Render(s.ICS.String()), icsDate(s.ICSDate)),
		RenderMetric("Injury risk", m.renderInjuryRisk(), "last 7 days, ACWR and energy"),
		"",
	)
	return strings.Join(lines, "\n")
}

// renderInjuryRisk shows the daily level for the trailing week, oldest first
func (m AthleteModel) renderInjuryRisk() string {
	series := m.report.Series
	if len(series) > 7 {
		series = series[len(series)-7:]
	}
	if len(series) == 0 {
		return mutedStyle.Render("-")
	}
	cells := make([]string, 0, len(series))
	for _, p := range series {
		label := "."
		switch p.InjuryRisk {
		case analysis.LevelHigh:
			label = "H"
		case analysis.LevelModerate:
			label = "M"
		case analysis.LevelLow:
			label = "L"
		}
		cells = append(cells, levelStyle(p.InjuryRisk).Render(label))
	}
	return strings.Join(cells, " ")
}

func (m AthleteModel) renderInterpretation() string {
	i := m.report.Interpretation
	reading := func(r analysis.Reading) string {
		return levelStyle(r.Level).Render(r.Text)
	}
	lines := []string{
		sectionStyle.Render("Reading"),
		RenderMetric("Weekly load", reading(i.WeeklyLoad), ""),
		RenderMetric("Acute fatigue", reading(i.AcuteFatigue), ""),
		RenderMetric("ACWR", reading(i.ACWR), ""),
		RenderMetric("Variability", reading(i.Monotony), ""),
		RenderMetric("Adaptation", reading(i.Adaptation), ""),
		"",
	}
	return strings.Join(lines, "\n")
}

func icsDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 02")
}

func (m AthleteModel) renderWindows() string {
	s := m.report.Score
	w, idx := s.Windows, s.Indices

	left := []string{
		sectionStyle.Render("Load windows (UA)"),
		RenderMetric("Day", humanize.Comma(int64(w.DayLoad)), ""),
		RenderMetric("Acute 7d sum", humanize.Comma(int64(w.Acute7dSum)), fmt.Sprintf("%d days", w.AcuteDays)),
		RenderMetric("Acute 7d /day", fmt.Sprintf("%.0f", w.Acute7dMeanPerDay), ""),
		RenderMetric("Chronic 28d mean", formatOpt(w.Chronic28dMean, "%.0f"), fmt.Sprintf("%d days", w.ChronicDays)),
		RenderMetric("Week sum", humanize.Comma(int64(w.WeeklySum)), ""),
		RenderMetric("Month sum", humanize.Comma(int64(w.MonthlySum)), ""),
	}
	right := []string{
		sectionStyle.Render("Indices"),
		RenderMetric("ACWR", bandStyle(idx.Band).Render(formatOpt(idx.ACWR, "%.2f")), idx.Band.String()),
		RenderMetric("Adaptation", formatOpt(idx.AdaptationIndex, "%.0f"), ""),
		RenderMetric("Monotony", formatOpt(idx.Monotony, "%.2f"), ""),
		RenderMetric("Variability", formatOpt(idx.Variability, "%.0f"), ""),
		"",
		mutedStyle.Render(idx.Band.Description()),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Join(left, "\n"), "    ", strings.Join(right, "\n")) + "\n"
}

func (m AthleteModel) renderACWRChart() string {
	var values []float64
	for _, p := range m.report.Series {
		if p.ACWR != nil {
			values = append(values, *p.ACWR)
		}
	}
	if len(values) < 3 {
		return ""
	}

	chart := asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Width(50),
		asciigraph.Precision(2),
		asciigraph.LowerBound(0),
	)
	title := sectionStyle.Render(fmt.Sprintf("ACWR, last %d days (danger above %.1f)", len(values), analysis.ACWRDangerLow))
	return lipgloss.JoinVertical(lipgloss.Left, title, chart, "")
}

func (m AthleteModel) renderRecent() string {
	lines := []string{sectionStyle.Render("Recent sessions")}
	if len(m.report.Recent) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("  none")), "\n")
	}

	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%-10s %-6s %-5s %-7s %4s %4s %6s  %s",
		"Date", "Shift", "MD", "ICS", "Min", "RPE", "UA", "Pain")))
	for _, r := range m.report.Recent {
		ics := analysis.ClassifyICS(r.Scores())
		pain := ""
		if len(r.PainBodyParts) > 0 {
			pain = strings.Join(r.PainBodyParts, ", ")
		}
		if r.InMenstrualPeriod {
			pain = strings.TrimSpace(pain + " (period)")
		}
		row := fmt.Sprintf("%-10s %-6s %-5s %s %4s %4s %6s  %s",
			r.Day.Format("Mon 01/02"),
			r.Shift.String(),
			analysis.MatchdayLabel(r.TacticalPeriodization),
			icsStyle(ics).Render(fmt.Sprintf("%-7s", ics.String())),
			formatInt(r.SessionMinutes),
			formatInt(r.RPE),
			formatOpt(r.InternalLoad(), "%.0f"),
			pain,
		)
		lines = append(lines, tableRowStyle.Render(row))
		if r.Note != "" {
			lines = append(lines, mutedStyle.Render("    "+truncateName(r.Note, 70)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
