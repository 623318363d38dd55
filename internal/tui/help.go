package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"squadload/internal/analysis"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		renderKeySection("Navigation", []keyHelp{
			{"1", "Group dashboard"},
			{"2", "Risk board"},
			{"?", "Help (this screen)"},
			{"esc", "Back / close help"},
			{"q", "Quit"},
		}),
		renderKeySection("Dashboard", []keyHelp{
			{"p", "Next period"},
			{"t / l / w / m", "Today, last day, week, month"},
			{"r", "Refresh"},
		}),
		renderKeySection("Risk Board", []keyHelp{
			{"j / down", "Move cursor down"},
			{"k / up", "Move cursor up"},
			{"+ / -", "Shift weight between ACWR and wellness"},
			{"enter", "Athlete load detail"},
		}),
		renderGlossary(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func renderKeySection(title string, keys []keyHelp) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func renderGlossary() string {
	lines := []string{"", sectionStyle.Render("Metrics Explained"), ""}

	terms := []struct {
		name string
		desc string
	}{
		{"UA (internal load)", "Session minutes x RPE (1-10)."},
		{"ACWR", fmt.Sprintf("7-day load per day / 28-day mean. Sweet spot %.1f-%.1f, danger above %.1f.",
			analysis.ACWRSweetSpotLow, analysis.ACWRElevatedLow, analysis.ACWRDangerLow)},
		{"Adaptation", "Chronic mean minus acute mean per day. Negative = loading faster than adapted."},
		{"Monotony", "Weekly mean / weekly stddev. High values mean little day-to-day variation."},
		{"ICS", "Check-in traffic light from recovery, energy, sleep, stress and pain (1-2 green, 3 yellow, 4-5 red)."},
		{"Risk", "Weighted blend of ACWR risk and ICS risk, 0-1. A triage aid, not a diagnosis."},
		{"Wellness index", "0-10 from the latest check-in; higher is worse."},
	}
	for _, t := range terms {
		lines = append(lines, "  "+helpKeyStyle.Render(t.name))
		lines = append(lines, "  "+mutedStyle.Render(t.desc))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
