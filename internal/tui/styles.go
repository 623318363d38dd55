package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"squadload/internal/analysis"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#2563EB") // Blue
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(18)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	trendUpStyle   = lipgloss.NewStyle().Foreground(secondaryColor)
	trendDownStyle = lipgloss.NewStyle().Foreground(errorColor)
	trendFlatStyle = lipgloss.NewStyle().Foreground(mutedColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(primaryColor).
				Foreground(textColor).
				Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	successStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	progressFullStyle  = lipgloss.NewStyle().Foreground(errorColor)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// RenderMetric renders a metric with label, value, and optional trend.
// A trend starting with '+' is drawn as up, '-' as down.
func RenderMetric(label, value, trend string) string {
	trendStyle := trendFlatStyle
	if len(trend) > 0 {
		switch trend[0] {
		case '+':
			trendStyle = trendUpStyle
		case '-':
			trendStyle = trendDownStyle
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
		trendStyle.Render(" "+trend),
	)
}

// RenderProgressBar renders an ASCII bar, percent in [0,1]
func RenderProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return progressFullStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

func icsStyle(c analysis.ICSClass) lipgloss.Style {
	switch c {
	case analysis.ICSRed:
		return errorStyle
	case analysis.ICSYellow:
		return warningStyle
	case analysis.ICSGreen:
		return successStyle
	default:
		return mutedStyle
	}
}

func bandStyle(b analysis.ACWRBand) lipgloss.Style {
	switch b {
	case analysis.BandDanger:
		return errorStyle
	case analysis.BandElevated:
		return warningStyle
	case analysis.BandSweetSpot:
		return successStyle
	default:
		return mutedStyle
	}
}

func levelStyle(l analysis.Level) lipgloss.Style {
	switch l {
	case analysis.LevelHigh:
		return errorStyle
	case analysis.LevelModerate:
		return warningStyle
	case analysis.LevelLow:
		return successStyle
	default:
		return mutedStyle
	}
}

// riskStyle colors a 0-1 combined risk
func riskStyle(risk float64) lipgloss.Style {
	switch {
	case risk >= 0.7:
		return errorStyle
	case risk >= 0.5:
		return warningStyle
	default:
		return successStyle
	}
}

// formatOpt renders an undefined value as "-"
func formatOpt(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// formatDelta renders a percent change with an explicit sign
func formatDelta(delta float64) string {
	if delta == 0 {
		return "="
	}
	return fmt.Sprintf("%+.1f%%", delta)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
