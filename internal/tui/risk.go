package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"squadload/internal/analysis"
	"squadload/internal/service"
)

const weightStep = 0.1

// RiskModel is the team risk board, highest combined risk first
type RiskModel struct {
	queryService *service.QueryService
	board        *service.RiskBoard
	weight       float64
	cursor       int
	loading      bool
	err          error
}

// NewRiskModel creates a risk board starting at the configured weight
func NewRiskModel(qs *service.QueryService) RiskModel {
	return RiskModel{
		queryService: qs,
		weight:       qs.Weight(),
		loading:      true,
	}
}

// Init initializes the risk board
func (m RiskModel) Init() tea.Cmd {
	return m.loadBoard
}

type riskBoardMsg struct {
	board *service.RiskBoard
	err   error
}

func (m RiskModel) loadBoard() tea.Msg {
	w := m.weight
	board, err := m.queryService.GetRiskBoard(context.Background(), &w, time.Time{})
	return riskBoardMsg{board: board, err: err}
}

// OpenAthleteMsg asks the app to show one athlete's load screen, scored
// with the weight the board was using
type OpenAthleteMsg struct {
	AthleteID string
	Weight    float64
}

// Update handles messages
func (m RiskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case riskBoardMsg:
		m.loading = false
		m.err = msg.err
		m.board = msg.board
		if m.board != nil && m.cursor >= len(m.board.Scores) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.board != nil && m.cursor < len(m.board.Scores)-1 {
				m.cursor++
			}
		case "+", "=":
			m.weight = roundWeight(math.Min(1, m.weight+weightStep))
			m.loading = true
			return m, m.loadBoard
		case "-":
			m.weight = roundWeight(math.Max(0, m.weight-weightStep))
			m.loading = true
			return m, m.loadBoard
		case "r":
			m.loading = true
			return m, m.loadBoard
		case "enter":
			if m.board != nil && m.cursor < len(m.board.Scores) {
				id, w := m.board.Scores[m.cursor].AthleteID, m.weight
				return m, func() tea.Msg {
					return OpenAthleteMsg{AthleteID: id, Weight: w}
				}
			}
		}
	}
	return m, nil
}

func roundWeight(w float64) float64 {
	return math.Round(w*10) / 10
}

// View renders the risk board
func (m RiskModel) View() string {
	if m.loading {
		return "\n  Scoring squad..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.board == nil || len(m.board.Scores) == 0 {
		return "\n  No athletes yet. Import records or run 'squadload seed'."
	}

	b := m.board
	var sections []string

	title := cardTitleStyle.Render(fmt.Sprintf("Risk board  %s", b.ReferenceDay.Format("Mon Jan 02")))
	sections = append(sections, title)
	sections = append(sections, m.renderSummary())

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-18s %6s  %-10s %8s %8s  %-7s %6s  %5s",
		"Athlete", "ACWR", "Band", "Acute", "Chronic", "ICS", "Risk", "/10"))
	sections = append(sections, header)

	for i, s := range b.Scores {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%-18s %6s  %-10s %8.0f %8s  %-7s %6.2f  %5.1f",
			cursor,
			truncateName(displayName(s.AthleteID, s.AthleteName), 18),
			formatOpt(s.ACWR(), "%.2f"),
			s.Indices.Band.String(),
			s.Windows.Acute7dSum,
			formatOpt(s.Windows.Chronic28dMean, "%.0f"),
			s.ICS.String(),
			s.CombinedRisk,
			s.Score10(),
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, riskStyle(s.CombinedRisk).Inherit(tableRowStyle).Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: athlete load  j/k: navigate  +/-: ACWR weight  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RiskModel) renderSummary() string {
	s := m.board.Summary
	danger := "-"
	if s.DangerPercent != nil {
		danger = fmt.Sprintf("%d (%.0f%%)", s.DangerCount, *s.DangerPercent)
	}
	mean := "-"
	if s.MeanRisk != nil {
		mean = riskStyle(*s.MeanRisk).Render(fmt.Sprintf("%.2f", *s.MeanRisk))
	}

	line := fmt.Sprintf("Weight %.1f ACWR / %.1f wellness   Athletes %d   Mean risk %s   ACWR > %.1f: %s   RED check-ins %d",
		m.board.Weight, 1-m.board.Weight, s.Athletes, mean, analysis.ACWRDangerLow, danger, s.RedCount)
	return mutedStyle.Render(line) + "\n"
}
