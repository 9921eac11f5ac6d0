package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/CortexSim/internal/trading"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	headerCell = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// ResultsDisplay renders a session summary for the terminal.
type ResultsDisplay struct {
	title string
}

func NewResultsDisplay(title string) *ResultsDisplay {
	return &ResultsDisplay{title: title}
}

func (d *ResultsDisplay) Render(sum *trading.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.title))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(d.market(sum)))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(d.groups(sum)))
	b.WriteString("\n")
	return b.String()
}

func (d *ResultsDisplay) market(sum *trading.Summary) string {
	rows := [][2]string{
		{"Steps", fmt.Sprintf("%d", sum.Steps)},
		{"Final price", fmt.Sprintf("%.2f", sum.FinalPrice)},
		{"Mean return", fmt.Sprintf("%.6f", sum.MeanReturn)},
		{"Return s.d.", fmt.Sprintf("%.6f", sum.SdReturn)},
		{"Volume", fmt.Sprintf("%.2f", sum.Volume)},
		{"Skipped orders", fmt.Sprintf("%d", sum.Skipped)},
		{"Capped steps", fmt.Sprintf("%d", sum.CappedSteps)},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-15s", r[0])), r[1]))
	}
	return strings.Join(lines, "\n")
}

func (d *ResultsDisplay) groups(sum *trading.Summary) string {
	header := fmt.Sprintf("%-18s %7s %7s %14s %12s", "Strategy", "Agents", "Halted", "Mean wealth", "Mean shares")
	lines := []string{headerCell.Render(header)}
	for _, g := range sum.Groups {
		lines = append(lines, fmt.Sprintf("%-18s %7d %7d %14.2f %12.2f",
			g.Strategy, g.Agents, g.Halted, g.MeanWealth, g.MeanShares))
	}
	return strings.Join(lines, "\n")
}
