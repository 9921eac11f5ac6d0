package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func printBanner() {
	fmt.Println(bannerStyle.Render("CortexSim - Heterogeneous Agent Market Simulator"))
}

func printOK(msg string) {
	fmt.Println(completedStyle.Render("✔ ") + msg)
}

func printWarn(msg string) {
	fmt.Println(warningStyle.Render("⚠ ") + msg)
}

func printFail(msg string) {
	fmt.Println(errorStyle.Render("✘ ") + msg)
}

// kv renders aligned key/value rows.
func kv(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, keyStyle.Render(r[0]+strings.Repeat(" ", width-len(r[0])))+"  "+r[1])
	}
	return strings.Join(lines, "\n")
}
