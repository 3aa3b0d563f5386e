package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/cellbench/internal/evaluation"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("86")  // Cyan
	colorSecondary = lipgloss.Color("240") // Gray
	colorSuccess   = lipgloss.Color("82")  // Green
	colorDanger    = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("245") // Light gray
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorSecondary)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	bestRowStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	failedRowStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	noteStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// Render writes the results table for a terminal. The best model by F1
// macro is highlighted and failed models are shown in red with their error.
func Render(w io.Writer, title string, table evaluation.Table) error {
	var lines []string
	lines = append(lines, titleStyle.Render(title))

	header := fmt.Sprintf("  %-22s │ %8s │ %8s │ %8s │ %10s",
		"Model", "Accuracy", "F1 macro", "F1 wtd", "Train (s)")
	lines = append(lines, tableHeaderStyle.Render(header))

	best, hasBest := table.Best()
	for _, r := range table {
		name := r.Name
		if len(name) > 22 {
			name = name[:19] + "..."
		}
		row := fmt.Sprintf("  %-22s │ %8s │ %8s │ %8s │ %10s",
			name, score(r.Accuracy), score(r.F1Macro), score(r.F1Weighted), seconds(r.DurationSeconds))

		switch {
		case r.Failed():
			lines = append(lines, failedRowStyle.Render(row))
			if r.Error != "" {
				lines = append(lines, noteStyle.Render("    "+r.Error))
			}
		case hasBest && r.Name == best.Name:
			lines = append(lines, bestRowStyle.Render(row))
		default:
			lines = append(lines, tableCellStyle.Render(row))
		}
	}
	if len(table) == 0 {
		lines = append(lines, noteStyle.Render("  (no models evaluated)"))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func score(v float64) string {
	if math.IsNaN(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.4f", v)
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.3f", v)
}
