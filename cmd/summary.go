package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xkilldash9x/ytbrief/internal/pipeline"
)

var (
	summaryTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a5b4fc"))
	summaryLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")).Width(14)
	summaryBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6366f1")).
			Padding(0, 1)
)

// printSummary writes the end-of-run table.
func printSummary(w io.Writer, title string, sum *pipeline.Summary) error {
	notebookState := "skipped"
	if sum.Analyzed {
		notebookState = fmt.Sprintf("done (%d chars)", sum.AnalysisChars)
	}

	rows := [][2]string{
		{"Elapsed", fmt.Sprintf("%.1fs", sum.Elapsed.Seconds())},
		{"Videos", fmt.Sprintf("%d", sum.Collected)},
		{"Transcripts", fmt.Sprintf("%d", sum.Transcribed)},
		{"NotebookLM", notebookState},
		{"Output", sum.OutputDir},
	}
	if sum.ReportPath != "" {
		rows = append(rows, [2]string{"Report", filepath.Base(sum.ReportPath)})
	}
	if sum.InfographicPath != "" {
		rows = append(rows, [2]string{"Infographic", filepath.Base(sum.InfographicPath)})
	}
	if sum.ImageName != "" {
		rows = append(rows, [2]string{"Image prompt", sum.ImageName})
	}

	lines := []string{summaryTitle.Render("✅ " + title)}
	for _, r := range rows {
		lines = append(lines, summaryLabel.Render(r[0])+r[1])
	}
	_, err := fmt.Fprintln(w, summaryBox.Render(strings.Join(lines, "\n")))
	return err
}
