package logger

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Progress reports the start and outcome of a long running step.
func Progress(title string, fn func() error) error {
	w := Writer()
	fmt.Fprintf(w, "%s %s...\n", progressStyle.Render("›"), title)

	start := time.Now()
	err := fn()
	elapsed := durationStyle.Render(fmt.Sprintf("(%s)", time.Since(start).Round(time.Millisecond)))

	if err != nil {
		fmt.Fprintf(w, "%s %s %s\n", failureStyle.Render("✗"), title, elapsed)
		return err
	}
	fmt.Fprintf(w, "%s %s %s\n", successStyle.Render("✓"), title, elapsed)
	return nil
}
