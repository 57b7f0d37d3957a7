// Package output renders collected diagnostics for the terminal.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/wzreports/zeugnis/internal/diag"
)

// ConsoleFormatter formats diagnostics for console display.
type ConsoleFormatter struct {
	w        io.Writer
	quiet    bool
	verbose  bool
	colorize bool
}

// NewConsoleFormatter creates a ConsoleFormatter writing to w.
func NewConsoleFormatter(w io.Writer, quiet, verbose bool) *ConsoleFormatter {
	return &ConsoleFormatter{w: w, quiet: quiet, verbose: verbose, colorize: true}
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))  // gray
)

// Format prints the collected diagnostics: errors and warnings always,
// informational events unless quiet, pupil/subject context in verbose
// mode.
func (f *ConsoleFormatter) Format(rep *diag.Report) error {
	for _, ev := range rep.Events() {
		var status string
		var style lipgloss.Style
		switch ev.Severity {
		case diag.SeverityError:
			status, style = "✗", errorStyle
		case diag.SeverityWarning:
			status, style = "!", warnStyle
		default:
			if f.quiet {
				continue
			}
			status, style = "✓", infoStyle
		}
		if !f.colorize {
			style = lipgloss.NewStyle()
		}
		if _, err := fmt.Fprintf(f.w, "%s %s\n", style.Render(status), ev.Message); err != nil {
			return err
		}
		if f.verbose && (ev.Pupil != "" || ev.Subject != "") {
			ctx := ev.Pupil
			if ev.Subject != "" {
				if ctx != "" {
					ctx += " / "
				}
				ctx += ev.Subject
			}
			if _, err := fmt.Fprintf(f.w, "  %s\n", dimStyle.Render(ctx)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary prints the error/warning counts unless quiet.
func (f *ConsoleFormatter) Summary(rep *diag.Report) {
	if f.quiet {
		return
	}
	var errs, warns int
	for _, ev := range rep.Events() {
		switch ev.Severity {
		case diag.SeverityError:
			errs++
		case diag.SeverityWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		fmt.Fprintln(f.w, infoStyle.Render("✓")+" keine Probleme")
		return
	}
	fmt.Fprintf(f.w, "%d Fehler, %d Warnungen\n", errs, warns)
}
