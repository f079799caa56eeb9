// Package lipgloss renders list pages, notices and session status for the
// terminal using lipgloss for styling.
package lipgloss

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/enciclo/control"
)

// Styles maps a Theme to lipgloss styles.
type Styles struct {
	Header  lipgloss.Style
	Border  lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Info    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t control.Theme) Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Foreground(ansiColor(t.Header)).Bold(true),
		Border:  lipgloss.NewStyle().Foreground(ansiColor(t.Border)),
		Muted:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ansiColor(t.Color(control.SeverityError))).Bold(true),
		Success: lipgloss.NewStyle().Foreground(ansiColor(t.Color(control.SeveritySuccess))),
		Warn:    lipgloss.NewStyle().Foreground(ansiColor(t.Color(control.SeverityWarn))),
		Info:    lipgloss.NewStyle().Foreground(ansiColor(t.Color(control.SeverityInfo))),
	}
}

// Severity returns the style for a notice severity.
func (s Styles) Severity(sev control.Severity) lipgloss.Style {
	switch sev {
	case control.SeverityError:
		return s.Error
	case control.SeveritySuccess:
		return s.Success
	case control.SeverityWarn:
		return s.Warn
	}
	return s.Info
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
