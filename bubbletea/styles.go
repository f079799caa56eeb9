package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/enciclo/control"
	lg "github.com/enciclo/control/lipgloss"
)

// Styles extends the shared render styles with the screen chrome.
type Styles struct {
	lg.Styles
	Title  lipgloss.Style
	Prompt lipgloss.Style
	Modal  lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t control.Theme) Styles {
	base := lg.NewStyles(t)
	return Styles{
		Styles: base,
		Title:  base.Header.Padding(0, 1),
		Prompt: base.Accent,
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ansiColor(t.Error)).
			Padding(1, 3),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
