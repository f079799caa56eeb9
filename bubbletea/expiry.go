package bubbletea

import (
	"github.com/charmbracelet/lipgloss"
)

// ExpiredTitle and ExpiredDetail are shown in the expiry modal.
const (
	ExpiredTitle  = "Session expired"
	ExpiredDetail = "Your session is no longer valid. Press Enter to log in again, or q to quit."
)

// watch tracks the session state shared by every screen.
type watch struct {
	expired bool
	login   bool
}

// modal renders the expiry dialog centered in a width x height area.
func (w watch) modal(styles Styles, width, height int) string {
	body := styles.Error.Render(ExpiredTitle) + "\n\n" + lipgloss.NewStyle().Width(max(min(width-10, 50), 10)).Render(ExpiredDetail)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.Modal.Render(body))
}
