package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenOnce exposes the notice listener for testing.
func ListenOnce(n *Notices) tea.Cmd {
	return n.listen(context.Background())
}
