// Package bubbletea provides the Bubble Tea screens of the console: a paged
// list browser and a chat against the RAG backend. Both watch the session
// and block on a modal once it expires.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/enciclo/control"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits and returns the final model. Cancelling ctx quits the program.
func Run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	return p.Run()
}

// PageLoadedMsg reports that a table operation finished.
type PageLoadedMsg struct {
	OK bool
}

// ExportedMsg reports the result of an export.
type ExportedMsg struct {
	URL string
	OK  bool
}

// NoticeMsg carries a notice raised by the guard or the table.
type NoticeMsg struct {
	Notice control.Notice
}

// ExpiredMsg signals that the session watcher saw the session expire.
type ExpiredMsg struct{}

// RefreshMsg asks a list screen to reload its current page.
type RefreshMsg struct{}

// AnswerMsg carries the answer to a chat question.
type AnswerMsg struct {
	Answer string
	Err    error
}
