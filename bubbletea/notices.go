package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/enciclo/control"
)

// Interface compliance check.
var _ control.Notifier = (*Notices)(nil)

// Notices is a [control.Notifier] that hands notices to a running program.
// When the program falls behind, extra notices are dropped.
type Notices struct {
	ch chan control.Notice
}

// NewNotices returns a Notices with room for size pending notices.
func NewNotices(size int) *Notices {
	return &Notices{ch: make(chan control.Notice, max(size, 1))}
}

// Notify implements [control.Notifier].
func (n *Notices) Notify(notice control.Notice) {
	select {
	case n.ch <- notice:
	default:
	}
}

func (n *Notices) listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case notice := <-n.ch:
			return NoticeMsg{Notice: notice}
		case <-ctx.Done():
			return nil
		}
	}
}

func listenForExpiry(ctx context.Context, expired <-chan struct{}) tea.Cmd {
	if expired == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-expired:
			return ExpiredMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}
