package lipgloss

import (
	"fmt"
	"io"
	"sync"

	"github.com/enciclo/control"
)

// Interface compliance check.
var _ control.Notifier = (*Printer)(nil)

var marks = map[control.Severity]string{
	control.SeverityError:   "✗",
	control.SeveritySuccess: "✓",
	control.SeverityWarn:    "!",
	control.SeverityInfo:    "•",
}

// Notice formats n as a single line.
func Notice(n control.Notice, styles Styles) string {
	mark, ok := marks[n.Severity]
	if !ok {
		mark = marks[control.SeverityInfo]
	}
	head := styles.Severity(n.Severity).Render(mark + " " + n.Summary)
	if n.Detail == "" {
		return head
	}
	return head + ": " + n.Detail
}

// Printer writes each notice to W on its own line.
type Printer struct {
	W      io.Writer
	Styles Styles

	mu sync.Mutex
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, styles Styles) *Printer {
	return &Printer{W: w, Styles: styles}
}

// Notify implements [control.Notifier].
func (p *Printer) Notify(n control.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.W, Notice(n, p.Styles))
}

// Status describes the session in one line.
func Status(s *control.Session, styles Styles) string {
	if s.Authenticated() {
		return styles.Success.Render("● signed in")
	}
	line := styles.Muted.Render("○ signed out")
	if msg := s.LastError(); msg != "" {
		line += ": " + styles.Error.Render(msg)
	}
	return line
}
