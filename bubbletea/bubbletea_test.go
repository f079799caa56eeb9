package bubbletea_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/enciclo/control"
	bt "github.com/enciclo/control/bubbletea"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/enciclo/control/service"
	"github.com/stretchr/testify/require"
)

type row struct {
	User  string `json:"user"`
	Pages int    `json:"pages"`
}

// book serves pages of rows the way the backend does.
type book struct {
	mu      sync.Mutex
	rows    []row
	queries []control.Query
	fail    string
}

func newBook(n int) *book {
	b := &book{}
	for i := range n {
		b.rows = append(b.rows, row{User: fmt.Sprintf("user%02d", i), Pages: i})
	}
	return b
}

func (b *book) load(_ context.Context, q control.Query) control.Response[service.List[row]] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, q)
	if b.fail != "" {
		f := false
		return control.Ok[service.List[row]]{Header: control.Reply{Success: &f, Message: b.fail}}
	}
	var matched []row
	for _, r := range b.rows {
		if g, ok := q.Filter["global"]; ok && g.Value != nil && !strings.Contains(r.User, fmt.Sprint(g.Value)) {
			continue
		}
		matched = append(matched, r)
	}
	if q.Order == "user desc" {
		sort.Slice(matched, func(i, j int) bool { return matched[i].User > matched[j].User })
	}
	start := min((q.Page-1)*q.Items, len(matched))
	end := min(start+q.Items, len(matched))
	ok := true
	return control.Ok[service.List[row]]{
		Data:   service.List[row]{List: matched[start:end], Total: len(matched)},
		Header: control.Reply{Success: &ok},
	}
}

func (b *book) export(_ context.Context, q control.Query) control.Response[service.Export] {
	ok := true
	return control.Ok[service.Export]{Data: service.Export{URL: "http://files.invalid/x.xlsx"}, Header: control.Reply{Success: &ok}}
}

func (b *book) last() control.Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[len(b.queries)-1]
}

var columns = []lg.Column{
	{Title: "User", Field: "user"},
	{Title: "Pages", Field: "pages", Right: true},
}

// exec runs cmd and returns the messages it produces, expanding batches.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, exec(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// send delivers msg and then every message its command produces, except
// spinner ticks.
func send[M tea.Model](t *testing.T, m M, msg tea.Msg) M {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(M)
	require.True(t, ok)
	for _, next := range exec(cmd) {
		switch next.(type) {
		case bt.PageLoadedMsg, bt.ExportedMsg, bt.AnswerMsg:
			model = send(t, model, next)
		}
	}
	return model
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
