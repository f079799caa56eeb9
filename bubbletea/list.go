package bubbletea

import (
	"context"
	"maps"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/enciclo/control"
	"github.com/enciclo/control/datatable"
	lg "github.com/enciclo/control/lipgloss"
)

// ListHelp is the key summary shown when nothing else needs the status line.
const ListHelp = "←/→ page · s sort · S reverse · / search · c clear · e export · r reload · q quit"

// ListModel browses a [datatable.Table] page by page.
type ListModel[T any] struct {
	// Viewport shows the rendered page. Exported for test access.
	Viewport viewport.Model
	// Search is the global filter input. Exported for test access.
	Search textinput.Model
	// Spinner animates while a page loads.
	Spinner spinner.Model

	ctx     context.Context
	title   string
	table   *datatable.Table[T]
	columns []lg.Column
	notices *Notices
	expiry  <-chan struct{}
	refresh time.Duration
	styles  Styles

	watch
	sortCol   int
	loading   bool
	searching bool
	notice    *control.Notice
	err       error
	width     int
	height    int
	ready     bool
}

// ListOption configures a [ListModel].
type ListOption func(*listOptions)

type listOptions struct {
	notices *Notices
	expired <-chan struct{}
	refresh time.Duration
	theme   control.Theme
}

// WithNotices shows the notices delivered to n. n should be the notifier of
// the table's guard.
func WithNotices(n *Notices) ListOption {
	return func(o *listOptions) { o.notices = n }
}

// WithExpiry watches ch, typically a poller's Expired channel.
func WithExpiry(ch <-chan struct{}) ListOption {
	return func(o *listOptions) { o.expired = ch }
}

// WithRefresh reloads the current page every d while the screen is idle.
func WithRefresh(d time.Duration) ListOption {
	return func(o *listOptions) { o.refresh = d }
}

// WithTheme sets the color theme.
func WithTheme(t control.Theme) ListOption {
	return func(o *listOptions) { o.theme = t }
}

// NewList creates a list screen over table showing columns.
func NewList[T any](ctx context.Context, title string, table *datatable.Table[T], columns []lg.Column, opts ...ListOption) ListModel[T] {
	o := listOptions{theme: control.DefaultTheme()}
	for _, fn := range opts {
		fn(&o)
	}
	search := textinput.New()
	search.Placeholder = "Search..."
	search.Prompt = "/ "
	search.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ListModel[T]{
		Search:  search,
		Spinner: sp,
		ctx:     ctx,
		title:   title,
		table:   table,
		columns: columns,
		notices: o.notices,
		expiry:  o.expired,
		refresh: o.refresh,
		styles:  NewStyles(o.theme),
		sortCol: -1,
		loading: true,
	}
}

// Loading reports whether a table operation is in flight.
func (m ListModel[T]) Loading() bool { return m.loading }

// Expired reports whether the session expired while the screen was open.
func (m ListModel[T]) Expired() bool { return m.expired }

// LoginRequested reports whether the user left the expiry modal asking to
// log in again.
func (m ListModel[T]) LoginRequested() bool { return m.login }

// Notice returns the last notice shown, if any.
func (m ListModel[T]) Notice() *control.Notice { return m.notice }

// Init implements tea.Model.
func (m ListModel[T]) Init() tea.Cmd {
	cmds := []tea.Cmd{m.Spinner.Tick, m.run(m.table.Init), listenForExpiry(m.ctx, m.expiry)}
	if m.notices != nil {
		cmds = append(cmds, m.notices.listen(m.ctx))
	}
	if m.refresh > 0 {
		cmds = append(cmds, m.tick())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m ListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case PageLoadedMsg:
		m.loading = false
		m.render()
		return m, nil

	case ExportedMsg:
		m.loading = false
		return m, nil

	case NoticeMsg:
		n := msg.Notice
		m.notice = &n
		if m.notices == nil {
			return m, nil
		}
		return m, m.notices.listen(m.ctx)

	case ExpiredMsg:
		m.expired = true
		return m, nil

	case RefreshMsg:
		if m.expired {
			return m, nil
		}
		if m.loading || m.searching {
			return m, m.tick()
		}
		next, cmd := m.start(m.table.Load)
		return next, tea.Batch(cmd, m.tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ListModel[T]) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.expired {
		return m.modal(m.styles, m.width, m.height)
	}

	var b strings.Builder
	title := m.styles.Title.Render(m.title)
	if m.loading {
		title += " " + m.Spinner.View()
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(lg.Pager(m.table.State(), m.table.Total(), m.styles.Styles))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	if m.searching {
		b.WriteString("\n")
		b.WriteString(m.Search.View())
	}
	return b.String()
}

func (m ListModel[T]) resize(msg tea.WindowSizeMsg) ListModel[T] {
	m.width, m.height = msg.Width, msg.Height
	// Title, pager, status and search lines.
	h := max(msg.Height-4, 1)
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, h)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = h
	}
	m.Search.Width = msg.Width - 2
	m.render()
	return m
}

func (m ListModel[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.expired {
		switch {
		case msg.Type == tea.KeyEnter:
			m.login = true
			return m, tea.Quit
		case msg.Type == tea.KeyEsc, msg.String() == "q":
			return m, tea.Quit
		}
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "right", "n":
		s := m.table.State()
		if s.First+s.Rows >= m.table.Total() {
			return m, nil
		}
		s.First += s.Rows
		return m.start(func(ctx context.Context) bool { return m.table.OnPage(ctx, s) })
	case "left", "p":
		s := m.table.State()
		if s.First == 0 {
			return m, nil
		}
		s.First = max(s.First-s.Rows, 0)
		return m.start(func(ctx context.Context) bool { return m.table.OnPage(ctx, s) })
	case "s", "S":
		if len(m.columns) == 0 {
			return m, nil
		}
		s := m.table.State()
		order := 1
		if msg.String() == "s" || m.sortCol < 0 {
			m.sortCol = (m.sortCol + 1) % len(m.columns)
		} else if len(s.MultiSortMeta) > 0 {
			order = -s.MultiSortMeta[0].Order
		}
		s.MultiSortMeta = []datatable.SortMeta{{Field: m.columns[m.sortCol].Field, Order: order}}
		s.SortField, s.SortOrder = m.columns[m.sortCol].Field, order
		return m.start(func(ctx context.Context) bool { return m.table.OnSort(ctx, s) })
	case "/":
		m.searching = true
		return m, m.Search.Focus()
	case "c":
		m.Search.SetValue("")
		return m.start(m.table.ClearFilter)
	case "r":
		return m.start(m.table.Load)
	case "e":
		m.loading = true
		table := m.table
		ctx := m.ctx
		return m, tea.Batch(m.Spinner.Tick, func() tea.Msg {
			url, ok := table.Export(ctx)
			return ExportedMsg{URL: url, OK: ok}
		})
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m ListModel[T]) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.Search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.Search.Blur()
		filters := maps.Clone(m.table.Filters())
		if filters == nil {
			filters = map[string]control.Filter{}
		}
		var value any
		if v := strings.TrimSpace(m.Search.Value()); v != "" {
			value = v
		}
		filters["global"] = control.Match(control.MatchContains, value)
		return m.start(func(ctx context.Context) bool { return m.table.OnFilter(ctx, filters) })
	}
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	return m, cmd
}

func (m ListModel[T]) start(op func(context.Context) bool) (tea.Model, tea.Cmd) {
	m.loading = true
	return m, tea.Batch(m.Spinner.Tick, m.run(op))
}

func (m ListModel[T]) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return RefreshMsg{} })
}

func (m ListModel[T]) run(op func(context.Context) bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return PageLoadedMsg{OK: op(ctx)}
	}
}

// render refreshes the viewport from the table's current page.
func (m *ListModel[T]) render() {
	if !m.ready {
		return
	}
	out, err := lg.Table(m.columns, m.table.Rows(), m.styles.Styles)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.Viewport.SetContent(out)
	m.Viewport.GotoTop()
}

func (m ListModel[T]) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("Error: " + m.err.Error())
	case m.notice != nil:
		return lg.Notice(*m.notice, m.styles.Styles)
	}
	return m.styles.Muted.Render(ListHelp)
}
