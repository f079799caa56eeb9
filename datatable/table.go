package datatable

import (
	"context"
	"maps"
	"sync"

	"github.com/enciclo/control"
	"github.com/enciclo/control/service"
)

// LoadFunc fetches one page of rows.
type LoadFunc[T any] func(ctx context.Context, q control.Query) control.Response[service.List[T]]

// ExportFunc asks the backend to export the rows matching q.
type ExportFunc func(ctx context.Context, q control.Query) control.Response[service.Export]

// Option configures a [Table].
type Option func(*options)

type options struct {
	rows          int
	filters       map[string]control.Filter
	exportMessage string
}

// WithRows sets the initial page size.
func WithRows(n int) Option {
	return func(o *options) { o.rows = n }
}

// WithFilters replaces the initial filters.
func WithFilters(f map[string]control.Filter) Option {
	return func(o *options) { o.filters = f }
}

// WithExportMessage sets the notice shown while an export runs.
func WithExportMessage(msg string) Option {
	return func(o *options) { o.exportMessage = msg }
}

// Table is a lazily loaded list. Every response passes through the guard
// before it reaches Rows and Total.
//
// Loads are not serialized: when two overlap, whichever resolves last
// determines Rows and Total.
type Table[T any] struct {
	load   LoadFunc[T]
	export ExportFunc
	guard  control.Guard
	opts   options

	mu       sync.Mutex
	state    State
	filters  map[string]control.Filter
	rows     []T
	total    int
	inflight int
}

// New returns a table over load and export. export may be nil for views
// without an export action.
func New[T any](load LoadFunc[T], export ExportFunc, guard control.Guard, opts ...Option) *Table[T] {
	o := options{rows: DefaultRows, exportMessage: "Exporting data"}
	for _, fn := range opts {
		fn(&o)
	}
	t := &Table[T]{load: load, export: export, guard: guard, opts: o}
	t.filters = t.initialFilters()
	t.state.Reset(o.rows, t.filters)
	return t
}

func (t *Table[T]) initialFilters() map[string]control.Filter {
	if t.opts.filters != nil {
		return maps.Clone(t.opts.filters)
	}
	return control.DefaultFilters()
}

// Init resets filters and state and loads the first page.
func (t *Table[T]) Init(ctx context.Context) bool {
	t.mu.Lock()
	t.filters = t.initialFilters()
	t.state.Reset(t.opts.rows, t.filters)
	t.mu.Unlock()
	return t.Load(ctx)
}

// Load fetches the page described by the current state. It reports whether
// the guard accepted the response.
func (t *Table[T]) Load(ctx context.Context) bool {
	t.mu.Lock()
	t.inflight++
	q := t.state.Query()
	t.mu.Unlock()

	resp := t.load(ctx, q)
	ok := t.guard.Check(resp)

	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		v, _ := resp.Value()
		t.rows = v.List
		t.total = v.Total
	}
	t.inflight--
	return ok
}

// OnPage replaces the whole state with s and reloads.
func (t *Table[T]) OnPage(ctx context.Context, s State) bool {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	return t.Load(ctx)
}

// OnSort replaces the whole state with s and reloads.
func (t *Table[T]) OnSort(ctx context.Context, s State) bool {
	return t.OnPage(ctx, s)
}

// OnFilter replaces only the filters and reloads.
func (t *Table[T]) OnFilter(ctx context.Context, filters map[string]control.Filter) bool {
	t.mu.Lock()
	t.filters = filters
	t.state.Filters = filters
	t.mu.Unlock()
	return t.Load(ctx)
}

// ClearFilter restores the initial filters and reloads.
func (t *Table[T]) ClearFilter(ctx context.Context) bool {
	return t.OnFilter(ctx, t.initialFilters())
}

// Export runs the export for the current query. It announces the export,
// then reports the generated file URL or the backend's message. The URL is
// returned when the export succeeded.
func (t *Table[T]) Export(ctx context.Context) (string, bool) {
	if t.export == nil {
		return "", false
	}
	t.notify(control.SeverityInfo, "Export", t.opts.exportMessage)

	t.mu.Lock()
	q := t.state.Query()
	t.mu.Unlock()

	resp := t.export(ctx, q)
	if !t.guard.Check(resp) {
		return "", false
	}
	v, _ := resp.Value()
	reply := resp.Reply()
	if reply.Success == nil || !*reply.Success || v.URL == "" {
		t.notify(control.SeverityError, "Error", reply.Message)
		return "", false
	}
	t.notify(control.SeveritySuccess, "Export", "File generated "+v.URL)
	return v.URL, true
}

func (t *Table[T]) notify(sev control.Severity, summary, detail string) {
	if t.guard.Notifier != nil {
		t.guard.Notifier.Notify(control.Notice{Severity: sev, Summary: summary, Detail: detail})
	}
}

// State returns a copy of the current state.
func (t *Table[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Filters returns the filters the view currently shows.
func (t *Table[T]) Filters() map[string]control.Filter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters
}

// Rows returns the rows of the last accepted page.
func (t *Table[T]) Rows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows
}

// Total returns the total row count of the last accepted page.
func (t *Table[T]) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Loading reports whether a load is in progress.
func (t *Table[T]) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight > 0
}
