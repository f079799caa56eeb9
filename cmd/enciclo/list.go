package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/enciclo/control"
	bt "github.com/enciclo/control/bubbletea"
	"github.com/enciclo/control/datatable"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/spf13/cobra"
)

// listing is a paged backend list and how to show it.
type listing[T any] struct {
	title   string
	load    datatable.LoadFunc[T]
	export  datatable.ExportFunc
	columns []lg.Column
}

// listFlags select the page, sort and filters of a list command.
type listFlags struct {
	page        int
	rows        int
	sort        string
	search      string
	filters     []string
	interactive bool
	export      bool
}

func (f *listFlags) register(cmd *cobra.Command, exportable bool) {
	fl := cmd.Flags()
	fl.IntVar(&f.page, "page", 1, "page to show, starting at 1")
	fl.IntVar(&f.rows, "rows", datatable.DefaultRows, "rows per page")
	fl.StringVar(&f.sort, "sort", "", "sort by `field[:asc|desc]`")
	fl.StringVarP(&f.search, "search", "q", "", "text to search in every column")
	fl.StringArrayVarP(&f.filters, "filter", "f", nil, "column filter `field[:mode]=value`, repeatable; mode defaults to contains")
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "browse the list in the terminal UI")
	if exportable {
		fl.BoolVar(&f.export, "export", false, "export the filtered list and print the file URL")
	}
}

// state builds the table state the flags describe.
func (f listFlags) state() (datatable.State, error) {
	if f.page < 1 {
		return datatable.State{}, fmt.Errorf("--page must be >= 1, got %d: %w", f.page, control.ErrValidation)
	}
	if f.rows <= 0 {
		return datatable.State{}, fmt.Errorf("--rows must be > 0, got %d: %w", f.rows, control.ErrValidation)
	}
	filters := control.DefaultFilters()
	if f.search != "" {
		filters["global"] = control.Match(control.MatchContains, f.search)
	}
	for _, spec := range f.filters {
		field, filter, err := parseFilter(spec)
		if err != nil {
			return datatable.State{}, err
		}
		filters[field] = filter
	}

	s := datatable.State{
		First:         (f.page - 1) * f.rows,
		Rows:          f.rows,
		Page:          f.page - 1,
		MultiSortMeta: []datatable.SortMeta{},
		Filters:       filters,
	}
	if f.sort != "" {
		m, err := parseSort(f.sort)
		if err != nil {
			return datatable.State{}, err
		}
		s.MultiSortMeta = []datatable.SortMeta{m}
		s.SortField, s.SortOrder = m.Field, m.Order
	}
	return s, nil
}

// parseSort reads "field", "field:asc" or "field:desc".
func parseSort(spec string) (datatable.SortMeta, error) {
	field, dir, _ := strings.Cut(spec, ":")
	if field == "" {
		return datatable.SortMeta{}, fmt.Errorf("sort %q: missing field: %w", spec, control.ErrValidation)
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		return datatable.SortMeta{Field: field, Order: 1}, nil
	case "desc":
		return datatable.SortMeta{Field: field, Order: -1}, nil
	}
	return datatable.SortMeta{}, fmt.Errorf("sort %q: direction must be asc or desc: %w", spec, control.ErrValidation)
}

// parseFilter reads "field=value" or "field:mode=value". The in mode takes
// a comma-separated list.
func parseFilter(spec string) (string, control.Filter, error) {
	key, value, ok := strings.Cut(spec, "=")
	if !ok || key == "" || value == "" {
		return "", control.Filter{}, fmt.Errorf("filter %q: want field[:mode]=value: %w", spec, control.ErrValidation)
	}
	field, mode, _ := strings.Cut(key, ":")
	if mode == "" {
		mode = control.MatchContains
	}
	if mode == control.MatchIn {
		var values []any
		for _, v := range strings.Split(value, ",") {
			values = append(values, strings.TrimSpace(v))
		}
		return field, control.Match(mode, values), nil
	}
	return field, control.Match(mode, value), nil
}

// runList prints one page of l, or opens it in the terminal UI.
func runList[T any](cmd *cobra.Command, a *app, l listing[T], f listFlags) error {
	s, err := f.state()
	if err != nil {
		return err
	}
	if f.interactive {
		return browse(cmd, a, l, s.Rows, s.Filters, 0)
	}

	ctx := cmd.Context()
	table := datatable.New[T](l.load, l.export, a.guard,
		datatable.WithRows(s.Rows),
		datatable.WithFilters(s.Filters),
	)
	if !table.OnPage(ctx, s) {
		return a.failed()
	}
	out, err := lg.Table(l.columns, table.Rows(), a.styles)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, out)
	fmt.Fprintln(w, lg.Pager(table.State(), table.Total(), a.styles))

	if f.export {
		url, ok := table.Export(ctx)
		if !ok {
			return a.failed()
		}
		fmt.Fprintln(w, url)
	}
	return nil
}

// browse runs the list screen over l until the user quits. The poller
// re-validates the session meanwhile; a revoked or expired session blocks
// the screen and ends the command with control.ErrNotLoggedIn.
func browse[T any](cmd *cobra.Command, a *app, l listing[T], rows int, filters map[string]control.Filter, refresh time.Duration) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	notices := bt.NewNotices(16)
	expiry := a.watchExpiry(ctx)
	guard := control.Guard{Session: a.session, Notifier: notices, Navigator: expiry}
	table := datatable.New[T](l.load, l.export, guard,
		datatable.WithRows(rows),
		datatable.WithFilters(filters),
	)

	a.poller.Start(ctx, a.cfg.GetCheckInterval())
	defer a.poller.Stop()

	m := bt.NewList(ctx, l.title, table, l.columns,
		bt.WithNotices(notices),
		bt.WithExpiry(expiry.ch),
		bt.WithRefresh(refresh),
		bt.WithTheme(a.theme),
	)
	final, err := bt.Run(ctx, m)
	if err != nil {
		return err
	}
	if lm, ok := final.(bt.ListModel[T]); ok && lm.Expired() {
		return a.expired(cmd, lm.LoginRequested())
	}
	return nil
}

// expiryWatch funnels poller expiry and revoked calls into one channel a
// screen can watch. It is the screen's login navigator.
type expiryWatch struct {
	ch chan struct{}
}

func (w expiryWatch) ToLogin() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (a *app) watchExpiry(ctx context.Context) expiryWatch {
	w := expiryWatch{ch: make(chan struct{}, 1)}
	go func() {
		select {
		case <-ctx.Done():
		case <-a.poller.Expired():
			w.ToLogin()
		}
	}()
	return w
}

// expired ends a screen that saw the session expire. When the user asked
// to log in again the secret is read from standard input.
func (a *app) expired(cmd *cobra.Command, login bool) error {
	if !login {
		return fmt.Errorf("%w: %s", control.ErrNotLoggedIn, bt.ExpiredTitle)
	}
	relogin := newLoginCmd(a)
	relogin.SetIn(cmd.InOrStdin())
	relogin.SetOut(cmd.OutOrStdout())
	relogin.SetErr(cmd.ErrOrStderr())
	relogin.SetContext(cmd.Context())
	return relogin.RunE(relogin, nil)
}
