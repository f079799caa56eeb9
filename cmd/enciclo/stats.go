package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/enciclo/control"
	"github.com/enciclo/control/datatable"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/enciclo/control/service"
	"github.com/spf13/cobra"
)

var sessionColumns = []lg.Column{
	{Title: "User", Field: "user", Width: 20},
	{Title: "IP", Field: "ip", Width: 15},
	{Title: "Country", Field: "glc_country_name", Width: 16},
	{Title: "City", Field: "glc_city", Width: 16},
	{Title: "Pages", Field: "pages", Width: 6, Right: true},
	{Title: "From", Field: "min", Width: 19},
	{Title: "To", Field: "max", Width: 19},
}

// statsList names one statistics list. Loads and exports are method
// expressions of service.Stats.
type statsList[T any] struct {
	use, short, title string
	load              func(*service.Stats, context.Context, control.Query) control.Response[service.List[T]]
	export            func(*service.Stats, context.Context, control.Query) control.Response[service.Export]
	columns           []lg.Column
}

func (l statsList[T]) command(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   l.use,
		Short: l.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, a, l.listing(a), f)
		},
	}
	f.register(cmd, l.export != nil)
	return cmd
}

func (l statsList[T]) listing(a *app) listing[T] {
	stats := a.services.Stats
	out := listing[T]{
		title:   l.title,
		columns: l.columns,
		load: func(ctx context.Context, q control.Query) control.Response[service.List[T]] {
			return l.load(stats, ctx, q)
		},
	}
	if l.export != nil {
		out.export = func(ctx context.Context, q control.Query) control.Response[service.Export] {
			return l.export(stats, ctx, q)
		}
	}
	return out
}

var activeSessions = statsList[service.SessionRow]{
	use:     "sessions",
	short:   "Active visitor sessions",
	title:   "Active sessions",
	load:    (*service.Stats).ActiveSessions,
	export:  (*service.Stats).ExportSessions,
	columns: sessionColumns,
}

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse and export usage statistics",
	}
	cmd.AddCommand(
		activeSessions.command(a),
		statsList[service.SessionRow]{
			use:     "last-sessions",
			short:   "Most recent visitor sessions",
			title:   "Last sessions",
			load:    (*service.Stats).LastSessions,
			columns: sessionColumns,
		}.command(a),
		statsList[json.RawMessage]{
			use:    "chats",
			short:  "Chat conversations",
			title:  "Chats",
			load:   (*service.Stats).Chats,
			export: (*service.Stats).ExportChats,
		}.command(a),
		statsList[json.RawMessage]{
			use:    "pages",
			short:  "Page visits",
			title:  "Pages",
			load:   (*service.Stats).Pages,
			export: (*service.Stats).ExportPages,
		}.command(a),
		statsList[json.RawMessage]{
			use:    "queries",
			short:  "Search queries",
			title:  "Queries",
			load:   (*service.Stats).Queries,
			export: (*service.Stats).ExportQueries,
		}.command(a),
		statsList[json.RawMessage]{
			use:    "prints",
			short:  "Printed pages",
			title:  "Prints",
			load:   (*service.Stats).Prints,
			export: (*service.Stats).ExportPrints,
		}.command(a),
		statsList[json.RawMessage]{
			use:   "users",
			short: "Activity per user",
			title: "User statistics",
			load:  (*service.Stats).UserStats,
		}.command(a),
	)
	return cmd
}

// DefaultWatchInterval is how often watch reloads the active sessions.
const DefaultWatchInterval = 30 * time.Second

func newWatchCmd(a *app) *cobra.Command {
	var (
		rows     int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the active sessions live",
		Long: `Open the active sessions in the terminal UI and reload them
periodically. The session is re-validated in the background; when the
backend expires it the screen is blocked until you quit or sign in again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return browse(cmd, a, activeSessions.listing(a), rows, control.DefaultFilters(), interval)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", datatable.DefaultRows, "rows per page")
	cmd.Flags().DurationVar(&interval, "interval", DefaultWatchInterval, "reload interval")
	return cmd
}
