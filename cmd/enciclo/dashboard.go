package main

import (
	"context"
	"fmt"

	"github.com/enciclo/control"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/enciclo/control/service"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// summary is one line of the dashboard.
type summary struct {
	Metric string `json:"metric"`
	Total  int    `json:"total"`
}

// counter fetches the total of one list.
type counter struct {
	metric string
	count  func(ctx context.Context) (int, error)
}

// totalOf asks load for a one-row page and returns the list total.
func totalOf[T any](a *app, load func(context.Context, control.Query) control.Response[service.List[T]]) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		v, err := check(a, load(ctx, control.Query{Page: 1, Items: 1, Filter: control.DefaultFilters()}))
		return v.Total, err
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the headline totals",
		Long:  `Fetch the headline totals concurrently and show them in one table.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.services
			counters := []counter{
				{"Users", totalOf(a, s.Users.List)},
				{"Active sessions", totalOf(a, s.Stats.ActiveSessions)},
				{"Chats", totalOf(a, s.Stats.Chats)},
				{"Documents", totalOf(a, s.Repository.List)},
				{"Processes", func(ctx context.Context) (int, error) {
					v, err := check(a, s.Process.List(ctx))
					return len(v.List), err
				}},
			}

			rows := make([]summary, len(counters))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, c := range counters {
				g.Go(func() error {
					n, err := c.count(ctx)
					if err != nil {
						return fmt.Errorf("%s: %w", c.metric, err)
					}
					rows[i] = summary{Metric: c.metric, Total: n}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out, err := lg.Table([]lg.Column{
				{Title: "Metric", Field: "metric", Width: 20},
				{Title: "Total", Field: "total", Width: 10, Right: true},
			}, rows, a.styles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
