package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/enciclo/control/fake"
	"github.com/enciclo/control/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFakeBackendCmd(a *app) *cobra.Command {
	var (
		addr     string
		username string
		secret   string
		rows     int
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fake-backend",
		Short: "Serve an in-memory backend for trying the console",
		Long: `Serve an in-memory backend seeded with sample users, sessions,
documents and processes. Point api.base_url (API_BASE_URL) at the printed
address and sign in with the given credentials.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{routeKey: routePublic},
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := fake.New(fake.WithLogger(a.logger), fake.WithSessionTTL(ttl))
			srv.AddUser(username, secret)
			if err := seed(srv, rows); err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			hs := &http.Server{Handler: srv.Router(), ReadHeaderTimeout: 10 * time.Second}
			fmt.Fprintf(cmd.OutOrStdout(), "fake backend listening on http://%s (user %q)\n", ln.Addr(), username)
			a.logger.Info("fake backend started", zap.String("addr", ln.Addr().String()))
			return serve(cmd.Context(), hs, ln)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	fl.StringVar(&username, "user", "admin", "accepted username")
	fl.StringVar(&secret, "secret", "admin", "accepted secret")
	fl.IntVar(&rows, "rows", 120, "rows seeded per list")
	fl.DurationVar(&ttl, "ttl", time.Hour, "session lifetime")
	return cmd
}

// serve runs hs on ln until ctx is done, then shuts it down.
func serve(ctx context.Context, hs *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var (
	countries = []string{"España", "México", "Argentina", "Chile", "Colombia"}
	statuses  = []string{"indexed", "pending", "error"}
)

// seed fills srv with n sample rows per list.
func seed(srv *fake.Server, n int) error {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var users, sessions, docs, chats []any
	for i := range n {
		users = append(users, service.User{
			ID:             i + 1,
			User:           fmt.Sprintf("user%03d", i),
			Name:           fmt.Sprintf("User %03d", i),
			Email:          fmt.Sprintf("user%03d@enciclo.invalid", i),
			Enabled:        i%7 != 0,
			Admin:          i%25 == 0,
			LastConnection: base.Add(time.Duration(i) * time.Hour).Format(time.DateTime),
		})
		start := base.Add(time.Duration(i) * 13 * time.Minute)
		sessions = append(sessions, service.SessionRow{
			User:    fmt.Sprintf("user%03d", i%40),
			IP:      fmt.Sprintf("10.0.%d.%d", i/250, i%250+1),
			Country: countries[i%len(countries)],
			Pages:   i%17 + 1,
			Min:     start.Format(time.DateTime),
			Max:     start.Add(time.Duration(i%30+1) * time.Minute).Format(time.DateTime),
			TS:      start.Unix(),
		})
		docs = append(docs, service.Document{
			ID:     fmt.Sprintf("doc-%04d", i),
			Name:   fmt.Sprintf("document-%03d.pdf", i),
			Title:  fmt.Sprintf("Document %d", i),
			Status: statuses[i%len(statuses)],
			Size:   int64(10_000 + i*731),
		})
		chats = append(chats, map[string]any{
			"id":       i + 1,
			"user":     fmt.Sprintf("user%03d", i%40),
			"question": fmt.Sprintf("Question %d", i),
			"ts":       start.Format(time.DateTime),
		})
	}
	processes := []any{
		service.ProcessInfo{Action: "reindex", Name: "Reindex repository", Description: "Rebuild the RAG index", Status: "idle"},
		service.ProcessInfo{Action: "stats", Name: "Aggregate statistics", Description: "Roll up daily visits", Status: "idle"},
	}
	for endpoint, rows := range map[string][]any{
		"user":           users,
		"sessions":       sessions,
		"lastsessions":   sessions,
		"repository/get": docs,
		"chats":          chats,
		"processlist":    processes,
	} {
		if err := srv.Seed(endpoint, rows...); err != nil {
			return fmt.Errorf("seed %s: %w", endpoint, err)
		}
	}
	return nil
}
