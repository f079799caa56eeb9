package service

import (
	"context"
	"encoding/json"

	"github.com/enciclo/control"
)

// SessionRow is one visitor session.
type SessionRow struct {
	User     string `json:"user,omitempty"`
	Min      string `json:"min,omitempty"`
	Max      string `json:"max,omitempty"`
	TS       int64  `json:"ts,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	IP       string `json:"ip,omitempty"`
	GeoIP    string `json:"geoip,omitempty"`
	Referer  string `json:"referer,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Agent    string `json:"agent,omitempty"`
	Browser  string `json:"browser,omitempty"`
	Platform string `json:"platform,omitempty"`
	Country  string `json:"glc_country_name,omitempty"`
	City     string `json:"glc_city,omitempty"`
}

// PageStatsQuery selects the visits of one page over a time range given in
// Unix seconds.
type PageStatsQuery struct {
	Title      string `json:"title"`
	Collection string `json:"collection"`
	From       int64  `json:"from"`
	To         int64  `json:"to"`
}

// Stats reads usage statistics. Rows vary by endpoint and are left raw.
type Stats struct{ Base }

func (s *Stats) ActiveSessions(ctx context.Context, q control.Query) control.Response[List[SessionRow]] {
	return call[List[SessionRow]](ctx, s.Base, "sessions", q)
}

func (s *Stats) LastSessions(ctx context.Context, q control.Query) control.Response[List[SessionRow]] {
	return call[List[SessionRow]](ctx, s.Base, "lastsessions", q)
}

func (s *Stats) ExportSessions(ctx context.Context, q control.Query) control.Response[Export] {
	return call[Export](ctx, s.Base, "sessions_export", q)
}

func (s *Stats) ExportPages(ctx context.Context, q control.Query) control.Response[Export] {
	return call[Export](ctx, s.Base, "pages_export", q)
}

func (s *Stats) ExportQueries(ctx context.Context, q control.Query) control.Response[Export] {
	return call[Export](ctx, s.Base, "queries_export", q)
}

func (s *Stats) ExportPrints(ctx context.Context, q control.Query) control.Response[Export] {
	return call[Export](ctx, s.Base, "print_export", q)
}

func (s *Stats) ExportChats(ctx context.Context, q control.Query) control.Response[Export] {
	return call[Export](ctx, s.Base, "chats_export", q)
}

// LastPages lists the most recently visited pages with no paging.
func (s *Stats) LastPages(ctx context.Context) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "pages", nil)
}

func (s *Stats) Chats(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "chats", q)
}

func (s *Stats) Pages(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "pages", q)
}

func (s *Stats) Queries(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "queries", q)
}

func (s *Stats) Prints(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "prints", q)
}

func (s *Stats) UserStats(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "userstats", q)
}

func (s *Stats) PageStats(ctx context.Context, q PageStatsQuery) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "pagestats", q)
}

// SessionStats returns details of session id, or of all sessions when id
// is nil.
func (s *Stats) SessionStats(ctx context.Context, id *string) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "sessionstats", control.Params{"id": id})
}

func (s *Stats) UserPageStats(ctx context.Context, user int, collection string) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "userpagestats", control.Params{"user": user, "collection": collection})
}
