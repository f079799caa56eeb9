package service

import (
	"context"
	"encoding/json"

	"github.com/enciclo/control"
)

// PageInfo is a page with the entities detected in it.
type PageInfo struct {
	Page     json.RawMessage   `json:"page"`
	Entities []json.RawMessage `json:"entidades"`
}

// Wiki is the wiki source of a page.
type Wiki struct {
	Wiki string `json:"wiki"`
}

// Pages reads and edits collection pages, wikis and dashboards.
type Pages struct{ Base }

func (s *Pages) Info(ctx context.Context, collection, title string) control.Response[PageInfo] {
	return call[PageInfo](ctx, s.Base, "page", control.Params{"title": title, "collection": collection})
}

func (s *Pages) Wiki(ctx context.Context, collection, title string) control.Response[Wiki] {
	return call[Wiki](ctx, s.Base, "wiki", control.Params{"title": title, "collection": collection})
}

// Search finds pages matching keyword in a comma-separated list of
// collections.
func (s *Pages) Search(ctx context.Context, keyword, collections, kind string) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "search", control.Params{"keyword": keyword, "collections": collections, "type": kind})
}

func (s *Pages) Collections(ctx context.Context) control.Response[List[Collection]] {
	return call[List[Collection]](ctx, s.Base, "collections", nil)
}

func (s *Pages) Dashboard(ctx context.Context, collection string) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "dashboard", control.Params{"collection": collection})
}

func (s *Pages) SearchByTitle(ctx context.Context, collection, term string) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "searchtitle", control.Params{"collection": collection, "term": term})
}

func (s *Pages) SaveDashboard(ctx context.Context, collection string, data any) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "savedashboard", control.Params{"collection": collection, "data": data})
}

func (s *Pages) PublishDashboard(ctx context.Context, collection string) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "publishdashboard", control.Params{"collection": collection})
}

func (s *Pages) Images(ctx context.Context, collection, title string) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "pageimages", control.Params{"title": title, "collection": collection})
}

func (s *Pages) SaveWiki(ctx context.Context, collection, title, content string) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "savewiki", control.Params{"collection": collection, "title": title, "content": content})
}

// Queries lists the saved queries ExecQuery can run.
func (s *Pages) Queries(ctx context.Context) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "getqueries", nil)
}

func (s *Pages) ExecQuery(ctx context.Context, query, collections string) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "execquery", control.Params{"query": query, "collections": collections})
}

func (s *Pages) ExportWiki(ctx context.Context, data []any) control.Response[Export] {
	return call[Export](ctx, s.Base, "exportwiki", control.Params{"data": data})
}
