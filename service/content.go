package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/enciclo/control"
)

// Entities queries the named entities extracted from pages.
type Entities struct{ Base }

func (s *Entities) List(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "entities/list", q)
}

func (s *Entities) Pages(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "entities/pages", q)
}

// FromText detects entities in free text. p carries the text and any
// extra options the backend accepts.
func (s *Entities) FromText(ctx context.Context, p control.Params) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "entities/find", p)
}

// Media stores images used by dashboards and wikis.
type Media struct{ Base }

// Upload stores image and returns its public URL.
func (s *Media) Upload(ctx context.Context, image []byte) control.Response[Export] {
	return call[Export](ctx, s.Base, "setmedia", control.Params{"image": base64.StdEncoding.EncodeToString(image)})
}

func (s *Media) Images(ctx context.Context) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "getlistmedia", nil)
}

func (s *Media) Repositories(ctx context.Context) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "getlistrepositories", nil)
}

// Meta reads and writes named backend configuration documents.
type Meta struct{ Base }

func (s *Meta) Collections(ctx context.Context) control.Response[List[Collection]] {
	return call[List[Collection]](ctx, s.Base, "meta/collections", nil)
}

func (s *Meta) Configuration(ctx context.Context, name string) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "meta/get", control.Params{"name": name})
}

func (s *Meta) SaveConfiguration(ctx context.Context, name string, config any) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "meta/set", control.Params{"name": name, "config": config})
}

// ProcessInfo describes a backend batch process.
type ProcessInfo struct {
	Action      string `json:"action"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	LastRun     string `json:"last_run,omitempty"`
}

// Process lists and launches backend batch processes.
type Process struct{ Base }

func (s *Process) List(ctx context.Context) control.Response[List[ProcessInfo]] {
	return call[List[ProcessInfo]](ctx, s.Base, "processlist", nil)
}

func (s *Process) Launch(ctx context.Context, action string) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "process", control.Params{"action": action})
}
