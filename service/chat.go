package service

import (
	"context"
	"encoding/json"

	"github.com/enciclo/control"
)

// Answer is a chat or RAG answer. Text is markdown.
type Answer struct {
	ID      any               `json:"id,omitempty"`
	Text    string            `json:"answer"`
	Sources []json.RawMessage `json:"sources,omitempty"`
	Elapsed float64           `json:"time,omitempty"`
}

// Rating scores a RAG answer.
type Rating struct {
	Answer int `json:"respuesta"`
	Speed  int `json:"velocidad"`
}

// Evaluation rates one RAG test run.
type Evaluation struct {
	ID      int    `json:"id"`
	Rating  Rating `json:"rating"`
	Comment string `json:"comentario,omitempty"`
}

// Chat queries the public chat.
type Chat struct{ Base }

func (s *Chat) Query(ctx context.Context, query string) control.Response[Answer] {
	return call[Answer](ctx, s.Base, "chat/query", control.Params{"query": query})
}

// Get returns a stored chat. An empty id is sent as "".
func (s *Chat) Get(ctx context.Context, id string) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "get_chat", control.Params{"id": id})
}

// Tests runs diagnostics and RAG evaluations. Parameters are free-form.
type Tests struct{ Base }

func (s *Tests) IP(ctx context.Context, p control.Params) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "testip", p)
}

func (s *Tests) Referer(ctx context.Context, p control.Params) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "testreferer", p)
}

func (s *Tests) RAG(ctx context.Context, p control.Params) control.Response[Answer] {
	return call[Answer](ctx, s.Base, "testrag", p)
}

func (s *Tests) EvaluateRAG(ctx context.Context, e Evaluation) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "evaluaterag", e)
}

// RAGAB runs the same question against two RAG configurations.
func (s *Tests) RAGAB(ctx context.Context, p control.Params) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "ragtestab", p)
}

// ExportChat exports a test conversation. The backend reads the session
// from the injected session_id.
func (s *Tests) ExportChat(ctx context.Context, data any) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "exportchat", control.Params{"data": data})
}

func (s *Tests) ListRAG(ctx context.Context, p control.Params) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "listrag", p)
}

func (s *Tests) GetRAG(ctx context.Context, id int) control.Response[json.RawMessage] {
	return call[json.RawMessage](ctx, s.Base, "getrag", control.Params{"id": id})
}
