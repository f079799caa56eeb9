package service

import (
	"context"
	"encoding/json"

	"github.com/enciclo/control"
)

// CRM lists leads captured by the chat and answers them.
type CRM struct{ Base }

func (s *CRM) Leads(ctx context.Context, q control.Query) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "crm/leads", q)
}

// SendMessage sets the status of message messageID on lead id.
func (s *CRM) SendMessage(ctx context.Context, id, messageID, status any) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "crm/leads/message", control.Params{"id": id, "messageId": messageID, "status": status})
}

// Messages reads and edits CRM message templates.
type Messages struct{ Base }

// List returns the templates of lead id, or all templates when id is nil.
func (s *Messages) List(ctx context.Context, id any) control.Response[List[json.RawMessage]] {
	return call[List[json.RawMessage]](ctx, s.Base, "crm/messages", control.Params{"id": id})
}

func (s *Messages) Update(ctx context.Context, id, data any) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "crm/messages/upd", control.Params{"id": id, "data": data})
}
