package service

import (
	"context"

	"github.com/enciclo/control"
)

// Document is a file in the RAG document repository.
type Document struct {
	ID        any    `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status,omitempty"`
	Size      int64  `json:"size,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// FileOp addresses one repository file. File carries base64 content on
// upload.
type FileOp struct {
	ID    any    `json:"id,omitempty"`
	File  string `json:"file,omitempty"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
}

// Repository manages the documents the RAG backend answers from.
type Repository struct{ Base }

func (s *Repository) List(ctx context.Context, q control.Query) control.Response[List[Document]] {
	return call[List[Document]](ctx, s.Base, "repository/get", q)
}

// ExportChats exports the chats that cite repository documents. It runs on
// the long-task backend.
func (s *Repository) ExportChats(ctx context.Context, data any) control.Response[Export] {
	return callLong[Export](ctx, s.Base, "repository/export", control.Params{"data": data})
}

func (s *Repository) Delete(ctx context.Context, f FileOp) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "repository/delete", f)
}

func (s *Repository) Regenerate(ctx context.Context, f FileOp) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "repository/regenerate", f)
}

func (s *Repository) Upload(ctx context.Context, f FileOp) control.Response[Export] {
	return call[Export](ctx, s.Base, "repository/upload", f)
}

func (s *Repository) FileURL(ctx context.Context, f FileOp) control.Response[Export] {
	return call[Export](ctx, s.Base, "repository/fileurl", f)
}

func (s *Repository) UpdateTitle(ctx context.Context, f FileOp) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "repository/update", f)
}
