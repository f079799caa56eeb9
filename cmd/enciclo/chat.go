package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/enciclo/control"
	bt "github.com/enciclo/control/bubbletea"
	"github.com/enciclo/control/goldmark"
	"github.com/enciclo/control/service"
	"github.com/spf13/cobra"
)

// askFunc sends one question and returns the backend's response.
type askFunc func(ctx context.Context, s *service.Services, question string) control.Response[service.Answer]

func newChatCmd(a *app) *cobra.Command {
	return newAskCmd(a, "chat", "Ask the public chat", func(ctx context.Context, s *service.Services, q string) control.Response[service.Answer] {
		return s.Chat.Query(ctx, q)
	})
}

func newRAGCmd(a *app) *cobra.Command {
	return newAskCmd(a, "rag", "Ask the RAG test endpoint", func(ctx context.Context, s *service.Services, q string) control.Response[service.Answer] {
		return s.Tests.RAG(ctx, control.Params{"query": q})
	})
}

// newAskCmd answers the question in the arguments, or opens the chat screen
// when there is none.
func newAskCmd(a *app, use, short string, ask askFunc) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   use + " [question]",
		Short: short,
		Long: short + `. With a question the answer is printed as styled
markdown; without one an interactive chat opens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.chat(cmd, ask)
			}
			ans, err := check(a, ask(cmd.Context(), a.services, strings.Join(args, " ")))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goldmark.Render(ans.Text, width, a.theme))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", goldmark.DefaultWidth, "wrap the answer to this many columns")
	return cmd
}

// chat runs the chat screen. Backend failures become error blocks in the
// conversation; a revoked or expired session blocks the screen.
func (a *app) chat(cmd *cobra.Command, ask askFunc) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	expiry := a.watchExpiry(ctx)
	guard := control.Guard{Session: a.session, Navigator: expiry}
	a.poller.Start(ctx, a.cfg.GetCheckInterval())
	defer a.poller.Stop()

	fn := func(ctx context.Context, question string) (string, error) {
		resp := ask(ctx, a.services, question)
		ans, err := control.Unwrap(resp)
		if !guard.Check(resp) {
			if err == nil {
				err = fmt.Errorf("%w: %s", errRequestFailed, resp.Reply().Message)
			}
			return "", err
		}
		return ans.Text, err
	}
	final, err := bt.Run(ctx, bt.NewChat(ctx, fn, a.theme, expiry.ch))
	if err != nil {
		return err
	}
	if m, ok := final.(bt.ChatModel); ok && m.Expired() {
		return a.expired(cmd, m.LoginRequested())
	}
	return nil
}
