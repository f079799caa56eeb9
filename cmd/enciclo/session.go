package main

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/enciclo/control"
	"github.com/enciclo/control/api"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		username    string
		secretStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session token",
		Long: `Sign in with a username and secret. The username defaults to
api.username (API_USERNAME); the secret is taken from API_SECRET or read
from standard input.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{routeKey: control.RouteLogin},
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := api.Credentials{
				Username: cmp.Or(username, a.cfg.API.Username),
				Secret:   a.cfg.API.Secret,
			}
			if creds.Secret == "" || secretStdin {
				secret, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), !secretStdin)
				if err != nil {
					return err
				}
				creds.Secret = secret
			}
			if err := a.client.Login(cmd.Context(), creds); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), lg.Status(a.session, a.styles))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().BoolVar(&secretStdin, "secret-stdin", false, "read the secret from standard input")
	cmd.Flags().BoolVar(&a.force, "force", false, "sign in again even with a stored session")
	return cmd
}

// readSecret reads the secret from r, prompting on w when prompt is set.
// A prompted terminal is read with echo off; anything else is read as one
// line.
func readSecret(r io.Reader, w io.Writer, prompt bool) (string, error) {
	if prompt {
		fmt.Fprint(w, "Secret: ")
		if fd, ok := terminalFd(r); ok {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(w)
			if err != nil {
				return "", fmt.Errorf("read secret: %w", err)
			}
			return checkSecret(string(b))
		}
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return checkSecret(line)
}

func checkSecret(s string) (string, error) {
	secret := strings.TrimRight(s, "\r\n")
	if secret == "" {
		return "", fmt.Errorf("secret is required: %w", control.ErrValidation)
	}
	return secret, nil
}

// terminalFd returns r's descriptor when r is an interactive terminal.
func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	return int(f.Fd()), true
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Forget the stored session",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{routeKey: routePublic},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), lg.Status(a.session, a.styles))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var probe bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session and backend in use",
		Long: `Show whether a session is stored and which backend URLs the client
resolved. With --check the session is validated against the backend and
forgotten when the backend no longer accepts it.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{routeKey: routePublic},
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if probe && a.session.Authenticated() && !a.poller.Check(cmd.Context()) {
				if err := a.session.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(w, lg.Notice(control.Notice{Severity: control.SeverityWarn, Summary: "Session expired"}, a.styles))
			}
			fmt.Fprintln(w, lg.Status(a.session, a.styles))
			fmt.Fprintf(w, "api:       %s\n", a.client.BaseURL())
			fmt.Fprintf(w, "long task: %s\n", a.longTask.BaseURL())
			return nil
		},
	}
	cmd.Flags().BoolVar(&probe, "check", false, "validate the session against the backend")
	return cmd
}
