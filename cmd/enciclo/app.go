package main

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/enciclo/control"
	"github.com/enciclo/control/api"
	"github.com/enciclo/control/config"
	enciclojson "github.com/enciclo/control/json"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/enciclo/control/logging"
	"github.com/enciclo/control/poller"
	"github.com/enciclo/control/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// routeKey annotates a command with the route control.Admit gates it by.
// Commands without the annotation need a session.
const (
	routeKey    = "route"
	routePublic = "public"
)

var (
	errAlreadyLoggedIn = errors.New("already logged in (use --force to sign in again)")
	errRequestFailed   = errors.New("request failed")
)

// app holds what every command shares. It is filled by setup before the
// command runs.
type app struct {
	configPath string
	verbose    bool
	force      bool

	cfg      *config.Config
	logger   *zap.Logger
	theme    control.Theme
	styles   lg.Styles
	session  *control.Session
	client   *api.Client
	longTask *api.Client
	services *service.Services
	guard    control.Guard
	poller   *poller.Poller
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "enciclo",
		Short: "Console for the enciclo backend",
		Long: `Manage users, statistics, the document repository and the RAG chat
of an enciclo backend from the terminal.

Sign in once with 'enciclo login'; the session token is kept in the
token file named by the configuration until you log out or the backend
expires it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "path to config.yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newUsersCmd(a),
		newStatsCmd(a),
		newWatchCmd(a),
		newRepoCmd(a),
		newChatCmd(a),
		newRAGCmd(a),
		newProcessCmd(a),
		newDashboardCmd(a),
		newFakeBackendCmd(a),
	)
	root.InitDefaultHelpCmd()
	root.InitDefaultCompletionCmd()
	for _, c := range root.Commands() {
		if c.Name() == "help" || c.Name() == "completion" {
			setRoute(c, routePublic)
		}
	}
	return root
}

func setRoute(cmd *cobra.Command, route string) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeKey] = route
}

// routeOf returns the route of cmd or of its closest annotated parent.
func routeOf(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if r, ok := c.Annotations[routeKey]; ok {
			return r
		}
	}
	return control.RouteHome
}

// setup loads the configuration and builds the session, API clients,
// services, guard and poller, then admits the command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.IsProduction(), a.verbose)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	a.theme = control.DefaultTheme()
	a.styles = lg.NewStyles(a.theme)
	a.session = control.NewSession(enciclojson.NewTokenFile(cfg.Session.TokenFile))

	common := []api.Option{
		api.WithResolver(api.NewResolver(cfg.API.BaseURL, cfg.API.LongTaskURL, cfg.API.Origin)),
		api.WithLogger(logger),
	}
	if cfg.API.RateLimit > 0 {
		common = append(common, api.WithRateLimit(rate.Limit(cfg.API.RateLimit), max(cfg.API.RateBurst, 1)))
	}
	a.client = api.New(a.session, slices.Concat(common, []api.Option{api.WithTimeout(cfg.GetTimeout())})...)
	a.longTask = api.New(a.session, slices.Concat(common, []api.Option{api.LongTask(), api.WithTimeout(cfg.GetLongTaskTimeout())})...)
	a.services = service.NewWithLongTask(a.client, a.longTask)

	a.guard = control.Guard{
		Session:   a.session,
		Notifier:  lg.NewPrinter(cmd.ErrOrStderr(), a.styles),
		Navigator: loginHint{w: cmd.ErrOrStderr(), styles: a.styles},
	}
	a.poller = poller.New(a.client, a.session, poller.WithLogger(logger))

	return a.admit(cmd)
}

// admit restores the persisted session and refuses commands the session
// state does not allow.
func (a *app) admit(cmd *cobra.Command) error {
	route := routeOf(cmd)
	if route == routePublic {
		_, err := a.session.Restore()
		return err
	}
	redirect, err := control.Admit(a.session, route)
	if err != nil {
		return err
	}
	switch redirect {
	case control.RouteLogin:
		return fmt.Errorf("%w: run 'enciclo login' first", control.ErrNotLoggedIn)
	case control.RouteHome:
		if !a.force {
			return errAlreadyLoggedIn
		}
	}
	return nil
}

func (a *app) close() {
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// failed returns the error for a response the guard rejected. The guard has
// already told the user why.
func (a *app) failed() error {
	if !a.session.Authenticated() {
		return fmt.Errorf("%w: session is no longer valid", control.ErrNotLoggedIn)
	}
	return errRequestFailed
}

// check runs r through the guard and returns its payload.
func check[T any](a *app, r control.Response[T]) (T, error) {
	if !a.guard.Check(r) {
		var zero T
		return zero, a.failed()
	}
	return control.Unwrap(r)
}

// done prints the backend's message for a mutation, or fallback.
func (a *app) done(w io.Writer, reply control.Reply, fallback string) {
	msg := reply.Message
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(w, lg.Notice(control.Notice{Severity: control.SeveritySuccess, Summary: msg}, a.styles))
}

// loginHint is the command-line login screen: it tells the user to sign in
// again.
type loginHint struct {
	w      io.Writer
	styles lg.Styles
}

func (h loginHint) ToLogin() {
	fmt.Fprintln(h.w, lg.Notice(control.Notice{
		Severity: control.SeverityWarn,
		Summary:  "Session no longer valid",
		Detail:   "run 'enciclo login' to sign in again",
	}, h.styles))
}
