package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/enciclo/control"
	"github.com/enciclo/control/fs"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/enciclo/control/service"
	"github.com/spf13/cobra"
)

var userColumns = []lg.Column{
	{Title: "ID", Field: "id", Width: 6, Right: true},
	{Title: "User", Field: "user", Width: 20},
	{Title: "Name", Field: "name", Width: 24},
	{Title: "Email", Field: "email", Width: 28},
	{Title: "Admin", Field: "isadmin", Width: 5},
	{Title: "Enabled", Field: "isenabled", Width: 7},
	{Title: "Last connection", Field: "last_connection", Width: 19},
}

func newUsersCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and manage console accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, a, listing[service.User]{
				title:   "Users",
				load:    a.services.Users.List,
				columns: userColumns,
			}, f)
		},
	}
	f.register(cmd, false)
	cmd.AddCommand(
		newUserAddCmd(a),
		newUserActionCmd(a, "delete", "Delete an account", (*service.Users).Delete, "User deleted"),
		newUserActionCmd(a, "reset-password", "Send a new password to an account", (*service.Users).ResetPassword, "Password reset"),
		newUserActionCmd(a, "send-access", "Mail the access data to an account", (*service.Users).SendAccessData, "Access data sent"),
		newUserImportCmd(a),
		newUserDisableGroupCmd(a),
	)
	return cmd
}

func newUserAddCmd(a *app) *cobra.Command {
	var (
		u      service.User
		id     int
		groups string
	)
	cmd := &cobra.Command{
		Use:   "save <user>",
		Short: "Create an account, or update it with --id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u.User = args[0]
			if groups != "" {
				u.Collections = strings.Split(groups, ",")
			}
			var idp *int
			if cmd.Flags().Changed("id") {
				idp = &id
			}
			saved, err := check(a, a.services.Users.Save(cmd.Context(), idp, u))
			if err != nil {
				return err
			}
			out, err := lg.Table(userColumns, []service.User{saved}, a.styles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&id, "id", 0, "id of the account to update")
	fl.StringVar(&u.Name, "name", "", "full name")
	fl.StringVar(&u.Email, "email", "", "email address")
	fl.StringVar(&u.Password, "password", "", "initial password")
	fl.StringVar(&u.Group, "group", "", "account group")
	fl.StringVar(&groups, "collections", "", "comma-separated collections the account can read")
	fl.BoolVar(&u.Enabled, "enabled", true, "account can sign in")
	fl.BoolVar(&u.Admin, "admin", false, "grant administration")
	fl.BoolVar(&u.Editor, "editor", false, "grant editing")
	fl.BoolVar(&u.Tester, "tester", false, "grant RAG testing")
	return cmd
}

// newUserActionCmd builds a command that runs action on one account id.
// action is a method expression of service.Users.
func newUserActionCmd(a *app, use, short string, action func(*service.Users, context.Context, int) control.Response[service.Ack], done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id %q: %w", args[0], control.ErrValidation)
			}
			resp := action(a.services.Users, cmd.Context(), id)
			if _, err := check(a, resp); err != nil {
				return err
			}
			a.done(cmd.OutOrStdout(), resp.Reply(), done)
			return nil
		},
	}
}

func newUserImportCmd(a *app) *cobra.Command {
	var process string
	cmd := &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Create accounts from a spreadsheet or a backend process",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp control.Response[service.ImportReport]
			switch {
			case process != "" && len(args) == 0:
				resp = a.services.Users.ImportFromProcess(cmd.Context(), process)
			case process == "" && len(args) == 1:
				file, err := fs.Read(args[0], a.cfg.Upload.MaxFileSize)
				if err != nil {
					return err
				}
				resp = a.services.Users.ImportExcel(cmd.Context(), base64.StdEncoding.EncodeToString(file.Content))
			default:
				return fmt.Errorf("give either a file or --process: %w", control.ErrValidation)
			}
			report, err := check(a, resp)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			a.done(w, resp.Reply(), fmt.Sprintf("%d users imported", report.Imported))
			for _, d := range report.Duplicates {
				fmt.Fprintln(w, lg.Notice(control.Notice{Severity: control.SeverityWarn, Summary: "Duplicate", Detail: d}, a.styles))
			}
			for _, e := range report.Errors {
				fmt.Fprintln(w, lg.Notice(control.Notice{Severity: control.SeverityError, Summary: "Error", Detail: e}, a.styles))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&process, "process", "", "import the output of this backend process")
	return cmd
}

func newUserDisableGroupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disable-group <group>",
		Short: "Disable every account in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := a.services.Users.DisableGroup(cmd.Context(), args[0])
			if _, err := check(a, resp); err != nil {
				return err
			}
			a.done(cmd.OutOrStdout(), resp.Reply(), "Group "+args[0]+" disabled")
			return nil
		},
	}
}
