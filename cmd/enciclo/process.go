package main

import (
	"fmt"

	lg "github.com/enciclo/control/lipgloss"
	"github.com/spf13/cobra"
)

var processColumns = []lg.Column{
	{Title: "Action", Field: "action", Width: 20},
	{Title: "Name", Field: "name", Width: 24},
	{Title: "Status", Field: "status", Width: 10},
	{Title: "Last run", Field: "last_run", Width: 19},
	{Title: "Description", Field: "description"},
}

func newProcessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "List and launch backend batch processes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the batch processes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				v, err := check(a, a.services.Process.List(cmd.Context()))
				if err != nil {
					return err
				}
				out, err := lg.Table(processColumns, v.List, a.styles)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "launch <action>",
			Short: "Start a batch process",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp := a.services.Process.Launch(cmd.Context(), args[0])
				if _, err := check(a, resp); err != nil {
					return err
				}
				a.done(cmd.OutOrStdout(), resp.Reply(), "Process "+args[0]+" launched")
				return nil
			},
		},
	)
	return cmd
}
