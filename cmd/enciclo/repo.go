package main

import (
	"fmt"
	"strconv"

	"github.com/enciclo/control"
	"github.com/enciclo/control/fs"
	lg "github.com/enciclo/control/lipgloss"
	"github.com/enciclo/control/service"
	"github.com/enciclo/control/upload"
	"github.com/spf13/cobra"
)

var documentColumns = []lg.Column{
	{Title: "ID", Field: "id", Width: 36},
	{Title: "Name", Field: "name", Width: 32},
	{Title: "Title", Field: "title", Width: 32},
	{Title: "Status", Field: "status", Width: 10},
	{Title: "Size", Field: "size", Width: 10, Right: true},
}

func newRepoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage the documents the RAG chat answers from",
	}
	cmd.AddCommand(
		newRepoListCmd(a),
		newRepoUploadCmd(a),
		newRepoFileCmd(a, "delete", "Delete a document", func(a *app, cmd *cobra.Command, f service.FileOp) error {
			resp := a.services.Repository.Delete(cmd.Context(), f)
			if _, err := check(a, resp); err != nil {
				return err
			}
			a.done(cmd.OutOrStdout(), resp.Reply(), "Document deleted")
			return nil
		}),
		newRepoFileCmd(a, "regenerate", "Re-index a document", func(a *app, cmd *cobra.Command, f service.FileOp) error {
			resp := a.services.Repository.Regenerate(cmd.Context(), f)
			if _, err := check(a, resp); err != nil {
				return err
			}
			a.done(cmd.OutOrStdout(), resp.Reply(), "Document queued for indexing")
			return nil
		}),
		newRepoFileCmd(a, "url", "Print the download URL of a document", func(a *app, cmd *cobra.Command, f service.FileOp) error {
			v, err := check(a, a.services.Repository.FileURL(cmd.Context(), f))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.URL)
			return nil
		}),
		newRepoTitleCmd(a),
		newRepoExportCmd(a),
	)
	return cmd
}

func newRepoListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repository documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, a, listing[service.Document]{
				title:   "Repository",
				load:    a.services.Repository.List,
				columns: documentColumns,
			}, f)
		},
	}
	f.register(cmd, false)
	return cmd
}

func newRepoUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file|glob>...",
		Short: "Upload documents",
		Long: `Upload files to the repository. Arguments that are not existing
files are expanded as glob patterns; ** matches any number of
directories. Uploads run concurrently and are paced by the upload
settings of the configuration.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := fs.Expand(args)
			if err != nil {
				return err
			}
			u := upload.New(a.services.Repository.Upload, a.guard,
				upload.WithConcurrency(a.cfg.Upload.Concurrency),
				upload.WithRateLimit(a.cfg.Upload.RateLimit),
				upload.WithMaxSize(a.cfg.Upload.MaxFileSize),
				upload.WithLogger(a.logger),
			)
			results, runErr := u.Run(cmd.Context(), paths)

			w := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintln(w, lg.Notice(control.Notice{Severity: control.SeverityError, Summary: r.Path, Detail: r.Err.Error()}, a.styles))
					continue
				}
				fmt.Fprintln(w, lg.Notice(control.Notice{Severity: control.SeveritySuccess, Summary: r.Path, Detail: r.URL}, a.styles))
			}
			if runErr != nil {
				return runErr
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(results))
			}
			return nil
		},
	}
}

// fileOp addresses a document by id. Numeric ids are sent as numbers.
func fileOp(id string) service.FileOp {
	if n, err := strconv.Atoi(id); err == nil {
		return service.FileOp{ID: n}
	}
	return service.FileOp{ID: id}
}

func newRepoFileCmd(a *app, use, short string, run func(*app, *cobra.Command, service.FileOp) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, fileOp(args[0]))
		},
	}
}

func newRepoTitleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "title <id> <title>",
		Short: "Change the title of a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := fileOp(args[0])
			f.Title = args[1]
			resp := a.services.Repository.UpdateTitle(cmd.Context(), f)
			if _, err := check(a, resp); err != nil {
				return err
			}
			a.done(cmd.OutOrStdout(), resp.Reply(), "Title updated")
			return nil
		},
	}
}

func newRepoExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export-chats",
		Short: "Export the chats that cite repository documents",
		Long: `Export the chats that cite repository documents and print the
file URL. The export runs on the long-task backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := check(a, a.services.Repository.ExportChats(cmd.Context(), control.Params{}))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.URL)
			return nil
		},
	}
}
