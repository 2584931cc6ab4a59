package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/owuorviny109/crmsync/internal/api"
)

// NewNotesCommand creates the notes command group. Notes have no
// collection store; commands talk to the API layer directly.
func NewNotesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage lead notes",
	}

	cmd.AddCommand(newNotesListCommand(app))
	cmd.AddCommand(newNotesCreateCommand(app))
	cmd.AddCommand(newNotesUpdateCommand(app))
	cmd.AddCommand(newNotesDeleteCommand(app))

	return cmd
}

func newNotesListCommand(app *App) *cobra.Command {
	var lead string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			params := url.Values{}
			if lead != "" {
				params.Set("lead", lead)
			}

			list, err := app.Client.Notes.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list.Results)
		},
	}

	cmd.Flags().StringVar(&lead, "lead", "", "filter by lead id")

	return cmd
}

func newNotesCreateCommand(app *App) *cobra.Command {
	var lead int64
	var content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			note, err := app.Client.Notes.Create(cmd.Context(), api.NoteInput{
				Lead:    &lead,
				Content: &content,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), note)
		},
	}

	cmd.Flags().Int64Var(&lead, "lead", 0, "lead id")
	cmd.Flags().StringVar(&content, "content", "", "note text")
	_ = cmd.MarkFlagRequired("lead")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newNotesUpdateCommand(app *App) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			note, err := app.Client.Notes.Update(cmd.Context(), id, api.NoteInput{Content: &content})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), note)
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "note text")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newNotesDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Client.Notes.Delete(cmd.Context(), id)
		},
	}
}
