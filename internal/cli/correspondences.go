package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/owuorviny109/crmsync/internal/api"
)

// NewCorrespondencesCommand creates the correspondences command
// group. Like notes, these have no collection store.
func NewCorrespondencesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "correspondences",
		Aliases: []string{"log"},
		Short:   "Track contact correspondences",
	}

	cmd.AddCommand(newCorrespondencesListCommand(app))
	cmd.AddCommand(newCorrespondencesCreateCommand(app))
	cmd.AddCommand(newCorrespondencesUpdateCommand(app))
	cmd.AddCommand(newCorrespondencesDeleteCommand(app))

	return cmd
}

func newCorrespondencesListCommand(app *App) *cobra.Command {
	var contact string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List correspondences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			params := url.Values{}
			if contact != "" {
				params.Set("contact", contact)
			}

			list, err := app.Client.Correspondences.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list.Results)
		},
	}

	cmd.Flags().StringVar(&contact, "contact", "", "filter by contact id")

	return cmd
}

func newCorrespondencesCreateCommand(app *App) *cobra.Command {
	var contact int64
	var kind, subject, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Log a correspondence",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			input := api.CorrespondenceInput{
				Contact: &contact,
				Type:    &kind,
				Subject: &subject,
			}
			if description != "" {
				input.Description = &description
			}

			entry, err := app.Client.Correspondences.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}

	cmd.Flags().Int64Var(&contact, "contact", 0, "contact id")
	cmd.Flags().StringVar(&kind, "type", "", "correspondence type (call|email|meeting)")
	cmd.Flags().StringVar(&subject, "subject", "", "subject")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("contact")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func newCorrespondencesUpdateCommand(app *App) *cobra.Command {
	var kind, subject, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a correspondence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var input api.CorrespondenceInput
			if cmd.Flags().Changed("type") {
				input.Type = &kind
			}
			if cmd.Flags().Changed("subject") {
				input.Subject = &subject
			}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}

			entry, err := app.Client.Correspondences.Update(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "correspondence type")
	cmd.Flags().StringVar(&subject, "subject", "", "subject")
	cmd.Flags().StringVar(&description, "description", "", "description")

	return cmd
}

func newCorrespondencesDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a correspondence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Client.Correspondences.Delete(cmd.Context(), id)
		},
	}
}
