package cli

import (
	"errors"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/owuorviny109/crmsync/internal/api"
)

// NewContactsCommand creates the contacts command group.
func NewContactsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage contacts",
	}

	cmd.AddCommand(newContactsListCommand(app))
	cmd.AddCommand(newContactsCreateCommand(app))
	cmd.AddCommand(newContactsUpdateCommand(app))
	cmd.AddCommand(newContactsDeleteCommand(app))
	cmd.AddCommand(newContactsLogCommand(app))

	return cmd
}

func newContactsListCommand(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			params := url.Values{}
			if search != "" {
				params.Set("search", search)
			}

			result := app.Contacts.FetchAll(cmd.Context(), params)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), app.Contacts.Items())
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "search term")

	return cmd
}

func newContactsCreateCommand(app *App) *cobra.Command {
	var lead int64
	var name, email, phone, position, notes string
	var primary bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			input := api.ContactInput{Lead: &lead, Name: &name, Email: &email}
			if phone != "" {
				input.Phone = &phone
			}
			if position != "" {
				input.Position = &position
			}
			if notes != "" {
				input.Notes = &notes
			}
			if cmd.Flags().Changed("primary") {
				input.IsPrimary = &primary
			}

			result := app.Contacts.Create(cmd.Context(), input)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().Int64Var(&lead, "lead", 0, "lead id")
	cmd.Flags().StringVar(&name, "name", "", "contact name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&position, "position", "", "position")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&primary, "primary", false, "mark as primary contact")
	_ = cmd.MarkFlagRequired("lead")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newContactsUpdateCommand(app *App) *cobra.Command {
	var name, email, phone, position, notes string
	var primary bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var input api.ContactInput
			if cmd.Flags().Changed("name") {
				input.Name = &name
			}
			if cmd.Flags().Changed("email") {
				input.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				input.Phone = &phone
			}
			if cmd.Flags().Changed("position") {
				input.Position = &position
			}
			if cmd.Flags().Changed("notes") {
				input.Notes = &notes
			}
			if cmd.Flags().Changed("primary") {
				input.IsPrimary = &primary
			}

			result := app.Contacts.Update(cmd.Context(), id, input)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "contact name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&position, "position", "", "position")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&primary, "primary", false, "mark as primary contact")

	return cmd
}

func newContactsDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			result := app.Contacts.Delete(cmd.Context(), id)
			if !result.Success {
				return errors.New(result.Error)
			}
			return nil
		},
	}
}

func newContactsLogCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "log <id>",
		Short: "Show correspondences logged against a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			entries, err := app.Client.Contacts.Correspondences(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
}
