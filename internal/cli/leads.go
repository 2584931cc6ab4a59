package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
)

// NewLeadsCommand creates the leads command group.
func NewLeadsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Manage leads",
	}

	cmd.AddCommand(newLeadsListCommand(app))
	cmd.AddCommand(newLeadsGetCommand(app))
	cmd.AddCommand(newLeadsCreateCommand(app))
	cmd.AddCommand(newLeadsUpdateCommand(app))
	cmd.AddCommand(newLeadsDeleteCommand(app))
	cmd.AddCommand(newLeadsMineCommand(app))
	cmd.AddCommand(newLeadsAuditCommand(app))

	return cmd
}

func newLeadsListCommand(app *App) *cobra.Command {
	var status, search, page string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			params := url.Values{}
			if status != "" {
				params.Set("status", status)
			}
			if search != "" {
				params.Set("search", search)
			}
			if page != "" {
				params.Set("page", page)
			}

			result := app.Leads.FetchAll(cmd.Context(), params)
			if !result.Success {
				return errors.New(result.Error)
			}
			if pagination := app.Leads.Pagination(); pagination != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "total: %d\n", pagination.Count)
			}
			return printJSON(cmd.OutOrStdout(), app.Leads.Items())
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&search, "search", "", "search term")
	cmd.Flags().StringVar(&page, "page", "", "page number")

	return cmd
}

func newLeadsGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			result := app.Leads.FetchOne(cmd.Context(), id)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), app.Leads.Selected())
		},
	}
}

func newLeadsCreateCommand(app *App) *cobra.Command {
	var name, company, email, phone, status, priority, source, value, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			input := api.LeadInput{Name: &name, Email: &email}
			if company != "" {
				input.Company = &company
			}
			if phone != "" {
				input.Phone = &phone
			}
			if status != "" {
				leadStatus := crm.LeadStatus(status)
				input.Status = &leadStatus
			}
			if priority != "" {
				input.Priority = &priority
			}
			if source != "" {
				input.Source = &source
			}
			if value != "" {
				input.EstimatedValue = &value
			}
			if description != "" {
				input.Description = &description
			}

			result := app.Leads.Create(cmd.Context(), input)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "lead name")
	cmd.Flags().StringVar(&company, "company", "", "company")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringVar(&priority, "priority", "", "priority")
	cmd.Flags().StringVar(&source, "source", "", "acquisition source")
	cmd.Flags().StringVar(&value, "value", "", "estimated value")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLeadsUpdateCommand(app *App) *cobra.Command {
	var name, company, email, phone, status, priority, source, value, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var input api.LeadInput
			if cmd.Flags().Changed("name") {
				input.Name = &name
			}
			if cmd.Flags().Changed("company") {
				input.Company = &company
			}
			if cmd.Flags().Changed("email") {
				input.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				input.Phone = &phone
			}
			if cmd.Flags().Changed("status") {
				leadStatus := crm.LeadStatus(status)
				input.Status = &leadStatus
			}
			if cmd.Flags().Changed("priority") {
				input.Priority = &priority
			}
			if cmd.Flags().Changed("source") {
				input.Source = &source
			}
			if cmd.Flags().Changed("value") {
				input.EstimatedValue = &value
			}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}

			result := app.Leads.Update(cmd.Context(), id, input)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "lead name")
	cmd.Flags().StringVar(&company, "company", "", "company")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringVar(&priority, "priority", "", "priority")
	cmd.Flags().StringVar(&source, "source", "", "acquisition source")
	cmd.Flags().StringVar(&value, "value", "", "estimated value")
	cmd.Flags().StringVar(&description, "description", "", "description")

	return cmd
}

func newLeadsDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			result := app.Leads.Delete(cmd.Context(), id)
			if !result.Success {
				return errors.New(result.Error)
			}
			return nil
		},
	}
}

func newLeadsMineCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List leads owned by the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			result := app.Leads.FetchFrom(cmd.Context(), app.Client.Leads.Mine)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), app.Leads.Items())
		},
	}
}

func newLeadsAuditCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <id>",
		Short: "Show a lead's change history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			entries, err := app.Client.Leads.AuditLog(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
