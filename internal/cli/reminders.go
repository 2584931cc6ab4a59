package cli

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
	"github.com/owuorviny109/crmsync/internal/store"
)

// NewRemindersCommand creates the reminders command group.
func NewRemindersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage reminders",
	}

	cmd.AddCommand(newRemindersListCommand(app))
	cmd.AddCommand(newRemindersMineCommand(app))
	cmd.AddCommand(newRemindersOverdueCommand(app))
	cmd.AddCommand(newRemindersCreateCommand(app))
	cmd.AddCommand(newRemindersCompleteCommand(app))
	cmd.AddCommand(newRemindersDeleteCommand(app))

	return cmd
}

func newRemindersListCommand(app *App) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			result := app.Reminders.FetchAll(cmd.Context(), url.Values{})
			if !result.Success {
				return errors.New(result.Error)
			}
			if pendingOnly {
				return printJSON(cmd.OutOrStdout(), store.PendingReminders(app.Reminders))
			}
			return printJSON(cmd.OutOrStdout(), app.Reminders.Items())
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "only reminders not yet completed")

	return cmd
}

func newRemindersMineCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the current user's reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			result := app.Reminders.FetchFrom(cmd.Context(), app.Client.Reminders.Mine)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), app.Reminders.Items())
		},
	}
}

func newRemindersOverdueCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List pending reminders whose date has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			result := app.Reminders.FetchFrom(cmd.Context(), app.Client.Reminders.Overdue)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), app.Reminders.Items())
		},
	}
}

func newRemindersCreateCommand(app *App) *cobra.Command {
	var lead int64
	var title, description, date string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			when, err := time.Parse(time.RFC3339, date)
			if err != nil {
				return fmt.Errorf("invalid --date, want RFC 3339: %w", err)
			}

			input := api.ReminderInput{
				Lead:         &lead,
				Title:        &title,
				ReminderDate: &when,
			}
			if description != "" {
				input.Description = &description
			}

			result := app.Reminders.Create(cmd.Context(), input)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().Int64Var(&lead, "lead", 0, "lead id")
	cmd.Flags().StringVar(&title, "title", "", "reminder title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&date, "date", "", "reminder date (RFC 3339)")
	_ = cmd.MarkFlagRequired("lead")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newRemindersCompleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a reminder completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			status := crm.ReminderCompleted
			result := app.Reminders.Update(cmd.Context(), id, api.ReminderInput{Status: &status})
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}
}

func newRemindersDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			result := app.Reminders.Delete(cmd.Context(), id)
			if !result.Success {
				return errors.New(result.Error)
			}
			return nil
		},
	}
}
