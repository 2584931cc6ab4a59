package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/owuorviny109/crmsync/internal/api"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireGuest(cmd); err != nil {
				return err
			}

			result := app.Session.Login(cmd.Context(), api.LoginRequest{
				Username: username,
				Password: password,
			})
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.Logout()
			return nil
		},
	}
}

// NewRegisterCommand creates the register command. Registration does
// not log in; follow with 'crmsync login'.
func NewRegisterCommand(app *App) *cobra.Command {
	var req api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireGuest(cmd); err != nil {
				return err
			}

			result := app.Session.Register(cmd.Context(), req)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Role, "role", "", "role (manager|agent)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			if refresh {
				result := app.Session.FetchCurrentUser(cmd.Context())
				if !result.Success {
					return errors.New(result.Error)
				}
			}
			return printJSON(cmd.OutOrStdout(), app.Session.CurrentUser())
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-fetch the profile from the server")

	return cmd
}

// NewProfileCommand creates the profile update command.
func NewProfileCommand(app *App) *cobra.Command {
	var email, firstName, lastName, phone string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the current user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireAuth(cmd); err != nil {
				return err
			}

			var update api.ProfileUpdate
			if cmd.Flags().Changed("email") {
				update.Email = &email
			}
			if cmd.Flags().Changed("first-name") {
				update.FirstName = &firstName
			}
			if cmd.Flags().Changed("last-name") {
				update.LastName = &lastName
			}
			if cmd.Flags().Changed("phone") {
				update.Phone = &phone
			}

			result := app.Session.UpdateProfile(cmd.Context(), update)
			if !result.Success {
				return errors.New(result.Error)
			}
			return printJSON(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")

	return cmd
}
