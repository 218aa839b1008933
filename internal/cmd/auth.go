package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxcrm/flux/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long: `Manage your Flux session.

Credentials are stored in ~/.flux/session.json.

Examples:
  flux auth login --email user@example.com
  flux auth register --email user@example.com
  flux auth status
  flux auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuth(cmd, false)
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new Flux account.

After registration you are signed in and can create or join an organization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuth(cmd, true)
	},
}

func runAuth(cmd *cobra.Command, register bool) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	var err error
	if email == "" {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("--email is required")
		}
		if email, err = tui.PromptForString("Email", true); err != nil {
			return err
		}
	}
	if password == "" {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("--password is required")
		}
		if password, err = tui.PromptForPassword("Password"); err != nil {
			return err
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if register {
		err = a.ctrl.Register(ctx, email, password)
	} else {
		err = a.ctrl.Login(ctx, email, password)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\n", email)

	orgs := a.ctrl.Memberships()
	if len(orgs) == 0 {
		fmt.Println("No organizations yet. Create one with 'flux org create'.")
	} else {
		fmt.Println("Select an organization with 'flux org select'.")
	}
	return nil
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Long: `Verify the stored session against the backend and show who you are.

A stored token that can no longer be verified (and cannot be refreshed) is
cleared, the same as in the web client.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		result, err := a.ctrl.Bootstrap(cmd.Context())
		if err != nil || !result.Authenticated {
			fmt.Println("Not signed in.")
			fmt.Println("Use 'flux auth login' to authenticate.")
			return nil
		}

		user := a.ctrl.User()
		fmt.Println("Signed in")
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Email:   %s\n", user.Email)

		if id := a.ctrl.OrganizationID(); id != "" {
			for _, org := range a.ctrl.Memberships() {
				if org.ID == id {
					fmt.Printf("Org:     %s (%s)\n", org.Name, org.Role)
				}
			}
		} else {
			fmt.Println("Org:     none selected")
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		a.ctrl.Logout()
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)

	for _, c := range []*cobra.Command{authLoginCmd, authRegisterCmd} {
		c.Flags().String("email", "", "Email address")
		c.Flags().String("password", "", "Password (prompted when omitted)")
	}
}
