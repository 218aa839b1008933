package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxcrm/flux/internal/tui"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and update your profile",
	Long: `View and update the signed-in user's profile.

Examples:
  flux profile view
  flux profile update --email new@example.com
  flux profile change-password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var profileViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		user, err := a.ctrl.Profile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Email:   %s\n", user.Email)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the profile email",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return fmt.Errorf("--email is required")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		user, err := a.ctrl.UpdateProfile(cmd.Context(), email)
		if err != nil {
			return err
		}
		fmt.Printf("Profile updated. Email is now %s.\n", user.Email)
		return nil
	},
}

var profileChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the account password",
	Long: `Change the account password.

The backend rotates the token pair on success, so the stored session stays
valid afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetString("current")
		next, _ := cmd.Flags().GetString("new")

		var err error
		if current == "" {
			if !tui.ShouldPrompt() {
				return fmt.Errorf("--current is required")
			}
			if current, err = tui.PromptForPassword("Current password"); err != nil {
				return err
			}
		}
		if next == "" {
			if !tui.ShouldPrompt() {
				return fmt.Errorf("--new is required")
			}
			if next, err = tui.PromptForPassword("New password"); err != nil {
				return err
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.ctrl.ChangePassword(cmd.Context(), current, next); err != nil {
			return err
		}
		fmt.Println("Password changed.")
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileViewCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileChangePasswordCmd)

	profileUpdateCmd.Flags().String("email", "", "New email address")
	profileChangePasswordCmd.Flags().String("current", "", "Current password (prompted when omitted)")
	profileChangePasswordCmd.Flags().String("new", "", "New password (prompted when omitted)")
}
