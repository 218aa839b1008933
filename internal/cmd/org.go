package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxcrm/flux/internal/tui"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
	Long: `List, create, and select organizations.

Every CRM command runs in the scope of the selected organization.

Examples:
  flux org list
  flux org create --name "Acme Inc"
  flux org select <org-id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your organization memberships",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.ctrl.LoadMemberships(cmd.Context()); err != nil {
			return err
		}

		selected := a.ctrl.OrganizationID()
		orgs := a.ctrl.Memberships()
		if len(orgs) == 0 {
			fmt.Println("No organizations. Create one with 'flux org create'.")
			return nil
		}

		for _, org := range orgs {
			marker := " "
			if org.ID == selected {
				marker = "*"
			}
			fmt.Printf("%s %-36s  %-24s %s\n", marker, org.ID, org.Name, org.Role)
		}
		return nil
	},
}

var orgCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an organization and select it",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		domain, _ := cmd.Flags().GetString("domain")

		var err error
		if name == "" {
			if !tui.ShouldPrompt() {
				return fmt.Errorf("--name is required")
			}
			if name, err = tui.PromptForString("Organization name", true); err != nil {
				return err
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		org, err := a.ctrl.CreateOrganization(cmd.Context(), name, domain)
		if err != nil {
			return err
		}

		fmt.Printf("Created organization %s (%s) and selected it.\n", org.Name, org.ID)
		return nil
	},
}

var orgSelectCmd = &cobra.Command{
	Use:   "select [org-id]",
	Short: "Select the organization for CRM commands",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.ctrl.LoadMemberships(cmd.Context()); err != nil {
			return err
		}
		orgs := a.ctrl.Memberships()

		var id string
		if len(args) == 1 {
			id = args[0]
			found := false
			for _, org := range orgs {
				if org.ID == id {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("you are not a member of organization %s", id)
			}
		} else {
			if !tui.ShouldPrompt() {
				return fmt.Errorf("org-id argument is required")
			}
			options := make(map[string]string, len(orgs))
			for _, org := range orgs {
				options[fmt.Sprintf("%s (%s)", org.Name, org.Role)] = org.ID
			}
			if id, err = tui.PromptForSelect("Choose an organization", options); err != nil {
				return err
			}
		}

		a.ctrl.SelectOrganization(id)
		fmt.Printf("Selected organization %s.\n", id)
		return nil
	},
}

func init() {
	orgCmd.AddCommand(orgListCmd)
	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgSelectCmd)

	orgCreateCmd.Flags().String("name", "", "Organization name")
	orgCreateCmd.Flags().String("domain", "", "Organization domain (optional)")
}
