package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxcrm/flux/internal/api"
	"github.com/fluxcrm/flux/internal/crm"
)

// parseData decodes the --data flag: inline JSON, or @file to read a file.
func parseData(data string) (map[string]any, error) {
	if data == "" {
		return nil, fmt.Errorf("--data is required (inline JSON or @file)")
	}
	if strings.HasPrefix(data, "@") {
		raw, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, err
		}
		data = string(raw)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return nil, fmt.Errorf("parse --data: %w", err)
	}
	return body, nil
}

// newResourceCmd builds the list/create/update/delete command group for one
// CRM entity. Create and update go through the collection so every write is
// followed by a list re-fetch, matching the client contract.
func newResourceCmd[T any](use, short string, open func(*api.Client) *crm.Collection[T], render func([]T)) *cobra.Command {
	group := &cobra.Command{
		Use:   use,
		Short: short,
		Long: fmt.Sprintf(`%s for the selected organization.

Select an organization first with 'flux org select'.

Examples:
  flux %s list
  flux %s create --data '{"name":"..."}'
  flux %s update <id> --data '{"name":"..."}'
  flux %s delete <id>`, short, use, use, use, use),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			col := open(a.ctrl.Client())
			if err := col.SetEnabled(cmd.Context(), true); err != nil {
				return err
			}
			items := col.Items()
			if len(items) == 0 {
				fmt.Println("No records.")
				return nil
			}
			render(items)
			return nil
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record from JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _ := cmd.Flags().GetString("data")
			body, err := parseData(data)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			col := open(a.ctrl.Client())
			if err := col.SetEnabled(cmd.Context(), true); err != nil {
				return err
			}
			if _, err := col.Create(cmd.Context(), body); err != nil {
				return err
			}
			fmt.Println("Created.")
			render(col.Items())
			return nil
		},
	}
	createCmd.Flags().String("data", "", "Record fields as JSON, or @file")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a record from JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _ := cmd.Flags().GetString("data")
			body, err := parseData(data)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			col := open(a.ctrl.Client())
			if err := col.SetEnabled(cmd.Context(), true); err != nil {
				return err
			}
			if _, err := col.Update(cmd.Context(), args[0], body); err != nil {
				return err
			}
			fmt.Println("Updated.")
			render(col.Items())
			return nil
		},
	}
	updateCmd.Flags().String("data", "", "Changed fields as JSON, or @file")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			col := open(a.ctrl.Client())
			if err := col.SetEnabled(cmd.Context(), true); err != nil {
				return err
			}
			if err := col.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}

	group.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	return group
}

func init() {
	rootCmd.AddCommand(newResourceCmd("accounts", "Manage accounts", crm.Accounts, func(items []crm.Account) {
		fmt.Printf("%-36s  %-24s %-18s %s\n", "ID", "NAME", "DOMAIN", "INDUSTRY")
		for _, a := range items {
			fmt.Printf("%-36s  %-24s %-18s %s\n", a.ID, a.Name, a.Domain, a.Industry)
		}
	}))

	rootCmd.AddCommand(newResourceCmd("contacts", "Manage contacts", crm.Contacts, func(items []crm.Contact) {
		fmt.Printf("%-36s  %-24s %-24s %s\n", "ID", "NAME", "EMAIL", "TITLE")
		for _, c := range items {
			name := strings.TrimSpace(c.FirstName + " " + c.LastName)
			fmt.Printf("%-36s  %-24s %-24s %s\n", c.ID, name, c.Email, c.Title)
		}
	}))

	rootCmd.AddCommand(newResourceCmd("deals", "Manage deals", crm.Deals, func(items []crm.Deal) {
		fmt.Printf("%-36s  %-24s %-12s %-10s %s\n", "ID", "NAME", "AMOUNT", "STATUS", "STAGE")
		for _, d := range items {
			fmt.Printf("%-36s  %-24s %-12s %-10s %s\n", d.ID, d.Name, d.Amount, d.Status, d.StageID)
		}
	}))

	rootCmd.AddCommand(newResourceCmd("tasks", "Manage tasks", crm.Tasks, func(items []crm.Task) {
		fmt.Printf("%-36s  %-28s %-12s %-8s %s\n", "ID", "TITLE", "STATUS", "PRIORITY", "DUE")
		for _, t := range items {
			fmt.Printf("%-36s  %-28s %-12s %-8s %s\n", t.ID, t.Title, t.Status, t.Priority, t.DueDate)
		}
	}))

	rootCmd.AddCommand(newResourceCmd("stages", "Manage pipeline stages", crm.PipelineStages, func(items []crm.PipelineStage) {
		fmt.Printf("%-36s  %-24s %-6s %s\n", "ID", "NAME", "ORDER", "PROB")
		for _, s := range items {
			fmt.Printf("%-36s  %-24s %-6d %d%%\n", s.ID, s.Name, s.Order, s.Probability)
		}
	}))
}
