package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// View renders the current stage (required by Bubble Tea).
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.stage {
	case StageBoot:
		// Nothing renders until bootstrap resolves.
		return ""
	case StageLogin, StageRegister:
		return m.renderAuth()
	case StageOrgSelect:
		return m.renderOrgSelect()
	case StageOrgCreate:
		return m.renderOrgCreate()
	case StageApp:
		return m.renderApp()
	default:
		return ""
	}
}

func (m Model) renderAuth() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Flux CRM"))
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.styles.Muted.Render("Signing in..."))
		b.WriteString("\n")
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}

	if m.stage == StageLogin {
		b.WriteString(m.styles.Help.Render("ctrl+n: create an account • ctrl+c: quit"))
	} else {
		b.WriteString(m.styles.Help.Render("esc: back to sign in • ctrl+c: quit"))
	}

	return b.String()
}

func (m Model) renderOrgSelect() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Choose an organization"))
	b.WriteString("\n")

	orgs := m.session.Memberships()
	if len(orgs) == 0 {
		b.WriteString(m.styles.Muted.Render("You don't belong to any organization yet."))
		b.WriteString("\n")
	}

	for i, org := range orgs {
		line := fmt.Sprintf("%s  %s", org.Name, m.styles.Muted.Render(org.Role))
		if i == m.orgCursor {
			b.WriteString(m.styles.Highlighted.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("enter: select • n: new organization • ctrl+l: sign out • q: quit"))
	return b.String()
}

func (m Model) renderOrgCreate() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("New organization"))
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.styles.Muted.Render("Creating..."))
		b.WriteString("\n")
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("esc: back • ctrl+c: quit"))
	return b.String()
}

func (m Model) renderApp() string {
	var b strings.Builder

	var tabs []string
	for i, title := range tabTitles {
		if entityTab(i) == m.activeTab {
			tabs = append(tabs, m.styles.Highlighted.Render(title))
		} else {
			tabs = append(tabs, m.styles.Muted.Render(title))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(tabs, "  ")))
	b.WriteString("\n\n")

	if m.collectionLoading(m.activeTab) {
		b.WriteString(m.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.tables[m.activeTab].View())
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("tab: next entity • r: refresh • d: delete row • ctrl+l: sign out • q: quit"))
	return b.String()
}

func (m Model) collectionLoading(tab entityTab) bool {
	switch tab {
	case tabAccounts:
		return m.accounts.Loading()
	case tabContacts:
		return m.contacts.Loading()
	case tabDeals:
		return m.deals.Loading()
	case tabTasks:
		return m.tasks.Loading()
	case tabStages:
		return m.stages.Loading()
	}
	return false
}

// newEntityTable builds the bubbles table for one entity tab.
func newEntityTable(tab entityTab) table.Model {
	var columns []table.Column

	switch tab {
	case tabAccounts:
		columns = []table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 24},
			{Title: "Domain", Width: 18},
			{Title: "Industry", Width: 14},
			{Title: "Phone", Width: 14},
		}
	case tabContacts:
		columns = []table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 24},
			{Title: "Email", Width: 24},
			{Title: "Title", Width: 16},
		}
	case tabDeals:
		columns = []table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 24},
			{Title: "Amount", Width: 12},
			{Title: "Status", Width: 10},
			{Title: "Close", Width: 12},
		}
	case tabTasks:
		columns = []table.Column{
			{Title: "ID", Width: 10},
			{Title: "Title", Width: 28},
			{Title: "Status", Width: 12},
			{Title: "Priority", Width: 8},
			{Title: "Due", Width: 12},
		}
	case tabStages:
		columns = []table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 24},
			{Title: "Order", Width: 6},
			{Title: "Prob %", Width: 7},
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = s.Selected.Background(lipgloss.Color("63")).Foreground(lipgloss.Color("230"))
	t.SetStyles(s)

	return t
}

// rowsFor converts the cached collection items into table rows. The first
// cell always carries the full record id so row actions can address it.
func (m Model) rowsFor(tab entityTab) []table.Row {
	var rows []table.Row

	switch tab {
	case tabAccounts:
		for _, a := range m.accounts.Items() {
			rows = append(rows, table.Row{a.ID, a.Name, a.Domain, a.Industry, a.Phone})
		}
	case tabContacts:
		for _, c := range m.contacts.Items() {
			name := strings.TrimSpace(c.FirstName + " " + c.LastName)
			rows = append(rows, table.Row{c.ID, name, c.Email, c.Title})
		}
	case tabDeals:
		for _, d := range m.deals.Items() {
			rows = append(rows, table.Row{d.ID, d.Name, d.Amount, d.Status, d.ExpectedClose})
		}
	case tabTasks:
		for _, t := range m.tasks.Items() {
			rows = append(rows, table.Row{t.ID, t.Title, t.Status, t.Priority, t.DueDate})
		}
	case tabStages:
		for _, s := range m.stages.Items() {
			rows = append(rows, table.Row{
				s.ID, s.Name,
				fmt.Sprintf("%d", s.Order),
				fmt.Sprintf("%d", s.Probability),
			})
		}
	}

	return rows
}
