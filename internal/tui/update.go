package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// updateAuth drives the login and register screens. Esc on register goes back
// to login; ctrl+n on login jumps to register.
func (m Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && !m.busy {
		switch key.String() {
		case "ctrl+n":
			if m.stage == StageLogin {
				return m.gotoRegister()
			}
		case "esc":
			if m.stage == StageRegister {
				return m.gotoLogin()
			}
		}
	}

	if m.form == nil || m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
		if m.form.State == huh.StateCompleted {
			email := m.form.GetString(fieldEmail)
			password := m.form.GetString(fieldPassword)
			m.email = email
			m.busy = true
			m.errMsg = ""
			register := m.stage == StageRegister

			return m, func() tea.Msg {
				ctx := context.Background()
				var err error
				if register {
					err = m.session.Register(ctx, email, password)
				} else {
					err = m.session.Login(ctx, email, password)
				}
				return authDoneMsg{err: err}
			}
		}
	}
	return m, cmd
}

// updateOrgSelect drives the membership list: arrows move, enter selects,
// n creates a new organization, ctrl+l signs out.
func (m Model) updateOrgSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	orgs := m.session.Memberships()

	switch key.String() {
	case "up", "k":
		if m.orgCursor > 0 {
			m.orgCursor--
		}
	case "down", "j":
		if m.orgCursor < len(orgs)-1 {
			m.orgCursor++
		}
	case "enter":
		if m.orgCursor < len(orgs) {
			m.session.SelectOrganization(orgs[m.orgCursor].ID)
			return m.gotoApp()
		}
	case "n":
		return m.gotoOrgCreate()
	case "ctrl+l":
		return m.logout()
	case "q":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// updateOrgCreate drives the new-organization form. Esc goes back to the
// selection screen.
func (m Model) updateOrgCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" && !m.busy {
		return m.gotoOrgSelect(), nil
	}

	if m.form == nil || m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
		if m.form.State == huh.StateCompleted {
			name := m.form.GetString(fieldOrgName)
			domain := m.form.GetString(fieldOrgDomain)
			m.orgName = name
			m.busy = true
			m.errMsg = ""

			return m, func() tea.Msg {
				org, err := m.session.CreateOrganization(context.Background(), name, domain)
				return orgCreatedMsg{org: org, err: err}
			}
		}
	}
	return m, cmd
}

// updateApp drives the entity tables: tab cycles entities, r refreshes the
// active one, d deletes the highlighted row, ctrl+l signs out.
func (m Model) updateApp(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "tab", "right":
		m.activeTab = (m.activeTab + 1) % tabCount
		return m, nil
	case "shift+tab", "left":
		m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		return m, nil
	case "r":
		return m, m.refreshCmd(m.activeTab)
	case "d":
		if id := m.selectedRowID(); id != "" {
			return m, m.removeCmd(m.activeTab, id)
		}
		return m, nil
	case "ctrl+l":
		return m.logout()
	case "q":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)
	return m, cmd
}

// handleAppResult folds a finished collection command back into the model.
// A 401 that survived the refresh cycle means the session is gone, so the
// stage falls back to login.
func (m Model) handleAppResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	var tab entityTab
	var err error

	switch msg := msg.(type) {
	case collectionLoadedMsg:
		tab, err = msg.tab, msg.err
	case removeDoneMsg:
		tab, err = msg.tab, msg.err
	default:
		return m, nil
	}

	if err != nil {
		if m.sessionLost(err) {
			return m.gotoLogin()
		}
		m.errMsg = err.Error()
		return m, nil
	}

	m.tables[tab].SetRows(m.rowsFor(tab))
	return m, nil
}

// selectedRowID returns the id column of the highlighted row, or "".
func (m Model) selectedRowID() string {
	row := m.tables[m.activeTab].SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}
