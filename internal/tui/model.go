// Package tui implements the interactive client: a Bubble Tea program that
// drives the five screens of the Flux client (login, register, organization
// select, organization create, app) from session state and user navigation.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/fluxcrm/flux/internal/api"
	"github.com/fluxcrm/flux/internal/crm"
	"github.com/fluxcrm/flux/internal/session"
)

// Stage identifies which screen is visible. Exactly one stage is active at a
// time; it is derived from session validity and navigation, never persisted.
type Stage int

// Stage constants
const (
	// StageBoot renders nothing until the stored session resolves
	StageBoot Stage = iota
	// StageLogin is the email/password sign-in screen
	StageLogin
	// StageRegister is the account creation screen
	StageRegister
	// StageOrgSelect lists organization memberships
	StageOrgSelect
	// StageOrgCreate is the new-organization form
	StageOrgCreate
	// StageApp is the CRM screen with the entity tables
	StageApp
)

// String returns the string representation of the stage
func (s Stage) String() string {
	switch s {
	case StageBoot:
		return "boot"
	case StageLogin:
		return "login"
	case StageRegister:
		return "register"
	case StageOrgSelect:
		return "orgSelect"
	case StageOrgCreate:
		return "orgCreate"
	case StageApp:
		return "app"
	default:
		return "unknown"
	}
}

// entityTab indexes the app screen's resource tabs.
type entityTab int

const (
	tabAccounts entityTab = iota
	tabContacts
	tabDeals
	tabTasks
	tabStages
	tabCount
)

var tabTitles = [tabCount]string{"Accounts", "Contacts", "Deals", "Tasks", "Stages"}

// Model is the Bubble Tea model for the full-screen client.
type Model struct {
	session *session.Controller

	accounts *crm.Collection[crm.Account]
	contacts *crm.Collection[crm.Contact]
	deals    *crm.Collection[crm.Deal]
	tasks    *crm.Collection[crm.Task]
	stages   *crm.Collection[crm.PipelineStage]

	stage Stage
	form  *huh.Form

	// Remembered between form rebuilds.
	email   string
	orgName string

	// Org-select cursor.
	orgCursor int

	// App screen state.
	activeTab entityTab
	tables    [tabCount]table.Model

	width    int
	height   int
	busy     bool
	errMsg   string
	quitting bool

	styles Styles
}

// NewModel creates the client model bound to a session controller.
func NewModel(ctrl *session.Controller) Model {
	client := ctrl.Client()
	m := Model{
		session:  ctrl,
		accounts: crm.Accounts(client),
		contacts: crm.Contacts(client),
		deals:    crm.Deals(client),
		tasks:    crm.Tasks(client),
		stages:   crm.PipelineStages(client),
		stage:    StageBoot,
		styles:   DefaultStyles(),
	}
	for i := range m.tables {
		m.tables[i] = newEntityTable(entityTab(i))
	}
	return m
}

// Stage returns the currently visible stage.
func (m Model) Stage() Stage {
	return m.stage
}

// Messages resolved by background commands.

type bootstrapDoneMsg struct {
	result session.BootstrapResult
	err    error
}

type authDoneMsg struct{ err error }

type orgCreatedMsg struct {
	org session.Membership
	err error
}

type collectionLoadedMsg struct {
	tab entityTab
	err error
}

type removeDoneMsg struct {
	tab entityTab
	err error
}

// Init kicks off the bootstrap sequence (required by Bubble Tea).
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		result, err := m.session.Bootstrap(context.Background())
		return bootstrapDoneMsg{result: result, err: err}
	}
}

// Update handles messages and drives the stage transitions (required by
// Bubble Tea). All network work happens in commands; Update itself stays
// single-threaded.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.tables {
			m.tables[i].SetHeight(max(4, m.height-8))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case bootstrapDoneMsg:
		// Bootstrap failure is not an error to surface: the stored session
		// is simply invalid and the user signs in again.
		if msg.err != nil || !msg.result.Authenticated {
			return m.gotoLogin()
		}
		if msg.result.OrgSelected {
			return m.gotoApp()
		}
		return m.gotoOrgSelect(), nil

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m.rebuildAuthForm()
		}
		return m.gotoOrgSelect(), nil

	case orgCreatedMsg:
		m.busy = false
		if msg.err != nil {
			if m.sessionLost(msg.err) {
				return m.gotoLogin()
			}
			m.errMsg = msg.err.Error()
			return m.rebuildOrgForm()
		}
		return m.gotoApp()

	case collectionLoadedMsg, removeDoneMsg:
		return m.handleAppResult(msg)
	}

	switch m.stage {
	case StageLogin, StageRegister:
		return m.updateAuth(msg)
	case StageOrgSelect:
		return m.updateOrgSelect(msg)
	case StageOrgCreate:
		return m.updateOrgCreate(msg)
	case StageApp:
		return m.updateApp(msg)
	}

	return m, nil
}

// sessionLost reports whether an error means the session was torn down (a 401
// that survived the refresh cycle). Per the stage contract, any screen past
// login falls back to login when that happens.
func (m Model) sessionLost(err error) bool {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Kind == api.KindUnauthorized {
		return !m.session.Authenticated()
	}
	return false
}

// Stage entry helpers. Each clears transient state from the previous screen.

func (m Model) gotoLogin() (Model, tea.Cmd) {
	m.stage = StageLogin
	m.errMsg = ""
	m.busy = false
	m.form = newAuthForm(m.email, false)
	return m, m.form.Init()
}

func (m Model) gotoRegister() (Model, tea.Cmd) {
	m.stage = StageRegister
	m.errMsg = ""
	m.busy = false
	m.form = newAuthForm(m.email, true)
	return m, m.form.Init()
}

func (m Model) gotoOrgSelect() Model {
	m.stage = StageOrgSelect
	m.errMsg = ""
	m.busy = false
	m.orgCursor = 0
	m.form = nil
	return m
}

func (m Model) gotoOrgCreate() (Model, tea.Cmd) {
	m.stage = StageOrgCreate
	m.errMsg = ""
	m.busy = false
	m.orgName = ""
	m.form = newOrgForm(m.orgName)
	return m, m.form.Init()
}

// gotoApp enters the app screen and enables all five collections. Each loads
// independently; a failure in one leaves the others intact.
func (m Model) gotoApp() (Model, tea.Cmd) {
	m.stage = StageApp
	m.errMsg = ""
	m.busy = false
	m.form = nil
	m.activeTab = tabAccounts
	return m, tea.Batch(
		m.loadCmd(tabAccounts),
		m.loadCmd(tabContacts),
		m.loadCmd(tabDeals),
		m.loadCmd(tabTasks),
		m.loadCmd(tabStages),
	)
}

func (m Model) loadCmd(tab entityTab) tea.Cmd {
	return func() tea.Msg {
		var err error
		ctx := context.Background()
		switch tab {
		case tabAccounts:
			err = m.accounts.SetEnabled(ctx, true)
		case tabContacts:
			err = m.contacts.SetEnabled(ctx, true)
		case tabDeals:
			err = m.deals.SetEnabled(ctx, true)
		case tabTasks:
			err = m.tasks.SetEnabled(ctx, true)
		case tabStages:
			err = m.stages.SetEnabled(ctx, true)
		}
		return collectionLoadedMsg{tab: tab, err: err}
	}
}

func (m Model) refreshCmd(tab entityTab) tea.Cmd {
	return func() tea.Msg {
		var err error
		ctx := context.Background()
		switch tab {
		case tabAccounts:
			err = m.accounts.Refresh(ctx)
		case tabContacts:
			err = m.contacts.Refresh(ctx)
		case tabDeals:
			err = m.deals.Refresh(ctx)
		case tabTasks:
			err = m.tasks.Refresh(ctx)
		case tabStages:
			err = m.stages.Refresh(ctx)
		}
		return collectionLoadedMsg{tab: tab, err: err}
	}
}

func (m Model) removeCmd(tab entityTab, id string) tea.Cmd {
	return func() tea.Msg {
		var err error
		ctx := context.Background()
		switch tab {
		case tabAccounts:
			err = m.accounts.Remove(ctx, id)
		case tabContacts:
			err = m.contacts.Remove(ctx, id)
		case tabDeals:
			err = m.deals.Remove(ctx, id)
		case tabTasks:
			err = m.tasks.Remove(ctx, id)
		case tabStages:
			err = m.stages.Remove(ctx, id)
		}
		return removeDoneMsg{tab: tab, err: err}
	}
}

// logout tears the session down and lands on the login screen.
func (m Model) logout() (Model, tea.Cmd) {
	m.session.Logout()
	ctx := context.Background()
	_ = m.accounts.SetEnabled(ctx, false)
	_ = m.contacts.SetEnabled(ctx, false)
	_ = m.deals.SetEnabled(ctx, false)
	_ = m.tasks.SetEnabled(ctx, false)
	_ = m.stages.SetEnabled(ctx, false)
	return m.gotoLogin()
}
