package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Form field keys, read back with form.GetString after completion.
const (
	fieldEmail     = "email"
	fieldPassword  = "password"
	fieldOrgName   = "name"
	fieldOrgDomain = "domain"
)

// newAuthForm builds the login or register form. The same two fields serve
// both screens; only the title differs. Values are read back by key since the
// model is copied on every update.
func newAuthForm(initialEmail string, register bool) *huh.Form {
	title := "Sign in to Flux"
	if register {
		title = "Create your Flux account"
	}

	email := initialEmail
	password := ""

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(fieldEmail).
				Title("Email").
				Placeholder("you@company.com").
				Value(&email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Key(fieldPassword).
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}),
		).Title(title),
	)
}

// newOrgForm builds the organization creation form.
func newOrgForm(initialName string) *huh.Form {
	name := initialName
	domain := ""

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(fieldOrgName).
				Title("Organization name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Key(fieldOrgDomain).
				Title("Domain (optional)").
				Placeholder("acme.com").
				Value(&domain),
		).Title("Create an organization"),
	)
}

// rebuildAuthForm recreates the form after a failed attempt so the inputs
// become editable again, keeping the typed email.
func (m Model) rebuildAuthForm() (Model, tea.Cmd) {
	m.form = newAuthForm(m.email, m.stage == StageRegister)
	return m, m.form.Init()
}

func (m Model) rebuildOrgForm() (Model, tea.Cmd) {
	m.form = newOrgForm(m.orgName)
	return m, m.form.Init()
}
