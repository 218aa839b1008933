// Package cmd wires the flux command surface: authentication, organization
// management, CRM resource CRUD, and the interactive TUI.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxcrm/flux/internal/config"
	"github.com/fluxcrm/flux/internal/log"
	"github.com/fluxcrm/flux/internal/session"
	"github.com/fluxcrm/flux/internal/store"
	"github.com/fluxcrm/flux/internal/ux"
)

var rootCmd = &cobra.Command{
	Use:   "flux",
	Short: "Terminal client for the Flux CRM",
	Long: `flux is the terminal client for the Flux CRM platform.

It manages your session (sign in, organizations) and gives you scriptable
access to accounts, contacts, deals, tasks, and pipeline stages. Run
'flux ui' for the full-screen interactive client.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return ux.EnhanceError(err)
}

// app bundles everything a command needs: configuration, logging, and the
// session controller with its gateway client.
type app struct {
	cfg    config.Config
	logger *log.Logger
	ctrl   *session.Controller
}

// newApp builds the per-invocation application state. The session is hydrated
// from the store but not verified; the gateway's refresh path catches stale
// tokens on first use.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: os.Stderr,
	})
	log.SetDefaultLogger(logger)

	var st store.Store
	if cfg.NoPersist {
		st = store.NewMemoryStore()
	} else {
		path, err := store.DefaultPath()
		if err != nil {
			return nil, err
		}
		st = store.NewFileStore(path)
	}

	ctrl := session.NewController(cfg.APIURL, st, logger)
	ctrl.Hydrate()

	return &app{cfg: cfg, logger: logger, ctrl: ctrl}, nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
