// Package app wires the pieces together: config, engine client, remote
// store, job tracker, and the Bubble Tea front end.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ketchdev/ketch/internal/logging/events"
	"github.com/ketchdev/ketch/internal/rclone"
	"github.com/ketchdev/ketch/internal/remote"
	"github.com/ketchdev/ketch/internal/tracker"
	"github.com/ketchdev/ketch/internal/ui"
	"github.com/ketchdev/ketch/internal/ui/command"
)

// Config describes user-provided application options.
type Config struct {
	Addr                  string
	RemotesFile           string
	Width                 int
	Height                int
	ShowFooter            bool
	Verbose               bool
	HideBanner            bool
	PollInterval          time.Duration
	IgnoreDuplicateRemote bool
	AutoSave              bool
}

const banner = "ketch — rclone sync runner"

// Run bootstraps and executes the Bubble Tea program. It returns once the
// front end has exited and the tracker worker has been joined.
func Run(cfg Config) error {
	path := cfg.RemotesFile
	if path == "" {
		defaultPath, err := remote.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve remotes file: %w", err)
		}
		path = defaultPath
	}
	store, err := remote.Load(path)
	if err != nil {
		return fmt.Errorf("load remotes from %s: %w", path, err)
	}

	client := rclone.New(cfg.Addr)
	if err := initEngine(client); err != nil {
		return err
	}

	names, err := client.ListRemotes()
	if err != nil {
		return fmt.Errorf("list engine remotes: %w", err)
	}
	merged := store.Merge(names, cfg.IgnoreDuplicateRemote)
	events.App.Seeded(merged, store.Len())

	if store.Len() == 0 {
		return errors.New("No remote found; configure one in rclone or add one to " + path)
	}
	if cfg.AutoSave {
		if err := store.Save(); err != nil {
			return fmt.Errorf("save remotes to %s: %w", path, err)
		}
	}

	if !cfg.HideBanner {
		fmt.Fprintln(os.Stderr, banner)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trk := tracker.New(client, cfg.PollInterval)
	trk.Start(ctx)
	bus := command.New(trk.Commands(), trk.Events())

	model := ui.NewModel(store, bus, cfg.Width, cfg.Height, cfg.ShowFooter, cfg.Verbose)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := program.Run()

	// The worker stops on the Shutdown command the model sends when quitting;
	// a second Shutdown here covers paths where the program died first.
	bus.Shutdown()
	workerErr := trk.Join()
	events.App.Shutdown(workerErr)

	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}
	if err := model.Err(); err != nil {
		return err
	}
	return workerErr
}

// initEngine quiets the engine's own logging and probes the configuration.
// An encrypted config the engine cannot decrypt surfaces here instead of on
// the first sync.
func initEngine(client *rclone.Client) error {
	opts := map[string]interface{}{
		"main": map[string]interface{}{
			"LogLevel":    "CRITICAL",
			"AskPassword": false,
		},
	}
	if err := client.SetOptions(opts); err != nil {
		return fmt.Errorf("configure engine: %w", err)
	}
	if _, err := client.DumpConfig(); err != nil {
		if strings.Contains(err.Error(), "password") || strings.Contains(err.Error(), "encrypted") {
			return fmt.Errorf("engine configuration is encrypted and no password is available: %w", err)
		}
		return fmt.Errorf("probe engine configuration: %w", err)
	}
	return nil
}
