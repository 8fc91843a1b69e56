package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nibzard/sessiontodo/internal/config"
	"github.com/nibzard/sessiontodo/internal/logging"
	"github.com/nibzard/sessiontodo/internal/store"
	"github.com/nibzard/sessiontodo/internal/ui"
)

// tuiCommand launches the TUI. Logs go to a session log file so they do not
// draw over the screen.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newCommandFlags("tui")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY; use 'sessiontodo ls' in scripts")
	}

	sessionLog, err := logging.NewSessionLog(cfg.LogDir, cfg.Session())
	if err != nil {
		return fmt.Errorf("creating session log: %w", err)
	}
	defer sessionLog.Close()

	toasts := &ui.Toasts{}
	s, err := openSession(cfg, sessionLog.Writer(), store.WithSaveFailureHandler(toasts.Push))
	if err != nil {
		return err
	}
	defer s.Close()

	s.logger.Info("tui started", "session", cfg.Session(), "tasks", s.store.Len())
	err = ui.RunTUI(ctx, s.store, toasts, ui.WithSession(cfg.Session()))
	s.logger.Info("tui stopped", "tasks", s.store.Len())
	return err
}
