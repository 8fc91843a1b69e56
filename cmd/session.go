package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/sessiontodo/internal/config"
	"github.com/nibzard/sessiontodo/internal/logging"
	"github.com/nibzard/sessiontodo/internal/persist"
	"github.com/nibzard/sessiontodo/internal/storage"
	"github.com/nibzard/sessiontodo/internal/store"
	"github.com/nibzard/sessiontodo/internal/todo"
)

// session bundles the storage medium, persister and store for one command.
// store is nil when only the storage was opened.
type session struct {
	storage   storage.Storage
	persister *persist.Persister
	store     *store.Store
	logger    *log.Logger
}

// openStorage opens the configured medium and a persister on it without
// loading anything. Logs go to w.
func openStorage(cfg *config.Config, w io.Writer) (*session, error) {
	logger := logging.NewFromConfig(w, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	storageOpts, err := cfg.StorageOptions()
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(storageOpts)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	logger.Debug("session opened", "storage", storageOpts.Kind, "session", storageOpts.SessionID)

	return &session{
		storage:   st,
		persister: persist.New(st, cfg.StorageKey, persist.WithLogger(logger)),
		logger:    logger,
	}, nil
}

// openSession opens the configured medium and hydrates a store from it.
func openSession(cfg *config.Config, w io.Writer, opts ...store.Option) (*session, error) {
	s, err := openStorage(cfg, w)
	if err != nil {
		return nil, err
	}
	opts = append([]store.Option{store.WithLogger(s.logger)}, opts...)
	s.store = store.New(s.persister, opts...)
	return s, nil
}

// openCLISession opens a session whose save failures are reported on stderr.
func openCLISession(cfg *config.Config) (*session, error) {
	return openSession(cfg, os.Stderr, store.WithSaveFailureHandler(func(message string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", message)
	}))
}

func (s *session) Close() error {
	return s.storage.Close()
}

// resolveTask finds a task by list number, exact id or unique id prefix.
func resolveTask(st *store.Store, ref string) (todo.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return todo.Task{}, fmt.Errorf("task reference is empty")
	}

	tasks := st.Tasks()
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1], nil
	}
	if task, ok := st.Get(ref); ok {
		return task, nil
	}

	var matches []todo.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return todo.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return todo.Task{}, fmt.Errorf("%q matches %d tasks; use more of the id", ref, len(matches))
	}
}

// normalizeDue converts a user-supplied due date to its stored form, reading
// dates and zoneless times in the local zone. Empty is allowed.
func normalizeDue(due string) (string, error) {
	normalized, err := todo.NormalizeDueDate(due, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid due date %q (use 2025-07-01, 2025-07-01T17:00 or RFC 3339)", due)
	}
	return normalized, nil
}
