// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/nibzard/sessiontodo/internal/config"
	"github.com/nibzard/sessiontodo/internal/logging"
	"github.com/nibzard/sessiontodo/internal/storage"
	"github.com/nibzard/sessiontodo/internal/store"
	"github.com/nibzard/sessiontodo/internal/todo"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	runErr := fn()
	_ = w.Close()
	output := <-done
	_ = r.Close()

	return string(output), runErr
}

// testEnv isolates config, storage and logs in temp directories and returns
// the session directory base.
func testEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	sessions := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("SESSIONTODO_STORAGE", "file")
	t.Setenv("SESSIONTODO_STORAGE_KEY", "")
	t.Setenv(config.EnvSession, "test-session")
	t.Setenv("SESSIONTODO_SESSION_DIR", sessions)
	t.Setenv("SESSIONTODO_LOG_DIR", filepath.Join(home, "logs"))
	t.Setenv("SESSIONTODO_LOG_LEVEL", "error")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return sessions
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureStdout(t, func() error {
		return Run(context.Background(), args)
	})
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: unexpected error %v\noutput:\n%s", args, err, out)
	}
	return out
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	testEnv(t)

	t.Run("shows help with --help flag", func(t *testing.T) {
		out := mustRun(t, "--help")
		if !strings.Contains(out, "Commands:") {
			t.Errorf("expected usage, got %q", out)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		out := mustRun(t, "help")
		if !strings.Contains(out, "end-session") {
			t.Errorf("expected usage, got %q", out)
		}
	})

	t.Run("shows version with -v flag", func(t *testing.T) {
		out := mustRun(t, "-v")
		if !strings.Contains(out, "sessiontodo version") {
			t.Errorf("expected version, got %q", out)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		_, err := run(t, "unknown-command")
		if err == nil {
			t.Fatal("expected error for unknown command, got nil")
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("bad global flag returns error", func(t *testing.T) {
		if _, err := run(t, "-storage", "floppy", "ls"); err == nil {
			t.Error("expected error for unknown storage")
		}
	})

	t.Run("tui without a terminal returns error", func(t *testing.T) {
		_, err := run(t, "tui")
		if err == nil || !strings.Contains(err.Error(), "TTY") {
			t.Errorf("expected TTY error, got %v", err)
		}
	})
}

func TestMemoryStorageRejectedForOneShotCommands(t *testing.T) {
	testEnv(t)

	for _, args := range [][]string{
		{"-storage", "memory", "add", "lost"},
		{"-storage", "memory", "ls"},
		{"-storage", "MEMORY", "export"},
		{"-storage", "memory", "end-session"},
	} {
		_, err := run(t, args...)
		if err == nil || !strings.Contains(err.Error(), "memory storage") {
			t.Errorf("%v: expected memory storage error, got %v", args, err)
		}
	}

	out := mustRun(t, "-storage", "memory", "config")
	if !strings.Contains(out, "memory") {
		t.Errorf("config should still work with memory storage, got %q", out)
	}
}

// setLocal runs the rest of the test with time.Local set to the named zone.
func setLocal(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) error = %v", name, err)
	}
	old := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = old })
	return loc
}

func TestDueDateIsLocalDay(t *testing.T) {
	testEnv(t)
	newYork := setLocal(t, "America/New_York")

	today := time.Now().In(newYork).Format("2006-01-02")
	mustRun(t, "add", "-due", today, "pay rent")

	out := mustRun(t, "ls")
	if !strings.Contains(out, "(due "+today+")") {
		t.Errorf("expected due %s, got %q", today, out)
	}
	if strings.Contains(out, "OVERDUE") || strings.Contains(out, "overdue") {
		t.Errorf("task due today must not be overdue, got %q", out)
	}

	midnight, err := time.ParseInLocation("2006-01-02", today, newYork)
	if err != nil {
		t.Fatal(err)
	}
	out = mustRun(t, "export")
	want := `"dueDate": "` + todo.FormatTimestamp(midnight) + `"`
	if !strings.Contains(out, want) {
		t.Errorf("expected zone-qualified due date %s, got:\n%s", want, out)
	}
}

func TestEditDueDateIsZoneQualified(t *testing.T) {
	testEnv(t)
	newYork := setLocal(t, "America/New_York")

	mustRun(t, "add", "task")
	mustRun(t, "edit", "-due", "2025-07-01T17:00", "1")

	out := mustRun(t, "export")
	want := todo.FormatTimestamp(time.Date(2025, 7, 1, 17, 0, 0, 0, newYork))
	if want != "2025-07-01T21:00:00.000Z" {
		t.Fatalf("unexpected reference value %s", want)
	}
	if !strings.Contains(out, `"dueDate": "`+want+`"`) {
		t.Errorf("expected dueDate %s, got:\n%s", want, out)
	}
}

func TestTaskCommands(t *testing.T) {
	testEnv(t)

	out := mustRun(t, "ls")
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("expected empty list, got %q", out)
	}

	out = mustRun(t, "add", "-d", "2%", "Buy", "milk", "-due", "2025-07-01T00:00:00.000Z")
	if !strings.Contains(out, "Added 1: Buy milk") {
		t.Errorf("unexpected add output %q", out)
	}
	mustRun(t, "add", "Call mom")

	out = mustRun(t, "ls", "-v")
	for _, want := range []string{"1. [ ] Buy milk", "(due ", "2. [ ] Call mom", "2%", "2 open, 0 done"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "toggle", "2")
	if !strings.Contains(out, "Marked done: Call mom") {
		t.Errorf("unexpected toggle output %q", out)
	}

	mustRun(t, "edit", "1", "-clear-due", "-title", "Buy oat milk")
	out = mustRun(t, "ls")
	if strings.Contains(out, "due") {
		t.Errorf("due date should be cleared:\n%s", out)
	}
	if !strings.Contains(out, "Buy oat milk") || !strings.Contains(out, "[x] Call mom") {
		t.Errorf("unexpected list after edit:\n%s", out)
	}

	mustRun(t, "rm", "1")
	mustRun(t, "rm", "1")
	out = mustRun(t, "ls")
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("expected empty list after deleting everything, got %q", out)
	}
}

func TestTaskCommandErrors(t *testing.T) {
	testEnv(t)
	mustRun(t, "add", "only")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"add without title", []string{"add", "-d", "x"}, "title is required"},
		{"add with blank title", []string{"add", "   "}, "title is required"},
		{"add with bad due", []string{"add", "-due", "someday", "x"}, "invalid due date"},
		{"edit without changes", []string{"edit", "1"}, "nothing to change"},
		{"edit with empty title", []string{"edit", "-title", " ", "1"}, "title must not be empty"},
		{"edit with conflicting due", []string{"edit", "-due", "2025-01-01", "-clear-due", "1"}, "cannot be combined"},
		{"toggle unknown", []string{"toggle", "zzz"}, "no task matches"},
		{"rm without task", []string{"rm"}, "exactly one task"},
		{"ls with args", []string{"ls", "extra"}, "unexpected arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	testEnv(t)
	mustRun(t, "add", "first session task")

	t.Setenv(config.EnvSession, "other-session")
	out := mustRun(t, "ls")
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("new session should start empty, got %q", out)
	}
}

func TestExportCommand(t *testing.T) {
	testEnv(t)
	mustRun(t, "add", "-due", "2025-07-01", "Buy milk")
	due := todo.FormatTimestamp(time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local))

	out := mustRun(t, "export")
	if !strings.Contains(out, `"title": "Buy milk"`) || !strings.Contains(out, `"dueDate": "`+due+`"`) {
		t.Errorf("unexpected JSON export:\n%s", out)
	}

	out = mustRun(t, "export", "-format", "yaml")
	if !strings.Contains(out, "title: Buy milk") {
		t.Errorf("unexpected YAML export:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "tasks.json")
	mustRun(t, "export", "-o", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if !strings.Contains(string(data), "Buy milk") {
		t.Errorf("unexpected export file: %s", data)
	}

	if _, err := run(t, "export", "-format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCheckCommand(t *testing.T) {
	sessions := testEnv(t)

	out := mustRun(t, "check")
	if !strings.Contains(out, "Nothing stored yet") {
		t.Errorf("expected empty session report, got %q", out)
	}

	mustRun(t, "add", "fine")
	out = mustRun(t, "check")
	if !strings.Contains(out, "Valid") {
		t.Errorf("expected valid payload, got %q", out)
	}
	if !strings.Contains(out, "Schema: built-in") {
		t.Errorf("expected schema line, got %q", out)
	}

	st := storage.NewFile(filepath.Join(sessions, "test-session"), 0)
	if err := st.SetItem(config.DefaultStorageKey, "not json"); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "check")
	if err == nil {
		t.Fatalf("expected check to fail on a corrupt payload, output:\n%s", out)
	}
	if !strings.Contains(out, "discarded on load") {
		t.Errorf("expected discard warning, got %q", out)
	}
	if _, ok, _ := st.GetItem(config.DefaultStorageKey); !ok {
		t.Error("check must not remove the payload")
	}
}

func TestEndSessionCommand(t *testing.T) {
	sessions := testEnv(t)
	mustRun(t, "add", "a")
	mustRun(t, "add", "b")

	out := mustRun(t, "end-session")
	if !strings.Contains(out, "discarded 2 task(s)") {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(sessions, "test-session")); !os.IsNotExist(err) {
		t.Errorf("session directory should be removed, stat err = %v", err)
	}

	out = mustRun(t, "ls")
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("expected empty list after end-session, got %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	testEnv(t)

	out := mustRun(t, "-key", "work", "config")
	for _, want := range []string{"Config files: (none)", "storage_key", "work", "flag", "environment", "Effective session: test-session"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "config", "-example")
	if !strings.Contains(out, "[redis]") {
		t.Errorf("expected example config, got %q", out)
	}
}

func TestLogsCommand(t *testing.T) {
	testEnv(t)

	out := mustRun(t, "logs")
	if !strings.Contains(out, "No log files found.") {
		t.Errorf("expected no logs, got %q", out)
	}

	cfg, err := config.Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatal(err)
	}
	sessionLog, err := logging.NewSessionLog(cfg.LogDir, cfg.Session())
	if err != nil {
		t.Fatal(err)
	}
	logger := logging.New(sessionLog.Writer(), logging.DefaultOptions())
	logger.Info("tui started")
	logger.Info("tui stopped")
	sessionLog.Close()

	out = mustRun(t, "logs", "-n", "1")
	if !strings.Contains(out, "tui stopped") || strings.Contains(out, "tui started") {
		t.Errorf("expected only the last line, got %q", out)
	}
}

func TestResolveTask(t *testing.T) {
	ids := []string{"abc-1", "abd-2", "xyz-3"}
	i := 0
	st := store.New(&memoryPersistence{}, store.WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))
	for range ids {
		st.Add("t", "", "")
	}

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{"1", "abc-1", ""},
		{"3", "xyz-3", ""},
		{"abd-2", "abd-2", ""},
		{"xy", "xyz-3", ""},
		{"ab", "", "matches 2 tasks"},
		{"9", "", "no task matches"},
		{"", "", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveTask(st, tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("got %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	due := fs.String("due", "", "")
	verbose := fs.Bool("v", false, "")

	got, err := parseInterspersed(fs, []string{"Buy", "-due", "2025-07-01", "milk", "-v"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if strings.Join(got, " ") != "Buy milk" {
		t.Errorf("positional: got %v, want [Buy milk]", got)
	}
	if *due != "2025-07-01" || !*verbose {
		t.Errorf("flags not parsed: due=%q v=%v", *due, *verbose)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("got %q, want 01234567", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("got %q, want abc", got)
	}
}
