package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestFile(t *testing.T) {
	exerciseStorage(t, NewFile(filepath.Join(t.TempDir(), "session"), 0))
}

func TestFileCreatesDirOnWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "session")
	f := NewFile(dir, 0)

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected no directory before first write, got %v", err)
	}
	if err := f.SetItem("todos", "[]"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "todos.json")); err != nil {
		t.Errorf("expected item file: %v", err)
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	if err := NewFile(dir, 0).SetItem("todos", `["x"]`); err != nil {
		t.Fatal(err)
	}

	v, ok, err := NewFile(dir, 0).GetItem("todos")
	if err != nil || !ok {
		t.Fatalf("GetItem after reopen: ok=%v err=%v", ok, err)
	}
	if v != `["x"]` {
		t.Errorf("got %q, want %q", v, `["x"]`)
	}
}

func TestFileQuota(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	f := NewFile(dir, 30)

	if err := f.SetItem("a", strings.Repeat("x", 20)); err != nil {
		t.Fatalf("SetItem within quota failed: %v", err)
	}
	err := f.SetItem("b", strings.Repeat("y", 20))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if _, ok, _ := f.GetItem("b"); ok {
		t.Error("rejected write must not be stored")
	}
	// Overwriting the same key does not count its old size.
	if err := f.SetItem("a", strings.Repeat("z", 25)); err != nil {
		t.Errorf("overwrite within quota failed: %v", err)
	}
}

func TestFileUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}
	f := NewFile(filepath.Join(blocker, "session"), 0)

	err := f.SetItem("todos", "[]")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFileKeys(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "session"), 0)

	keys, err := f.Keys()
	if err != nil {
		t.Fatalf("Keys on missing dir: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}

	for _, k := range []string{"todos", "a/b"} {
		if err := f.SetItem(k, "1"); err != nil {
			t.Fatal(err)
		}
	}
	keys, err = f.Keys()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(keys)
	if strings.Join(keys, ",") != "a/b,todos" {
		t.Errorf("Keys: got %v, want [a/b todos]", keys)
	}
}
