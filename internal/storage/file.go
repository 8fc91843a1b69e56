package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const itemExt = ".json"

// File keeps each key in its own file inside a session directory.
type File struct {
	mu    sync.Mutex
	dir   string
	quota int64
}

// NewFile returns a medium rooted at dir. The directory is created on the
// first write.
func NewFile(dir string, quota int64) *File {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	return &File{dir: dir, quota: quota}
}

// Dir returns the session directory.
func (f *File) Dir() string {
	return f.dir
}

// GetItem implements Storage.
func (f *File) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: read %s: %v", ErrUnavailable, key, err)
	}
	return string(data), true, nil
}

// SetItem implements Storage. The write goes through a temporary file so a
// failed write never leaves a truncated value behind.
func (f *File) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("%w: create session dir: %v", ErrUnavailable, err)
	}

	used, err := f.usedExcept(key)
	if err != nil {
		return err
	}
	need := used + itemSize(key, value)
	if need > f.quota {
		return quotaError(need, f.quota)
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrUnavailable, key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// RemoveItem implements Storage.
func (f *File) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Clear implements Storage by removing the session directory.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.RemoveAll(f.dir); err != nil {
		return fmt.Errorf("%w: remove session dir: %v", ErrUnavailable, err)
	}
	return nil
}

// Close implements Storage.
func (f *File) Close() error {
	return nil
}

// Keys lists the stored keys.
func (f *File) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read session dir: %v", ErrUnavailable, err)
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, itemExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, itemExt))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+itemExt)
}

// usedExcept sums stored keys and values other than key.
func (f *File) usedExcept(key string) (int64, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("%w: read session dir: %v", ErrUnavailable, err)
	}
	skip := filepath.Base(f.path(key))
	var used int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == skip || !strings.HasSuffix(name, itemExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stored, err := url.PathUnescape(strings.TrimSuffix(name, itemExt))
		if err != nil {
			stored = name
		}
		used += int64(len(stored)) + info.Size()
	}
	return used, nil
}
