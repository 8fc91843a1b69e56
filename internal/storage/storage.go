// Package storage provides session-scoped key/value media for task data.
//
// A session is the unit of persistence: values written during a session are
// visible to later runs in the same session and are discarded when the
// session ends. Three media are available:
//
//   - memory: lives as long as the process.
//   - file: one directory per session under a base directory.
//   - redis: one key prefix per session with a sliding TTL.
//
// Every medium enforces a capacity quota and reports ErrQuotaExceeded when a
// write would exceed it. Media that cannot be reached report errors wrapping
// ErrUnavailable.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultQuotaBytes matches the usual browser session storage allowance.
const DefaultQuotaBytes int64 = 5 * 1024 * 1024

var (
	// ErrQuotaExceeded is returned when a write would exceed the quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrUnavailable is wrapped by errors from media that cannot be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// Storage is a session-scoped key/value store of text values.
type Storage interface {
	// GetItem returns the value under key. ok is false when the key is absent.
	GetItem(key string) (value string, ok bool, err error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error
	// Clear ends the session, discarding every key.
	Clear() error
	// Close releases resources without discarding data.
	Close() error
}

// Kind names a storage medium.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindRedis  Kind = "redis"
)

// ParseKind validates a medium name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMemory:
		return KindMemory, nil
	case KindFile, "":
		return KindFile, nil
	case KindRedis:
		return KindRedis, nil
	default:
		return "", fmt.Errorf("unknown storage %q (use memory, file or redis)", s)
	}
}

// RedisOptions configures the redis medium.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Options selects and configures a medium.
type Options struct {
	Kind       Kind
	SessionID  string
	Dir        string // base directory for the file medium
	QuotaBytes int64
	Redis      RedisOptions
}

// Open returns the medium described by opts.
func Open(opts Options) (Storage, error) {
	session := SanitizeSessionID(opts.SessionID)
	if session == "" {
		session = DefaultSessionID()
	}
	quota := opts.QuotaBytes
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}

	switch opts.Kind {
	case KindMemory:
		return NewMemory(quota), nil
	case KindFile, "":
		base := opts.Dir
		if base == "" {
			base = DefaultDir()
		}
		return NewFile(filepath.Join(base, session), quota), nil
	case KindRedis:
		if opts.Redis.Addr == "" {
			return nil, fmt.Errorf("redis storage requires an address")
		}
		return NewRedis(opts.Redis, session, quota), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", opts.Kind)
	}
}

// DefaultDir is the base directory for session directories.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "sessiontodo")
}

// DefaultSessionID identifies the invoking shell, so each new shell starts a
// new session.
func DefaultSessionID() string {
	return fmt.Sprintf("ppid-%d", os.Getppid())
}

// SanitizeSessionID makes a session id safe for paths and key prefixes.
func SanitizeSessionID(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '_' || c == '-' || c == '.'
		if !valid {
			b.WriteByte('_')
			continue
		}
		b.WriteByte(c)
	}

	id := strings.Trim(b.String(), "_.")
	return id
}

func itemSize(key, value string) int64 {
	return int64(len(key) + len(value))
}

func quotaError(need, quota int64) error {
	return fmt.Errorf("%w: need %d bytes, quota is %d", ErrQuotaExceeded, need, quota)
}
