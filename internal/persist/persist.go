// Package persist loads and saves the task collection under a single storage
// key. It never returns errors to its callers: every failure is logged and
// reported through an empty load or a false save.
package persist

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/sessiontodo/internal/logging"
	"github.com/nibzard/sessiontodo/internal/storage"
	"github.com/nibzard/sessiontodo/internal/todo"
)

// DefaultKey is the storage key holding the task collection.
const DefaultKey = "todos"

// Persister reads and writes the task collection.
type Persister struct {
	storage storage.Storage
	key     string
	logger  *log.Logger
	now     func() time.Time
	lastErr error
}

// Option configures a Persister.
type Option func(*Persister)

// WithLogger sets the logger for dropped entries and swallowed failures.
func WithLogger(logger *log.Logger) Option {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the clock used to default unreadable createdAt values.
func WithClock(now func() time.Time) Option {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

// New returns a Persister for key on st. An empty key means DefaultKey.
func New(st storage.Storage, key string, opts ...Option) *Persister {
	if key == "" {
		key = DefaultKey
	}
	p := &Persister{
		storage: st,
		key:     key,
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the storage key in use.
func (p *Persister) Key() string {
	return p.key
}

// Raw returns the stored text as-is. ok is false when the key is absent.
func (p *Persister) Raw() (string, bool, error) {
	return p.storage.GetItem(p.key)
}

// Load returns the stored tasks. An absent key, an unreadable medium or a
// corrupt payload all yield an empty collection. A corrupt payload is also
// removed so the next session starts clean.
func (p *Persister) Load() []todo.Task {
	raw, ok, err := p.storage.GetItem(p.key)
	if err != nil {
		p.logger.Warn("could not read tasks", "key", p.key, "err", err)
		return []todo.Task{}
	}
	if !ok {
		p.logger.Debug("no stored tasks", "key", p.key)
		return []todo.Task{}
	}

	tasks, report, err := todo.Unmarshal([]byte(raw), p.now())
	if err != nil {
		p.logger.Warn("discarding corrupt task payload", "key", p.key, "err", err)
		if rmErr := p.storage.RemoveItem(p.key); rmErr != nil {
			p.logger.Warn("could not remove corrupt payload", "key", p.key, "err", rmErr)
		}
		return []todo.Task{}
	}

	if report.Dropped > 0 || report.DefaultedCreated > 0 || report.InvalidDue > 0 {
		p.logger.Warn("repaired stored tasks",
			"key", p.key,
			"tasks", report.Kept,
			"dropped", report.Dropped,
			"defaulted", report.DefaultedCreated,
			"invalid_due", report.InvalidDue,
		)
		for _, issue := range report.Issues {
			p.logger.Debug("task entry issue", "err", issue)
		}
	} else {
		p.logger.Debug("loaded tasks", "key", p.key, "tasks", report.Kept)
	}
	return tasks
}

// Save writes tasks under the key, replacing the previous value. It reports
// whether the write succeeded; Err holds the failure otherwise.
func (p *Persister) Save(tasks []todo.Task) bool {
	data, err := todo.Marshal(tasks)
	if err != nil {
		return p.fail(fmt.Errorf("encode tasks: %w", err))
	}
	if err := p.storage.SetItem(p.key, string(data)); err != nil {
		return p.fail(err)
	}
	p.lastErr = nil
	p.logger.Debug("saved tasks", "key", p.key, "tasks", len(tasks), "bytes", len(data))
	return true
}

// Err returns the failure of the most recent Save, or nil.
func (p *Persister) Err() error {
	return p.lastErr
}

func (p *Persister) fail(err error) bool {
	p.lastErr = err
	switch {
	case errors.Is(err, storage.ErrQuotaExceeded):
		p.logger.Warn("storage quota exceeded, tasks not saved", "key", p.key, "err", err)
	default:
		p.logger.Warn("could not save tasks", "key", p.key, "err", err)
	}
	return false
}

// FailureMessage renders a save failure for the notification layer.
func FailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, storage.ErrQuotaExceeded):
		return "Storage is full; changes are kept only until you quit"
	case errors.Is(err, storage.ErrUnavailable):
		return "Storage is unavailable; changes are kept only until you quit"
	default:
		return "Could not save tasks: " + err.Error()
	}
}
