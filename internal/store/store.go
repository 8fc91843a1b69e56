// Package store owns the in-memory task collection. Every change goes through
// a Store method, and every effective change is followed by exactly one save.
package store

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/sessiontodo/internal/logging"
	"github.com/nibzard/sessiontodo/internal/persist"
	"github.com/nibzard/sessiontodo/internal/todo"
)

// Persistence loads and saves the whole collection.
type Persistence interface {
	Load() []todo.Task
	Save(tasks []todo.Task) bool
	Err() error
}

// Store holds the task collection in insertion order.
type Store struct {
	persistence Persistence
	tasks       []todo.Task
	now         func() time.Time
	newID       func() string
	onFailure   func(message string)
	logger      *log.Logger
	lastSaveOK  bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the id source for new tasks.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithSaveFailureHandler registers a callback for failed saves. It receives a
// message suitable for showing to the user.
func WithSaveFailureHandler(fn func(message string)) Option {
	return func(s *Store) {
		s.onFailure = fn
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store and hydrates it from p.
func New(p Persistence, opts ...Option) *Store {
	s := &Store{
		persistence: p,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logging.Discard(),
		lastSaveOK:  true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks = p.Load()
	if s.tasks == nil {
		s.tasks = []todo.Task{}
	}
	s.logger.Debug("store hydrated", "tasks", len(s.tasks))
	return s
}

// Add appends a new open task and returns it. Titles are not validated here.
func (s *Store) Add(title, description, dueDate string) todo.Task {
	task := todo.Task{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   s.now(),
		DueDate:     dueDate,
	}
	s.tasks = append(s.tasks, task)
	s.save()
	return task
}

// Edit applies u to the task with id. Unknown ids are ignored.
func (s *Store) Edit(id string, u todo.Update) {
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("edit ignored, unknown id", "id", id)
		return
	}
	s.tasks[i] = u.Apply(s.tasks[i])
	s.save()
}

// ToggleCompletion flips the completed flag of the task with id.
func (s *Store) ToggleCompletion(id string) {
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("toggle ignored, unknown id", "id", id)
		return
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.save()
}

// Delete removes the task with id.
func (s *Store) Delete(id string) {
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("delete ignored, unknown id", "id", id)
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.save()
}

// Tasks returns a copy of the collection.
func (s *Store) Tasks() []todo.Task {
	out := make([]todo.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with id.
func (s *Store) Get(id string) (todo.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return todo.Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// LastSaveOK reports whether the most recent save succeeded.
func (s *Store) LastSaveOK() bool {
	return s.lastSaveOK
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) save() {
	s.lastSaveOK = s.persistence.Save(s.Tasks())
	if s.lastSaveOK {
		return
	}
	msg := persist.FailureMessage(s.persistence.Err())
	if msg == "" {
		msg = "Could not save tasks"
	}
	s.logger.Warn("changes not persisted", "tasks", len(s.tasks), "err", s.persistence.Err())
	if s.onFailure != nil {
		s.onFailure(msg)
	}
}
