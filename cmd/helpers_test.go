package cmd

import "github.com/nibzard/sessiontodo/internal/todo"

type memoryPersistence struct {
	tasks []todo.Task
}

func (m *memoryPersistence) Load() []todo.Task { return m.tasks }

func (m *memoryPersistence) Save(tasks []todo.Task) bool {
	m.tasks = tasks
	return true
}

func (m *memoryPersistence) Err() error { return nil }
