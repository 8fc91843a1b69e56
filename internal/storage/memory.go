package storage

import "sync"

// Memory keeps values for the lifetime of the process.
type Memory struct {
	mu    sync.Mutex
	items map[string]string
	used  int64
	quota int64
}

// NewMemory returns an empty in-memory medium. A quota of zero or less means
// DefaultQuotaBytes.
func NewMemory(quota int64) *Memory {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	return &Memory{
		items: make(map[string]string),
		quota: quota,
	}
}

// GetItem implements Storage.
func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Storage.
func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used
	if old, ok := m.items[key]; ok {
		used -= itemSize(key, old)
	}
	used += itemSize(key, value)
	if used > m.quota {
		return quotaError(used, m.quota)
	}
	m.items[key] = value
	m.used = used
	return nil
}

// RemoveItem implements Storage.
func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.items[key]; ok {
		m.used -= itemSize(key, old)
		delete(m.items, key)
	}
	return nil
}

// Clear implements Storage.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]string)
	m.used = 0
	return nil
}

// Close implements Storage.
func (m *Memory) Close() error {
	return nil
}

// Used returns the bytes currently stored.
func (m *Memory) Used() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}
