package engine

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo caches one value per key, tagged with the content version it was
// computed for. A lookup with a newer version replaces the old entry.
// Concurrent misses for the same key and version share a single call.
type Memo[T any] struct {
	mu      sync.Mutex
	entries map[string]memoEntry[T]
	group   singleflight.Group
}

type memoEntry[T any] struct {
	version string
	value   T
}

// NewMemo creates an empty Memo.
func NewMemo[T any]() *Memo[T] {
	return &Memo[T]{entries: make(map[string]memoEntry[T])}
}

// Get returns the value cached for key at version, calling fn on a miss.
// Errors from fn are returned but never cached.
func (m *Memo[T]) Get(key, version string, fn func() (T, error)) (T, error) {
	m.mu.Lock()
	if e, ok := m.entries[key]; ok && e.version == version {
		m.mu.Unlock()
		return e.value, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(key+"\x00"+version, func() (any, error) {
		m.mu.Lock()
		if e, ok := m.entries[key]; ok && e.version == version {
			m.mu.Unlock()
			return e.value, nil
		}
		m.mu.Unlock()

		value, err := fn()
		if err != nil {
			return value, err
		}
		m.mu.Lock()
		m.entries[key] = memoEntry[T]{version: version, value: value}
		m.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Len returns the number of cached keys.
func (m *Memo[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
