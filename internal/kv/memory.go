// Package kv holds slot stores used by the report store: an in-process map and Redis.
package kv

import (
	"context"
	"sync"
)

// Memory keeps slots in process. Contents are lost on restart.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Update(_ context.Context, key string, fn func(cur []byte, ok bool) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[key]
	next, err := fn(append([]byte(nil), cur...), ok)
	if err != nil {
		return err
	}
	if next != nil {
		m.data[key] = append([]byte(nil), next...)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
