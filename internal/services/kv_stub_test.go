package services

import (
	"context"
	"errors"
	"sync"
)

type stubKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet error
	writes  int
}

func newStubKV() *stubKV { return &stubKV{data: map[string][]byte{}} }

func (s *stubKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, false, s.failGet
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubKV) Update(_ context.Context, key string, fn func([]byte, bool) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	s.writes++
	s.data[key] = next
	return nil
}

func (s *stubKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

var errStubDown = errors.New("store down")
