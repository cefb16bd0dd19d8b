package testutil

import (
	"context"
	"sync"

	"fortress-go/internal/fortress"
	"fortress-go/internal/storage"
)

// NewTestStore creates an empty in-memory store.
func NewTestStore() *storage.MemoryStore {
	return storage.NewMemoryStore()
}

// FaultyStore wraps a Store and fails Get, Set or Delete on demand.
type FaultyStore struct {
	fortress.Store

	mu     sync.Mutex
	getErr error
	setErr error
	delErr error
	sets   int
}

func NewFaultyStore(inner fortress.Store) *FaultyStore {
	return &FaultyStore{Store: inner}
}

// FailGets makes every Get return err until cleared with nil.
func (s *FaultyStore) FailGets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailSets makes every Set return err until cleared with nil.
func (s *FaultyStore) FailSets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// FailDeletes makes every Delete return err until cleared with nil.
func (s *FaultyStore) FailDeletes(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delErr = err
}

// Sets returns the number of successful Set calls.
func (s *FaultyStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func (s *FaultyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return s.Store.Get(ctx, key)
}

func (s *FaultyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	if err := s.Store.Set(ctx, key, value); err != nil {
		return err
	}
	s.sets++
	return nil
}

func (s *FaultyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	err := s.delErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, key)
}
