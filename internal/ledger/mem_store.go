package ledger

import (
	"context"
	"slices"
	"sync"
)

var _ Store = (*MemStore)(nil)

type memEntry struct {
	mutex   sync.Mutex
	records []Record
}

// MemStore keeps histories in memory. Each user has its own lock, so appends
// for different users never wait on each other.
type MemStore struct {
	mutex   sync.RWMutex
	entries map[string]*memEntry
}

func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string]*memEntry),
	}
}

func (s *MemStore) get(username string) *memEntry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.entries[username]
}

func (s *MemStore) getOrCreate(username string) *memEntry {
	if e := s.get(username); e != nil {
		return e
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	e, ok := s.entries[username]
	if !ok {
		e = &memEntry{}
		s.entries[username] = e
	}
	return e
}

func (s *MemStore) Init(_ context.Context, username string) error {
	s.getOrCreate(username)
	return nil
}

func (s *MemStore) Append(_ context.Context, username string, rec Record) (int, error) {
	e := s.getOrCreate(username)

	e.mutex.Lock()
	defer e.mutex.Unlock()
	rec.ID = len(e.records) + 1
	e.records = append(e.records, rec)

	return rec.ID, nil
}

func (s *MemStore) History(_ context.Context, username string) ([]Record, error) {
	e := s.get(username)
	if e == nil {
		return []Record{}, nil
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	if len(e.records) == 0 {
		return []Record{}, nil
	}
	return slices.Clone(e.records), nil
}

func (s *MemStore) Clear(_ context.Context, username string) error {
	e := s.get(username)
	if e == nil {
		return nil
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.records = nil
	return nil
}
