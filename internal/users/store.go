package users

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrUserExists   = errors.New("user exists")
	ErrUserNotFound = errors.New("user not found")
)

// Store keeps username -> password credentials. Passwords are stored as
// given; there is no hashing.
type Store interface {
	Add(ctx context.Context, username, password string) error
	Get(ctx context.Context, username string) (string, error)
}

var _ Store = (*MemStore)(nil)

type MemStore struct {
	mutex     sync.RWMutex
	passwords map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		passwords: make(map[string]string),
	}
}

func (s *MemStore) Add(_ context.Context, username, password string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.passwords[username]; ok {
		return ErrUserExists
	}
	s.passwords[username] = password
	return nil
}

func (s *MemStore) Get(_ context.Context, username string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	password, ok := s.passwords[username]
	if !ok {
		return "", ErrUserNotFound
	}
	return password, nil
}
