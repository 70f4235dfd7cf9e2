package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// UserStore holds bcrypt password hashes by username
type UserStore struct {
	cost int

	mu     sync.RWMutex
	hashes map[string][]byte
}

// NewUserStore creates an empty store hashing with cost. Out of range costs
// fall back to bcrypt.DefaultCost.
func NewUserStore(cost int) *UserStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &UserStore{cost: cost, hashes: make(map[string][]byte)}
}

// Add registers username with password
func (s *UserStore) Add(username, password string) error {
	if username == "" {
		return errors.New("username is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hashes[username]; ok {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	}
	s.hashes[username] = hash
	return nil
}

// Verify checks password for username, returning ErrUserNotFound or ErrBadPassword
func (s *UserStore) Verify(username, password string) error {
	s.mu.RLock()
	hash, ok := s.hashes[username]
	s.mu.RUnlock()
	if !ok {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrBadPassword
		}
		return fmt.Errorf("%w: %v", ErrBadPassword, err)
	}
	return nil
}

// Exists reports whether username is registered
func (s *UserStore) Exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[username]
	return ok
}
