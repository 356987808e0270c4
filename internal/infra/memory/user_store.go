package memory

import (
	"context"
	"sync"

	"quizboard/internal/domain"
)

// UserStore keeps accounts keyed by username.
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[user.Username]; taken {
		return domain.User{}, domain.ErrDuplicateUsername
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.Username] = user
	return user, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// Username resolves an id, for joining results in the ledger.
func (s *UserStore) Username(userID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ID == userID {
			return user.Username, true
		}
	}
	return "", false
}
