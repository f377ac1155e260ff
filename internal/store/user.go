package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/convo-lite/internal/models"
)

// CreateUser возвращает nil, если username или email уже заняты
func (s *Store) CreateUser(username, email, passwordHash string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernameIdx[username]; taken {
		return nil
	}
	if _, taken := s.emailIndex[email]; taken {
		return nil
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastSeen:     now,
	}

	s.users[user.ID] = user
	s.emailIndex[email] = user.ID
	s.usernameIdx[username] = user.ID

	return copyUser(user)
}

func (s *Store) UserByID(id string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil
	}
	return copyUser(user)
}

func (s *Store) UserByEmail(email string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return nil
	}
	return copyUser(s.users[id])
}

func (s *Store) UserByUsername(username string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernameIdx[username]
	if !ok {
		return nil
	}
	return copyUser(s.users[id])
}

func (s *Store) Users() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	return users
}

func (s *Store) OnlineUsers() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0)
	for _, u := range s.users {
		if u.IsOnline {
			users = append(users, copyUser(u))
		}
	}
	return users
}

// SetOnline переключает присутствие и обновляет last seen одним шагом
func (s *Store) SetOnline(userID string, online bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return false
	}

	user.IsOnline = online
	user.LastSeen = time.Now()
	return true
}

func (s *Store) TouchLastSeen(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return false
	}

	user.LastSeen = time.Now()
	return true
}

func (s *Store) DeleteUser(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return false
	}

	delete(s.emailIndex, user.Email)
	delete(s.usernameIdx, user.Username)
	delete(s.users, userID)
	delete(s.sessions, userID)

	// Убираем пользователя из всех комнат
	for _, room := range s.rooms {
		for i, id := range room.Participants {
			if id == userID {
				room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
				break
			}
		}
	}

	return true
}

func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, u := range s.users {
		if u.IsOnline {
			n++
		}
	}
	return n
}
