package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/convo-lite/internal/models"
)

func (s *Store) AddRoom(name, description string, isPrivate bool) *models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := &models.Room{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
		IsPrivate:   isPrivate,
	}
	s.rooms[room.ID] = room

	return copyRoom(room)
}

func (s *Store) RoomByID(id string) *models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil
	}
	return copyRoom(room)
}

func (s *Store) Rooms() []*models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, copyRoom(r))
	}
	return rooms
}

func (s *Store) PublicRooms() []*models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*models.Room, 0)
	for _, r := range s.rooms {
		if !r.IsPrivate {
			rooms = append(rooms, copyRoom(r))
		}
	}
	return rooms
}

func (s *Store) RoomsOfUser(userID string) []*models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*models.Room, 0)
	for _, r := range s.rooms {
		if r.HasParticipant(userID) {
			rooms = append(rooms, copyRoom(r))
		}
	}
	return rooms
}

// AddParticipant добавляет участника и сессию одним атомарным шагом.
// Повторное добавление считается успехом и ничего не меняет.
func (s *Store) AddParticipant(roomID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := s.users[userID]; !ok {
		return false
	}

	if room.HasParticipant(userID) {
		return true
	}

	room.Participants = append(room.Participants, userID)

	now := time.Now()
	if s.sessions[userID] == nil {
		s.sessions[userID] = make(map[string]*models.Session)
	}
	s.sessions[userID][roomID] = &models.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		RoomID:     roomID,
		JoinedAt:   now,
		LastReadAt: now,
	}

	return true
}

// RemoveParticipant убирает участника вместе с его сессией
func (s *Store) RemoveParticipant(roomID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}

	for i, id := range room.Participants {
		if id == userID {
			room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
			delete(s.sessions[userID], roomID)
			return true
		}
	}
	return false
}

// RemoveRoom удаляет комнату и все сессии, ссылающиеся на нее
func (s *Store) RemoveRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return false
	}

	delete(s.rooms, roomID)
	for _, byRoom := range s.sessions {
		delete(byRoom, roomID)
	}

	return true
}

// Participants отдает текущий состав комнаты на момент вызова
func (s *Store) Participants(roomID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return append([]string(nil), room.Participants...)
}

func (s *Store) SessionOf(userID, roomID string) *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID][roomID]
	if !ok {
		return nil
	}
	return copySession(sess)
}

func (s *Store) SessionsOfUser(userID string) []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Session, 0, len(s.sessions[userID]))
	for _, sess := range s.sessions[userID] {
		out = append(out, copySession(sess))
	}
	return out
}

func (s *Store) SessionsOfRoom(roomID string) []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Session, 0)
	for _, byRoom := range s.sessions {
		if sess, ok := byRoom[roomID]; ok {
			out = append(out, copySession(sess))
		}
	}
	return out
}

func (s *Store) UpdateLastRead(userID, roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID][roomID]
	if !ok {
		return false
	}

	sess.LastReadAt = time.Now()
	return true
}

func (s *Store) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *Store) ParticipantCount(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return 0
	}
	return len(room.Participants)
}
