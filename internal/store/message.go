package store

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/convo-lite/internal/models"
)

// appendLocked добавляет сообщение под уже взятым локом. Таймстемп
// не убывает в пределах комнаты, даже если часы шагнули назад.
func (s *Store) appendLocked(roomID, senderID, senderName, content string, typ models.MessageType) *models.Message {
	ts := time.Now()
	if last, ok := s.lastStamp[roomID]; ok && ts.Before(last) {
		ts = last
	}
	s.lastStamp[roomID] = ts

	msg := &models.Message{
		ID:         uuid.NewString(),
		Content:    content,
		SenderID:   senderID,
		SenderName: senderName,
		Timestamp:  ts,
		RoomID:     roomID,
		Type:       typ,
	}

	s.messages[msg.ID] = msg
	s.roomMessages[roomID] = append(s.roomMessages[roomID], msg.ID)

	if room, ok := s.rooms[roomID]; ok {
		room.LastMessageID = msg.ID
	}

	return copyMessage(msg)
}

// AppendMessage сохраняет пользовательское сообщение.
// Возвращает nil, если отправитель не существует.
func (s *Store) AppendMessage(roomID, senderID, content string) *models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.users[senderID]
	if !ok {
		return nil
	}

	return s.appendLocked(roomID, senderID, sender.Username, content, models.MessageText)
}

// AppendSystemMessage сохраняет синтетическое сообщение от имени system
func (s *Store) AppendSystemMessage(roomID, content string) *models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLocked(roomID, models.SystemSenderID, "System", content, models.MessageSystem)
}

func (s *Store) MessageByID(id string) *models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil
	}
	return copyMessage(msg)
}

// MessagesByRoom отдает срез истории комнаты в порядке добавления
func (s *Store) MessagesByRoom(roomID string, limit, offset int) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.roomMessages[roomID]
	if offset >= len(ids) {
		return []*models.Message{}
	}

	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	out := make([]*models.Message, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, copyMessage(s.messages[id]))
	}
	return out
}

func (s *Store) RecentMessages(limit int) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		out = append(out, copyMessage(msg))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) MessagesByUser(userID string, limit int) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Message, 0)
	for _, msg := range s.messages {
		if msg.SenderID == userID {
			out = append(out, copyMessage(msg))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DeleteMessage удаляет сообщение, если userID его автор
func (s *Store) DeleteMessage(messageID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[messageID]
	if !ok || msg.SenderID != userID {
		return false
	}

	delete(s.messages, messageID)

	ids := s.roomMessages[msg.RoomID]
	for i, id := range ids {
		if id == messageID {
			s.roomMessages[msg.RoomID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	return true
}

func (s *Store) SearchMessages(query, roomID string) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(query)
	out := make([]*models.Message, 0)
	for _, msg := range s.messages {
		if roomID != "" && msg.RoomID != roomID {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Content), term) ||
			strings.Contains(strings.ToLower(msg.SenderName), term) {
			out = append(out, copyMessage(msg))
		}
	}
	return out
}

func (s *Store) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *Store) RoomMessageCount(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roomMessages[roomID])
}
