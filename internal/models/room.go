package models

import (
	"time"
)

// GeneralRoomID комната, существующая с момента старта сервера
const GeneralRoomID = "general"

type Room struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	Participants  []string  `json:"participants"`
	IsPrivate     bool      `json:"isPrivate"`
	LastMessageID string    `json:"lastMessageId,omitempty"`
}

// HasParticipant проверяет, есть ли пользователь в комнате
func (r *Room) HasParticipant(userID string) bool {
	for _, id := range r.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
