package dto

import (
	"encoding/json"

	"github.com/thereayou/convo-lite/internal/models"
)

// Входящие payload'ы протокола

type IdentifyPayload struct {
	UserID string `json:"userId"`
}

type SendMessagePayload struct {
	Content string `json:"content"`
	RoomID  string `json:"roomId"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// Исходящие payload'ы

type IdentifiedPayload struct {
	User  *models.User   `json:"user"`
	Rooms []*models.Room `json:"rooms"`
}

type PresencePayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type MemberEventPayload struct {
	UserID   string `json:"userId"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type TypingPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	RoomID   string `json:"roomId"`
}

type RoomDeletedPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

// DecodeUserID принимает и голую строку, и объект {userId}
func DecodeUserID(data json.RawMessage) string {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain
	}

	var payload IdentifyPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		return payload.UserID
	}
	return ""
}

// DecodeRoomID принимает и голую строку, и объект {roomId}
func DecodeRoomID(data json.RawMessage) string {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain
	}

	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		return payload.RoomID
	}
	return ""
}
