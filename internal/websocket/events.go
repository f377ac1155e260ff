package websocket

import (
	"encoding/json"
	"time"
)

// EventType определяет типы событий протокола
type EventType string

const (
	// Входящие
	TypeIdentify    EventType = "identify"
	TypeEndSession  EventType = "endSession"
	TypeSendMessage EventType = "sendMessage"
	TypeJoinRoom    EventType = "joinRoom"
	TypeLeaveRoom   EventType = "leaveRoom"
	TypeTypingStart EventType = "typingStart"
	TypeTypingStop  EventType = "typingStop"

	// Исходящие
	TypeIdentified      EventType = "identified"
	TypePresenceOnline  EventType = "presenceOnline"
	TypePresenceOffline EventType = "presenceOffline"
	TypeMessageReceived EventType = "messageReceived"
	TypeMemberJoined    EventType = "memberJoined"
	TypeMemberLeft      EventType = "memberLeft"
	TypeTypingStarted   EventType = "typingStarted"
	TypeTypingStopped   EventType = "typingStopped"
	TypeRoomJoined      EventType = "roomJoined"
	TypeRoomLeft        EventType = "roomLeft"
	TypeRoomDeleted     EventType = "roomDeleted"
	TypeError           EventType = "error"
)

type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Encode собирает событие с полезной нагрузкой в wire-формат
func Encode(eventType EventType, payload interface{}) ([]byte, error) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Data = data
	}

	return json.Marshal(event)
}
