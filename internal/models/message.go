package models

import (
	"time"
)

type MessageType string

const (
	MessageText         MessageType = "text"
	MessageSystem       MessageType = "system"
	MessageNotification MessageType = "notification"
)

// SystemSenderID зарезервированный отправитель системных сообщений
const SystemSenderID = "system"

type Message struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	SenderID   string      `json:"senderId"`
	SenderName string      `json:"senderName"`
	Timestamp  time.Time   `json:"timestamp"`
	RoomID     string      `json:"roomId"`
	Type       MessageType `json:"type"`
}
