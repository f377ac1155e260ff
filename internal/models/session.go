package models

import (
	"time"
)

// Session хранит запись о членстве пользователя в комнате.
// Не путать с сетевым соединением.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	RoomID     string    `json:"roomId"`
	JoinedAt   time.Time `json:"joinedAt"`
	LastReadAt time.Time `json:"lastReadAt"`
}
