package store

import (
	"sync"
	"time"

	"github.com/thereayou/convo-lite/internal/models"
)

// Store авторитетное in-memory хранилище. Вся работа с данными идет
// через него, сетевой логики здесь нет. Durability не предусмотрена.
type Store struct {
	mu sync.RWMutex

	users       map[string]*models.User
	emailIndex  map[string]string // email -> userID
	usernameIdx map[string]string // username -> userID

	rooms map[string]*models.Room

	messages     map[string]*models.Message
	roomMessages map[string][]string // roomID -> messageIDs в порядке добавления
	lastStamp    map[string]time.Time

	// sessions[userID][roomID]; меняется строго вместе с room.Participants
	sessions map[string]map[string]*models.Session
}

func NewStore() *Store {
	s := &Store{
		users:        make(map[string]*models.User),
		emailIndex:   make(map[string]string),
		usernameIdx:  make(map[string]string),
		rooms:        make(map[string]*models.Room),
		messages:     make(map[string]*models.Message),
		roomMessages: make(map[string][]string),
		lastStamp:    make(map[string]time.Time),
		sessions:     make(map[string]map[string]*models.Session),
	}

	// Комната general существует с момента старта, без участников
	s.rooms[models.GeneralRoomID] = &models.Room{
		ID:          models.GeneralRoomID,
		Name:        "General",
		Description: "General chat room for all users",
		CreatedAt:   time.Now(),
		IsPrivate:   false,
	}

	return s
}

// Наружу отдаются только копии, чтобы читатели не видели
// частично обновленные сущности.

func copyUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func copyRoom(r *models.Room) *models.Room {
	cp := *r
	cp.Participants = append([]string(nil), r.Participants...)
	return &cp
}

func copyMessage(m *models.Message) *models.Message {
	cp := *m
	return &cp
}

func copySession(s *models.Session) *models.Session {
	cp := *s
	return &cp
}
