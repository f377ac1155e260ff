package membership

import (
	"fmt"
	"sync"

	"github.com/thereayou/convo-lite/internal/models"
	"github.com/thereayou/convo-lite/internal/store"
)

// Listener получает уведомления об изменениях членства. Реалтайм-слой
// подписывается при старте и рассылает их по соединениям.
type Listener interface {
	MemberJoined(room *models.Room, user *models.User, notice *models.Message)
	MemberLeft(room *models.Room, user *models.User, notice *models.Message)
	RoomDeleted(room *models.Room)
}

// Coordinator владеет составом участников всех комнат. Мутации одной
// комнаты сериализуются ее собственным мьютексом, разные комнаты
// не мешают друг другу. REST и websocket ходят через один экземпляр.
type Coordinator struct {
	store    *store.Store
	listener Listener

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

func NewCoordinator(s *store.Store) *Coordinator {
	return &Coordinator{
		store:     s,
		roomLocks: make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) SetListener(l Listener) {
	c.listener = l
}

func (c *Coordinator) lockRoom(roomID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		c.roomLocks[roomID] = lock
	}
	return lock
}

// Join идемпотентно добавляет пользователя в комнату. Повторный вход
// возвращает true без уведомлений и системного сообщения.
func (c *Coordinator) Join(userID, roomID string) bool {
	lock := c.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	user := c.store.UserByID(userID)
	room := c.store.RoomByID(roomID)
	if user == nil || room == nil {
		return false
	}

	if room.HasParticipant(userID) {
		return true
	}

	if !c.store.AddParticipant(roomID, userID) {
		return false
	}

	notice := c.store.AppendSystemMessage(roomID, fmt.Sprintf("%s joined the room", user.Username))

	if c.listener != nil {
		c.listener.MemberJoined(c.store.RoomByID(roomID), user, notice)
	}
	return true
}

// Leave убирает пользователя из комнаты вместе с его сессией
func (c *Coordinator) Leave(userID, roomID string) bool {
	lock := c.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	user := c.store.UserByID(userID)
	if user == nil {
		return false
	}

	if !c.store.RemoveParticipant(roomID, userID) {
		return false
	}

	notice := c.store.AppendSystemMessage(roomID, fmt.Sprintf("%s left the room", user.Username))

	if c.listener != nil {
		c.listener.MemberLeft(c.store.RoomByID(roomID), user, notice)
	}
	return true
}

// CreateRoom создает комнату и заводит в нее создателя и начальных
// участников через обычный Join
func (c *Coordinator) CreateRoom(name, description string, isPrivate bool, creatorID string, participants []string) *models.Room {
	creator := c.store.UserByID(creatorID)
	if creator == nil {
		return nil
	}

	room := c.store.AddRoom(name, description, isPrivate)
	c.store.AppendSystemMessage(room.ID, fmt.Sprintf("%s created this room", creator.Username))

	c.Join(creatorID, room.ID)
	for _, participantID := range participants {
		if participantID != creatorID {
			c.Join(participantID, room.ID)
		}
	}

	return c.store.RoomByID(room.ID)
}

// DeleteRoom разрешен только текущему участнику комнаты. Удаляет
// комнату и все ссылающиеся на нее сессии у всех пользователей.
func (c *Coordinator) DeleteRoom(roomID, requesterID string) bool {
	lock := c.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	room := c.store.RoomByID(roomID)
	if room == nil || !room.HasParticipant(requesterID) {
		return false
	}

	if !c.store.RemoveRoom(roomID) {
		return false
	}

	if c.listener != nil {
		c.listener.RoomDeleted(room)
	}
	return true
}
