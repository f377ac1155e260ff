package handlers

import (
	"encoding/json"
	"log"

	"github.com/thereayou/convo-lite/internal/handlers/dto"
	"github.com/thereayou/convo-lite/internal/membership"
	"github.com/thereayou/convo-lite/internal/models"
	"github.com/thereayou/convo-lite/internal/store"
	ws "github.com/thereayou/convo-lite/internal/websocket"
)

// EventHandler реализует машину состояний соединения. До identify разрешен
// только сам identify, остальное отклоняется событием error. Он же
// слушает уведомления координатора и рассылает их по комнатам,
// поэтому REST-мутации членства видны подключенным клиентам.
type EventHandler struct {
	store *store.Store
	rooms *membership.Coordinator
	hub   *ws.Hub
}

func NewEventHandler(s *store.Store, rooms *membership.Coordinator, hub *ws.Hub) *EventHandler {
	return &EventHandler{
		store: s,
		rooms: rooms,
		hub:   hub,
	}
}

func (h *EventHandler) HandleEvent(client *ws.Client, event *ws.Event) error {
	if event.Type != ws.TypeIdentify && client.User() == "" {
		return ws.ErrUnauthenticated
	}

	switch event.Type {
	case ws.TypeIdentify:
		return h.handleIdentify(client, event.Data)

	case ws.TypeEndSession:
		return h.handleEndSession(client, event.Data)

	case ws.TypeSendMessage:
		return h.handleSendMessage(client, event.Data)

	case ws.TypeJoinRoom:
		return h.handleJoinRoom(client, event.Data)

	case ws.TypeLeaveRoom:
		return h.handleLeaveRoom(client, event.Data)

	case ws.TypeTypingStart:
		return h.handleTyping(client, event.Data, ws.TypeTypingStarted)

	case ws.TypeTypingStop:
		return h.handleTyping(client, event.Data, ws.TypeTypingStopped)

	default:
		log.Printf("Unknown event type: %s", event.Type)
		return nil
	}
}

// Disconnected выполняет безусловную очистку при обрыве: маппинг
// снимается, presence гаснет, остальные узнают. Членство в комнатах
// не трогаем: обрыв это не leave.
func (h *EventHandler) Disconnected(client *ws.Client) {
	userID := h.hub.Forget(client)
	if userID == "" {
		return
	}

	h.broadcastPresence(ws.TypePresenceOffline, userID)
}

func (h *EventHandler) handleIdentify(client *ws.Client, data json.RawMessage) error {
	userID := dto.DecodeUserID(data)
	user := h.store.UserByID(userID)
	if user == nil {
		return ws.ErrUserNotFound
	}

	// Последний identify выигрывает: прежнее соединение пользователя
	// остается открытым, но теряет маппинг
	h.hub.Identify(client, userID)

	// Подписываем соединение на комнаты, куда пользователь попал
	// до его появления (например, через REST)
	rooms := h.store.RoomsOfUser(userID)
	for _, room := range rooms {
		client.Subscribe(room.ID)
	}

	h.broadcastPresence(ws.TypePresenceOnline, userID)

	return client.SendEvent(ws.TypeIdentified, dto.IdentifiedPayload{
		User:  h.store.UserByID(userID),
		Rooms: rooms,
	})
}

// handleEndSession гасит presence, не закрывая соединение
func (h *EventHandler) handleEndSession(client *ws.Client, data json.RawMessage) error {
	userID := dto.DecodeUserID(data)
	if userID != "" && userID != client.User() {
		return ws.ErrUnauthorized
	}

	forgotten := h.hub.Forget(client)
	if forgotten == "" {
		return nil
	}

	h.broadcastPresence(ws.TypePresenceOffline, forgotten)
	return nil
}

func (h *EventHandler) handleSendMessage(client *ws.Client, data json.RawMessage) error {
	var payload dto.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ws.ErrInvalidEvent
	}
	if payload.Content == "" || payload.RoomID == "" {
		return ws.ErrInvalidEvent
	}

	room := h.store.RoomByID(payload.RoomID)
	if room == nil {
		return ws.ErrRoomNotFound
	}

	// Проверяем членство по текущему состоянию, а не по подписке
	userID := client.User()
	if !room.HasParticipant(userID) {
		return ws.ErrUnauthorized
	}

	message := h.store.AppendMessage(payload.RoomID, userID, payload.Content)
	if message == nil {
		return ws.ErrUserNotFound
	}

	// Доставка всей комнате, включая отправителя
	if encoded, err := ws.Encode(ws.TypeMessageReceived, message); err == nil {
		h.hub.SendToRoom(payload.RoomID, encoded, "")
	}

	go h.store.TouchLastSeen(userID)

	return nil
}

func (h *EventHandler) handleJoinRoom(client *ws.Client, data json.RawMessage) error {
	roomID := dto.DecodeRoomID(data)
	if roomID == "" {
		return ws.ErrInvalidEvent
	}

	if h.store.RoomByID(roomID) == nil {
		return ws.ErrRoomNotFound
	}

	if !h.rooms.Join(client.User(), roomID) {
		return ws.ErrRoomNotFound
	}

	client.Subscribe(roomID)
	return client.SendEvent(ws.TypeRoomJoined, dto.RoomPayload{RoomID: roomID})
}

func (h *EventHandler) handleLeaveRoom(client *ws.Client, data json.RawMessage) error {
	roomID := dto.DecodeRoomID(data)
	if roomID == "" {
		return ws.ErrInvalidEvent
	}

	if h.store.RoomByID(roomID) == nil {
		return ws.ErrRoomNotFound
	}

	if !h.rooms.Leave(client.User(), roomID) {
		return ws.ErrUserNotInRoom
	}

	client.Unsubscribe(roomID)
	return client.SendEvent(ws.TypeRoomLeft, dto.RoomPayload{RoomID: roomID})
}

// handleTyping просто ретранслирует событие остальным участникам комнаты,
// сервер не хранит состояние и не ставит таймаут на stop
func (h *EventHandler) handleTyping(client *ws.Client, data json.RawMessage, out ws.EventType) error {
	roomID := dto.DecodeRoomID(data)
	if roomID == "" {
		return ws.ErrInvalidEvent
	}

	room := h.store.RoomByID(roomID)
	if room == nil {
		return ws.ErrRoomNotFound
	}

	userID := client.User()
	if !room.HasParticipant(userID) {
		return ws.ErrUserNotInRoom
	}

	user := h.store.UserByID(userID)
	if user == nil {
		return ws.ErrUserNotFound
	}

	encoded, err := ws.Encode(out, dto.TypingPayload{
		UserID:   userID,
		Username: user.Username,
		RoomID:   roomID,
	})
	if err != nil {
		return err
	}

	h.hub.SendToRoom(roomID, encoded, client.ID)
	return nil
}

func (h *EventHandler) broadcastPresence(eventType ws.EventType, userID string) {
	user := h.store.UserByID(userID)
	if user == nil {
		return
	}

	if encoded, err := ws.Encode(eventType, dto.PresencePayload{
		UserID:   userID,
		Username: user.Username,
	}); err == nil {
		h.hub.SendToAll(encoded)
	}
}

// Уведомления координатора: приходят и с socket-, и с REST-пути.

func (h *EventHandler) MemberJoined(room *models.Room, user *models.User, notice *models.Message) {
	h.broadcastMemberEvent(ws.TypeMemberJoined, room, user, notice)
}

func (h *EventHandler) MemberLeft(room *models.Room, user *models.User, notice *models.Message) {
	h.broadcastMemberEvent(ws.TypeMemberLeft, room, user, notice)
}

func (h *EventHandler) broadcastMemberEvent(eventType ws.EventType, room *models.Room, user *models.User, notice *models.Message) {
	// Инициатору не эхо-им: он получает подтверждение своим путем
	excludeConn, _ := h.hub.ConnectionOf(user.ID)

	if encoded, err := ws.Encode(eventType, dto.MemberEventPayload{
		UserID:   user.ID,
		RoomID:   room.ID,
		Username: user.Username,
	}); err == nil {
		h.hub.SendToRoom(room.ID, encoded, excludeConn)
	}

	if notice != nil {
		if encoded, err := ws.Encode(ws.TypeMessageReceived, notice); err == nil {
			h.hub.SendToRoom(room.ID, encoded, excludeConn)
		}
	}
}

func (h *EventHandler) RoomDeleted(room *models.Room) {
	h.hub.DropRoom(room.ID)

	encoded, err := ws.Encode(ws.TypeRoomDeleted, dto.RoomDeletedPayload{
		RoomID: room.ID,
		Name:   room.Name,
	})
	if err != nil {
		return
	}

	// Состав комнаты уже удален, рассылаем бывшим участникам адресно
	for _, userID := range room.Participants {
		h.hub.SendToUser(userID, encoded)
	}
}
