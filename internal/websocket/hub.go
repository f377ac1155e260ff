package websocket

import (
	"context"
	"log"
	"sync"
)

// Presence переключает онлайн-статус в справочнике пользователей.
// Вызывается внутри лока хаба, чтобы маппинг и статус менялись как
// одно целое.
type Presence interface {
	SetOnline(userID string, online bool) bool
}

// RoomResolver отдает актуальный состав комнаты в момент отправки,
// а не по подписке соединения
type RoomResolver interface {
	Participants(roomID string) []string
}

// Hub реестр соединений и маршрутизатор рассылки. Пользователь
// держит не больше одного активного соединения: последний identify
// вытесняет предыдущее.
type Hub struct {
	clients     map[string]*Client // connID -> client
	userClients map[string]*Client // userID -> client

	presence Presence
	resolver RoomResolver

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(presence Presence, resolver RoomResolver) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]*Client),
		userClients: make(map[string]*Client),
		presence:    presence,
		resolver:    resolver,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run обслуживает регистрацию и снятие соединений
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[string]*Client)
	h.userClients = make(map[string]*Client)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	log.Printf("Client connected: %s", client.ID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	h.forgetLocked(client)
	delete(h.clients, client.ID)
	close(client.Send)

	log.Printf("Client disconnected: %s", client.ID)
}

// Identify связывает соединение с пользователем и включает presence
// одним шагом. Возвращает вытесненное соединение того же пользователя,
// если оно было.
func (h *Hub) Identify(client *Client, userID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Прежний маппинг этого соединения снимается
	h.forgetLocked(client)

	var superseded *Client
	if prev, ok := h.userClients[userID]; ok && prev != client {
		superseded = prev
		prev.setUser("")
		prev.clearRooms()
	}

	client.setUser(userID)
	h.userClients[userID] = client
	h.presence.SetOnline(userID, true)

	return superseded
}

// Forget снимает маппинг соединения и гасит presence. Возвращает
// userID, который был привязан, либо пустую строку.
func (h *Hub) Forget(client *Client) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.forgetLocked(client)
}

func (h *Hub) forgetLocked(client *Client) string {
	userID := client.User()
	if userID == "" {
		return ""
	}

	if mapped, ok := h.userClients[userID]; ok && mapped == client {
		delete(h.userClients, userID)
		// Пользователь не должен числиться онлайн без живого соединения
		h.presence.SetOnline(userID, false)
	}

	client.setUser("")
	client.clearRooms()
	return userID
}

// UserOf возвращает пользователя соединения, пустая строка значит аноним
func (h *Hub) UserOf(connID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return ""
	}
	return client.User()
}

// ConnectionOf возвращает id живого соединения пользователя
func (h *Hub) ConnectionOf(userID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.userClients[userID]
	if !ok {
		return "", false
	}
	return client.ID, true
}

func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.userClients[userID]
	return ok
}

// ClientCount возвращает количество живых соединений, включая анонимные
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ConnectedUsers возвращает список пользователей с живыми соединениями
func (h *Hub) ConnectedUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

// DropRoom снимает подписку на комнату у всех соединений
func (h *Hub) DropRoom(roomID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.Unsubscribe(roomID)
	}
}

// SendToUser ничего не делает, если у пользователя нет живого соединения
func (h *Hub) SendToUser(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.userClients[userID]; ok {
		h.deliver(client, data)
	}
}

// SendToRoom рассылает событие подключенным участникам комнаты.
// Состав комнаты разрешается в момент отправки, excludeConnID
// позволяет не эхо-ить событие его инициатору.
func (h *Hub) SendToRoom(roomID string, data []byte, excludeConnID string) {
	participants := h.resolver.Participants(roomID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range participants {
		client, ok := h.userClients[userID]
		if !ok || client.ID == excludeConnID {
			continue
		}
		h.deliver(client, data)
	}
}

// SendToAll рассылает событие каждому живому соединению
func (h *Hub) SendToAll(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		h.deliver(client, data)
	}
}

// deliver работает по принципу fire-and-forget: переполненная очередь не блокирует
// отправителя и не считается ошибкой
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		log.Printf("Client %s send queue full, event dropped", client.ID)
	}
}
