package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/convo-lite/internal/handlers/dto"
	"github.com/thereayou/convo-lite/internal/membership"
	"github.com/thereayou/convo-lite/internal/middleware"
	"github.com/thereayou/convo-lite/internal/store"
	ws "github.com/thereayou/convo-lite/internal/websocket"
)

// RoomHandler обслуживает REST-путь мутаций членства. Ходит через тот же
// координатор, что и websocket, поэтому подключенные клиенты видят
// REST-изменения без отдельной логики.
type RoomHandler struct {
	store *store.Store
	rooms *membership.Coordinator
	hub   *ws.Hub
}

func NewRoomHandler(s *store.Store, rooms *membership.Coordinator, hub *ws.Hub) *RoomHandler {
	return &RoomHandler{store: s, rooms: rooms, hub: hub}
}

// CreateRoom создает комнату и добавляет создателя с участниками
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	creatorID := c.MustGet(middleware.UserIDKey).(string)

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	for _, participantID := range req.Participants {
		if h.store.UserByID(participantID) == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "participant " + participantID + " not found"})
			return
		}
	}

	room := h.rooms.CreateRoom(req.Name, req.Description, req.IsPrivate, creatorID, req.Participants)
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "creator user not found"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": room})
}

func (h *RoomHandler) GetAllRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.Rooms()})
}

func (h *RoomHandler) GetPublicRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.PublicRooms()})
}

func (h *RoomHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"totalRooms": h.store.RoomCount(),
	}})
}

func (h *RoomHandler) GetRoomByID(c *gin.Context) {
	room := h.store.RoomByID(c.Param("id"))
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "room not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

// GetRoomParticipants отдает участников с их онлайн-статусом
func (h *RoomHandler) GetRoomParticipants(c *gin.Context) {
	roomID := c.Param("id")
	room := h.store.RoomByID(roomID)
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "room not found"})
		return
	}

	participants := make([]gin.H, 0, len(room.Participants))
	for _, userID := range room.Participants {
		user := h.store.UserByID(userID)
		if user == nil {
			continue
		}
		participants = append(participants, gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"lastSeen":    user.LastSeen,
			"isOnline":    user.IsOnline,
			"isConnected": h.hub.IsUserConnected(user.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": participants})
}

func (h *RoomHandler) GetUserRooms(c *gin.Context) {
	userID := c.Param("userId")
	if h.store.UserByID(userID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.RoomsOfUser(userID)})
}

// JoinRoom добавляет вызывающего в комнату. Повторный вход считается успехом.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(string)
	roomID := c.Param("id")

	if h.store.RoomByID(roomID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "room not found"})
		return
	}

	if !h.rooms.Join(userID, roomID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "failed to join room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "joined room"})
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(string)
	roomID := c.Param("id")

	if h.store.RoomByID(roomID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "room not found"})
		return
	}

	if !h.rooms.Leave(userID, roomID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "user is not in the room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "left room"})
}

// DeleteRoom разрешен только текущему участнику
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(string)
	roomID := c.Param("id")

	if h.store.RoomByID(roomID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "room not found"})
		return
	}

	if !h.rooms.DeleteRoom(roomID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "only participants can delete the room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "room deleted"})
}

// GetRoomMessages отдает историю комнаты в неубывающем порядке
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	roomID := c.Param("id")
	if h.store.RoomByID(roomID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "room not found"})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.MessagesByRoom(roomID, limit, offset)})
}

// MarkRead двигает lastReadAt сессии вызывающего
func (h *RoomHandler) MarkRead(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(string)
	roomID := c.Param("id")

	if !h.store.UpdateLastRead(userID, roomID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no session for this room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "marked as read"})
}
