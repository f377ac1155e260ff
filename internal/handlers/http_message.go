package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/convo-lite/internal/handlers/dto"
	"github.com/thereayou/convo-lite/internal/middleware"
	"github.com/thereayou/convo-lite/internal/store"
	ws "github.com/thereayou/convo-lite/internal/websocket"
)

type HTTPMessageHandler struct {
	store *store.Store
	hub   *ws.Hub
}

func NewHTTPMessageHandler(s *store.Store, hub *ws.Hub) *HTTPMessageHandler {
	return &HTTPMessageHandler{store: s, hub: hub}
}

// CreateMessage принимает сообщение по HTTP. Сообщение уходит в ту же
// рассылку, что и при отправке через websocket.
func (h *HTTPMessageHandler) CreateMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	room := h.store.RoomByID(req.RoomID)
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "room not found"})
		return
	}

	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "you are not a member of this room"})
		return
	}

	message := h.store.AppendMessage(req.RoomID, userID, req.Content)
	if message == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "sender not found"})
		return
	}

	if encoded, err := ws.Encode(ws.TypeMessageReceived, message); err == nil {
		h.hub.SendToRoom(req.RoomID, encoded, "")
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
}

func (h *HTTPMessageHandler) GetRecentMessages(c *gin.Context) {
	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.RecentMessages(limit)})
}

func (h *HTTPMessageHandler) SearchMessages(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "query parameter q is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.SearchMessages(query, c.Query("roomId"))})
}

func (h *HTTPMessageHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"totalMessages": h.store.MessageCount(),
	}})
}

func (h *HTTPMessageHandler) GetMessageByID(c *gin.Context) {
	message := h.store.MessageByID(c.Param("id"))
	if message == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "message not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": message})
}

func (h *HTTPMessageHandler) GetMessagesByUser(c *gin.Context) {
	userID := c.Param("userId")
	if h.store.UserByID(userID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.MessagesByUser(userID, limit)})
}

// DeleteMessage разрешен только автору
func (h *HTTPMessageHandler) DeleteMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(string)

	if !h.store.DeleteMessage(c.Param("id"), userID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "message not found or not yours"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "message deleted"})
}
