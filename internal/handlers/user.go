package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/convo-lite/internal/handlers/dto"
	"github.com/thereayou/convo-lite/internal/store"
	ws "github.com/thereayou/convo-lite/internal/websocket"
)

type UserHandler struct {
	store *store.Store
	hub   *ws.Hub
}

func NewUserHandler(s *store.Store, hub *ws.Hub) *UserHandler {
	return &UserHandler{store: s, hub: hub}
}

// CreateUser создает пользователя без пароля (вход только по identify)
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user := h.store.CreateUser(req.Username, req.Email, "")
	if user == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "username or email already taken"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.Users()})
}

func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.OnlineUsers()})
}

func (h *UserHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"totalUsers":     h.store.UserCount(),
		"onlineUsers":    h.store.OnlineCount(),
		"connectedUsers": len(h.hub.ConnectedUsers()),
		"connections":    h.hub.ClientCount(),
	}})
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	user := h.store.UserByID(c.Param("id"))
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// UpdateUserStatus вручную переключает presence
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if !h.store.SetOnline(c.Param("id"), *req.IsOnline) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.store.UserByID(c.Param("id"))})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if !h.store.DeleteUser(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted"})
}
