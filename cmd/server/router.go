package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/convo-lite/internal/handlers"
	"github.com/thereayou/convo-lite/internal/middleware"
	"github.com/thereayou/convo-lite/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	roomH *handlers.RoomHandler,
	messageH *handlers.HTTPMessageHandler,
	wsH *handlers.WebSocketHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Chat API is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", authH.Logout)
	}

	// WebSocket: апгрейд под токеном, identify уже внутри соединения
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)

	// API endpoints
	api := r.Group("/api/v1", middleware.AuthMiddleware(jwtMgr, rdb))
	{
		users := api.Group("/users")
		{
			users.POST("", userH.CreateUser)
			users.GET("", userH.GetAllUsers)
			users.GET("/online", userH.GetOnlineUsers)
			users.GET("/stats", userH.GetStats)
			users.GET("/:id", userH.GetUserByID)
			users.PATCH("/:id/status", userH.UpdateUserStatus)
			users.DELETE("/:id", userH.DeleteUser)
		}

		rooms := api.Group("/rooms")
		{
			rooms.POST("", roomH.CreateRoom)
			rooms.GET("", roomH.GetAllRooms)
			rooms.GET("/public", roomH.GetPublicRooms)
			rooms.GET("/stats", roomH.GetStats)
			rooms.GET("/user/:userId", roomH.GetUserRooms)
			rooms.GET("/:id", roomH.GetRoomByID)
			rooms.GET("/:id/participants", roomH.GetRoomParticipants)
			rooms.GET("/:id/messages", roomH.GetRoomMessages)
			rooms.POST("/:id/join", roomH.JoinRoom)
			rooms.POST("/:id/leave", roomH.LeaveRoom)
			rooms.POST("/:id/read", roomH.MarkRead)
			rooms.DELETE("/:id", roomH.DeleteRoom)
		}

		messages := api.Group("/messages")
		{
			messages.POST("", messageH.CreateMessage)
			messages.GET("/recent", messageH.GetRecentMessages)
			messages.GET("/search", messageH.SearchMessages)
			messages.GET("/stats", messageH.GetStats)
			messages.GET("/user/:userId", messageH.GetMessagesByUser)
			messages.GET("/:id", messageH.GetMessageByID)
			messages.DELETE("/:id", messageH.DeleteMessage)
		}
	}
}
