package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/thereayou/convo-lite/internal/handlers"
	"github.com/thereayou/convo-lite/internal/membership"
	"github.com/thereayou/convo-lite/internal/store"
	ws "github.com/thereayou/convo-lite/internal/websocket"
	"github.com/thereayou/convo-lite/pkg/auth"
)

type Server struct {
	Router *gin.Engine
	Store  *store.Store
	Hub    *ws.Hub
	Redis  *redis.Client
}

// NewServer собирает все сервисы: store -> координатор -> hub ->
// обработчики. Все делят одни и те же экземпляры.
func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	memStore := store.NewStore()
	coordinator := membership.NewCoordinator(memStore)

	hub := ws.NewHub(memStore, memStore)
	go hub.Run()

	eventH := handlers.NewEventHandler(memStore, coordinator, hub)
	coordinator.SetListener(eventH)

	authH := handlers.NewAuthHandler(memStore, jwtMgr, rdb)
	userH := handlers.NewUserHandler(memStore, hub)
	roomH := handlers.NewRoomHandler(memStore, coordinator, hub)
	messageH := handlers.NewHTTPMessageHandler(memStore, hub)
	wsH := handlers.NewWebSocketHandler(hub, eventH)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, userH, roomH, messageH, wsH)

	return &Server{
		Router: router,
		Store:  memStore,
		Hub:    hub,
		Redis:  rdb,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
