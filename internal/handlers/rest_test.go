package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/convo-lite/internal/middleware"
	"github.com/thereayou/convo-lite/internal/models"
	ws "github.com/thereayou/convo-lite/internal/websocket"
)

// asUser подменяет auth-middleware: кладет фиксированный userID в контекст
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newRestRouter(r *rig, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	userH := NewUserHandler(r.store, r.hub)
	roomH := NewRoomHandler(r.store, r.rooms, r.hub)
	msgH := NewHTTPMessageHandler(r.store, r.hub)

	api := router.Group("/api/v1", asUser(userID))
	api.POST("/users", userH.CreateUser)
	api.GET("/users/:id", userH.GetUserByID)
	api.POST("/rooms", roomH.CreateRoom)
	api.POST("/rooms/:id/join", roomH.JoinRoom)
	api.POST("/rooms/:id/leave", roomH.LeaveRoom)
	api.DELETE("/rooms/:id", roomH.DeleteRoom)
	api.GET("/rooms/:id/messages", roomH.GetRoomMessages)
	api.POST("/messages", msgH.CreateMessage)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateUserConflict(t *testing.T) {
	r := newRig(t)
	router := newRestRouter(r, "admin")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users", `{"username":"alice","email":"alice@example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users", `{"username":"alice","email":"other@example.com"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate username: %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users", `{"username":"bob","email":"alice@example.com"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: %d, want 409", rec.Code)
	}
}

// REST-вход в комнату виден подключенным websocket-клиентам: оба пути
// идут через один координатор
func TestRestJoinNotifiesConnectedClients(t *testing.T) {
	r := newRig(t)
	alice := r.user(t, "alice")
	bob := r.user(t, "bob")
	room := r.store.AddRoom("team", "", false)
	r.rooms.Join(alice.ID, room.ID)

	aliceConn := r.connect(t)
	r.identify(t, aliceConn, alice.ID)
	drain(aliceConn)

	router := newRestRouter(r, bob.ID)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/rooms/"+room.ID+"/join", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("join: %d, body %s", rec.Code, rec.Body)
	}

	// Повторный вход идемпотентен
	rec = doJSON(t, router, http.MethodPost, "/api/v1/rooms/"+room.ID+"/join", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat join: %d", rec.Code)
	}

	event := nextOfType(t, aliceConn, ws.TypeMemberJoined)
	var payload struct {
		UserID string `json:"userId"`
		RoomID string `json:"roomId"`
	}
	json.Unmarshal(event.Data, &payload)
	if payload.UserID != bob.ID || payload.RoomID != room.ID {
		t.Errorf("memberJoined = %+v", payload)
	}

	// Одно уведомление на два запроса
	assertNoEvent(t, aliceConn, ws.TypeMemberJoined)
}

func TestRestDeleteRoomForbiddenForOutsider(t *testing.T) {
	r := newRig(t)
	alice := r.user(t, "alice")
	outsider := r.user(t, "carol")
	room := r.store.AddRoom("team", "", false)
	r.rooms.Join(alice.ID, room.ID)

	router := newRestRouter(r, outsider.ID)
	rec := doJSON(t, router, http.MethodDelete, "/api/v1/rooms/"+room.ID, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider delete: %d, want 403", rec.Code)
	}
	if r.store.RoomByID(room.ID) == nil {
		t.Fatal("room must survive a forbidden delete")
	}

	router = newRestRouter(r, alice.ID)
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/rooms/"+room.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("participant delete: %d, body %s", rec.Code, rec.Body)
	}
	if r.store.RoomByID(room.ID) != nil {
		t.Error("room must be gone")
	}
}

// REST-сообщение доставляется websocket-клиентам комнаты
func TestRestMessageBroadcast(t *testing.T) {
	r := newRig(t)
	alice := r.user(t, "alice")
	bob := r.user(t, "bob")
	r.rooms.Join(alice.ID, models.GeneralRoomID)
	r.rooms.Join(bob.ID, models.GeneralRoomID)

	bobConn := r.connect(t)
	r.identify(t, bobConn, bob.ID)
	drain(bobConn)

	router := newRestRouter(r, alice.ID)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/messages",
		`{"content":"from rest","roomId":"`+models.GeneralRoomID+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create message: %d, body %s", rec.Code, rec.Body)
	}

	event := nextOfType(t, bobConn, ws.TypeMessageReceived)
	var msg models.Message
	json.Unmarshal(event.Data, &msg)
	if msg.Content != "from rest" || msg.SenderID != alice.ID {
		t.Errorf("broadcast message = %+v", msg)
	}
}

func TestRestMessageRequiresMembership(t *testing.T) {
	r := newRig(t)
	r.user(t, "alice")
	outsider := r.user(t, "carol")
	room := r.store.AddRoom("team", "", false)

	router := newRestRouter(r, outsider.ID)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/messages",
		`{"content":"sneaky","roomId":"`+room.ID+`"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider message: %d, want 403", rec.Code)
	}
	if r.store.RoomMessageCount(room.ID) != 0 {
		t.Error("rejected message must not be stored")
	}
}

func TestRoomMessagesPagination(t *testing.T) {
	r := newRig(t)
	alice := r.user(t, "alice")
	r.rooms.Join(alice.ID, models.GeneralRoomID)
	for i := 0; i < 5; i++ {
		r.store.AppendMessage(models.GeneralRoomID, alice.ID, "msg")
	}

	router := newRestRouter(r, alice.ID)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/rooms/"+models.GeneralRoomID+"/messages?limit=2&offset=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("messages: %d, body %s", rec.Code, rec.Body)
	}

	var body struct {
		Success bool              `json:"success"`
		Data    []*models.Message `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(body.Data) != 2 {
		t.Errorf("page size = %d, want 2", len(body.Data))
	}
}
