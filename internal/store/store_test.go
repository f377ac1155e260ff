package store

import (
	"fmt"
	"testing"

	"github.com/thereayou/convo-lite/internal/models"
)

func TestNewStoreHasGeneralRoom(t *testing.T) {
	s := NewStore()

	room := s.RoomByID(models.GeneralRoomID)
	if room == nil {
		t.Fatal("general room must exist at startup")
	}
	if len(room.Participants) != 0 {
		t.Errorf("general room must start empty, got %d participants", len(room.Participants))
	}
	if room.IsPrivate {
		t.Error("general room must be public")
	}
}

func TestCreateUserUniqueFields(t *testing.T) {
	s := NewStore()

	alice := s.CreateUser("alice", "alice@example.com", "")
	if alice == nil {
		t.Fatal("first user must be created")
	}

	if s.CreateUser("alice", "other@example.com", "") != nil {
		t.Error("duplicate username must be rejected")
	}
	if s.CreateUser("other", "alice@example.com", "") != nil {
		t.Error("duplicate email must be rejected")
	}

	if got := s.UserByEmail("alice@example.com"); got == nil || got.ID != alice.ID {
		t.Error("lookup by email failed")
	}
	if got := s.UserByUsername("alice"); got == nil || got.ID != alice.ID {
		t.Error("lookup by username failed")
	}
	if s.UserByID("missing") != nil {
		t.Error("absent user must resolve to nil, not an error")
	}
}

func TestAddParticipantIsIdempotent(t *testing.T) {
	s := NewStore()
	user := s.CreateUser("bob", "bob@example.com", "")

	if !s.AddParticipant(models.GeneralRoomID, user.ID) {
		t.Fatal("first add must succeed")
	}
	if !s.AddParticipant(models.GeneralRoomID, user.ID) {
		t.Fatal("repeated add must report success")
	}

	room := s.RoomByID(models.GeneralRoomID)
	if len(room.Participants) != 1 {
		t.Errorf("participants must have no duplicates, got %v", room.Participants)
	}
}

func TestParticipantAndSessionChangeTogether(t *testing.T) {
	s := NewStore()
	user := s.CreateUser("bob", "bob@example.com", "")

	s.AddParticipant(models.GeneralRoomID, user.ID)

	if s.SessionOf(user.ID, models.GeneralRoomID) == nil {
		t.Fatal("joining must create a session")
	}
	if len(s.SessionsOfRoom(models.GeneralRoomID)) != 1 {
		t.Error("room session index out of sync")
	}

	s.RemoveParticipant(models.GeneralRoomID, user.ID)

	if s.SessionOf(user.ID, models.GeneralRoomID) != nil {
		t.Error("leaving must remove the session")
	}
	if s.RoomByID(models.GeneralRoomID).HasParticipant(user.ID) {
		t.Error("leaving must remove the participant")
	}
}

func TestAddParticipantMissingEntities(t *testing.T) {
	s := NewStore()
	user := s.CreateUser("bob", "bob@example.com", "")

	if s.AddParticipant("missing-room", user.ID) {
		t.Error("add to missing room must fail")
	}
	if s.AddParticipant(models.GeneralRoomID, "missing-user") {
		t.Error("add of missing user must fail")
	}
}

func TestRemoveRoomDropsAllSessions(t *testing.T) {
	s := NewStore()
	room := s.AddRoom("team", "", false)

	var users []*models.User
	for i := 0; i < 3; i++ {
		u := s.CreateUser(fmt.Sprintf("user%d", i), fmt.Sprintf("u%d@example.com", i), "")
		s.AddParticipant(room.ID, u.ID)
		users = append(users, u)
	}

	if !s.RemoveRoom(room.ID) {
		t.Fatal("remove must succeed")
	}

	if s.RoomByID(room.ID) != nil {
		t.Error("room must be gone")
	}
	for _, u := range users {
		if s.SessionOf(u.ID, room.ID) != nil {
			t.Errorf("session of %s must be gone with the room", u.Username)
		}
	}
}

func TestMessageOrderIsNonDecreasing(t *testing.T) {
	s := NewStore()
	user := s.CreateUser("bob", "bob@example.com", "")
	s.AddParticipant(models.GeneralRoomID, user.ID)

	for i := 0; i < 50; i++ {
		if s.AppendMessage(models.GeneralRoomID, user.ID, fmt.Sprintf("msg %d", i)) == nil {
			t.Fatal("append failed")
		}
	}

	messages := s.MessagesByRoom(models.GeneralRoomID, 100, 0)
	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.Before(messages[i-1].Timestamp) {
			t.Fatalf("timestamps must be non-decreasing, broken at %d", i)
		}
	}
}

func TestConcurrentAppendsKeepOrderConsistent(t *testing.T) {
	s := NewStore()
	user := s.CreateUser("bob", "bob@example.com", "")
	s.AddParticipant(models.GeneralRoomID, user.ID)

	const writers = 8
	const perWriter = 25

	done := make(chan struct{})
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < perWriter; i++ {
				s.AppendMessage(models.GeneralRoomID, user.ID, fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	for w := 0; w < writers; w++ {
		<-done
	}

	messages := s.MessagesByRoom(models.GeneralRoomID, writers*perWriter, 0)
	if len(messages) != writers*perWriter {
		t.Fatalf("expected %d messages, got %d", writers*perWriter, len(messages))
	}
	seen := make(map[string]bool)
	for i, msg := range messages {
		if seen[msg.ID] {
			t.Fatal("message ids must be unique")
		}
		seen[msg.ID] = true
		if i > 0 && msg.Timestamp.Before(messages[i-1].Timestamp) {
			t.Fatalf("order broken at %d under concurrency", i)
		}
	}
}

func TestAppendUpdatesLastMessageRef(t *testing.T) {
	s := NewStore()
	user := s.CreateUser("bob", "bob@example.com", "")
	s.AddParticipant(models.GeneralRoomID, user.ID)

	msg := s.AppendMessage(models.GeneralRoomID, user.ID, "hello")
	if got := s.RoomByID(models.GeneralRoomID).LastMessageID; got != msg.ID {
		t.Errorf("lastMessageId = %q, want %q", got, msg.ID)
	}
}

func TestSystemMessageUsesReservedSender(t *testing.T) {
	s := NewStore()

	msg := s.AppendSystemMessage(models.GeneralRoomID, "bob joined the room")
	if msg.SenderID != models.SystemSenderID {
		t.Errorf("senderId = %q, want %q", msg.SenderID, models.SystemSenderID)
	}
	if msg.Type != models.MessageSystem {
		t.Errorf("type = %q, want %q", msg.Type, models.MessageSystem)
	}
}

func TestDeleteMessageOnlyByAuthor(t *testing.T) {
	s := NewStore()
	bob := s.CreateUser("bob", "bob@example.com", "")
	eve := s.CreateUser("eve", "eve@example.com", "")
	s.AddParticipant(models.GeneralRoomID, bob.ID)

	msg := s.AppendMessage(models.GeneralRoomID, bob.ID, "hello")

	if s.DeleteMessage(msg.ID, eve.ID) {
		t.Error("non-author must not delete the message")
	}
	if !s.DeleteMessage(msg.ID, bob.ID) {
		t.Error("author must delete the message")
	}
	if s.MessageByID(msg.ID) != nil {
		t.Error("message must be gone")
	}
	if s.RoomMessageCount(models.GeneralRoomID) != 0 {
		t.Error("room index must drop the deleted message")
	}
}

func TestSearchMessages(t *testing.T) {
	s := NewStore()
	bob := s.CreateUser("bob", "bob@example.com", "")
	room := s.AddRoom("team", "", false)
	s.AddParticipant(models.GeneralRoomID, bob.ID)
	s.AddParticipant(room.ID, bob.ID)

	s.AppendMessage(models.GeneralRoomID, bob.ID, "deploy went fine")
	s.AppendMessage(room.ID, bob.ID, "deploy broke everything")

	if got := len(s.SearchMessages("deploy", "")); got != 2 {
		t.Errorf("global search found %d, want 2", got)
	}
	if got := len(s.SearchMessages("deploy", room.ID)); got != 1 {
		t.Errorf("room-scoped search found %d, want 1", got)
	}
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := NewStore()
	user := s.CreateUser("bob", "bob@example.com", "")
	s.AddParticipant(models.GeneralRoomID, user.ID)

	room := s.RoomByID(models.GeneralRoomID)
	room.Participants[0] = "tampered"

	if fresh := s.RoomByID(models.GeneralRoomID); fresh.Participants[0] != user.ID {
		t.Error("mutating a returned room must not affect the store")
	}
}
