package auth

import (
	"net/http"
	"testing"
	"time"
)

func TestGenerateVerifyRoundtrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewJWTManager("secret-b", time.Hour).Verify(token); err == nil {
		t.Error("token signed with another secret must not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := manager.Verify(token); err == nil {
		t.Error("expired token must not verify")
	}
}

func TestExpiry(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	expiry, err := manager.Expiry(token)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	left := time.Until(expiry)
	if left < 55*time.Minute || left > time.Hour {
		t.Errorf("expiry in %v, want about an hour", left)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	token, err := ExtractTokenFromHeader(req)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("token = %q", token)
	}

	bad, _ := http.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Authorization", "abc.def.ghi")
	if _, err := ExtractTokenFromHeader(bad); err == nil {
		t.Error("header without Bearer prefix must be rejected")
	}

	empty, _ := http.NewRequest(http.MethodGet, "/", nil)
	if _, err := ExtractTokenFromHeader(empty); err == nil {
		t.Error("missing header must be rejected")
	}
}
