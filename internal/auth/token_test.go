package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/justinabrahms/chessai/internal/chess"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, err := manager.Issue("game-1", chess.Black)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	// Verify token format (should have 3 parts)
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("Invalid JWT format: expected 3 parts, got %d", len(parts))
	}

	gameID, color, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if gameID != "game-1" {
		t.Errorf("Expected game-1, got %s", gameID)
	}
	if color != chess.Black {
		t.Errorf("Expected black, got %s", color)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue("game-1", chess.White)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	_, _, err = NewTokenManager("secret-b", time.Hour).Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Minute)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }

	token, err := manager.Issue("game-1", chess.White)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	manager.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected expired token to be rejected, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}
