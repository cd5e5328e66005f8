package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	appErrors "patroltrack/pkg/errors"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	userID := uuid.New()

	pair, err := GenerateTokenPair(userID, "tanod1", "tanod", "test-secret", 1, 168)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens must differ")
	}

	claims, err := ValidateToken(pair.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Username != "tanod1" || claims.Role != "tanod" {
		t.Errorf("unexpected claims: %s/%s", claims.Username, claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	pair, err := GenerateTokenPair(uuid.New(), "tanod1", "tanod", "test-secret", 1, 168)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	_, err = ValidateToken(pair.AccessToken, "other-secret")
	if !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", "test-secret")
	if !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
