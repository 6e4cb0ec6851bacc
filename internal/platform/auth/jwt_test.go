package auth

import (
	"testing"
	"time"

	"hookstash/internal/platform/config"
	"hookstash/internal/platform/models"
)

func testTokenService(secret string) *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:          secret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := testTokenService("test-secret")

	user := &models.User{
		ID:          "usr_1",
		Username:    "jdoe",
		Email:       "jdoe@example.com",
		IsStaff:     true,
		IsSuperuser: false,
	}

	token, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != "usr_1" || claims.Username != "jdoe" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
	if !claims.IsStaff || claims.IsSuperuser {
		t.Errorf("Privilege flags not carried: %+v", claims)
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	token, err := testTokenService("secret-a").GenerateAccessToken(&models.User{ID: "usr_1"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := testTokenService("secret-b").ValidateToken(token); err == nil {
		t.Error("Expected validation to fail with a different secret")
	}
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	if _, err := testTokenService("s").ValidateToken("not-a-token"); err == nil {
		t.Error("Expected validation to fail for malformed token")
	}
}
