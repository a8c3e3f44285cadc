package auth

import (
	"errors"
	"testing"
	"time"

	"hash402/internal/platform/config"
)

func newTestService(ttl time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:   "test-secret",
		TokenTTL: ttl,
	})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newTestService(time.Hour)

	token, err := svc.GenerateSessionToken("usr_1", "org_1", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "usr_1" {
		t.Errorf("Expected user usr_1, got %s", claims.UserID)
	}
	if claims.OrganizationID != "org_1" {
		t.Errorf("Expected org org_1, got %s", claims.OrganizationID)
	}
	if claims.WalletAddress != "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM" {
		t.Errorf("Wallet claim lost: %s", claims.WalletAddress)
	}
	if claims.Issuer != "hash402" {
		t.Errorf("Expected issuer hash402, got %s", claims.Issuer)
	}
}

func TestValidateTokenCollapsesFailures(t *testing.T) {
	svc := newTestService(time.Hour)

	expiredSvc := newTestService(-time.Minute)
	expired, err := expiredSvc.GenerateSessionToken("usr_1", "org_1", "")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	otherSvc := NewTokenService(config.JWTConfig{Secret: "other-secret", TokenTTL: time.Hour})
	foreign, err := otherSvc.GenerateSessionToken("usr_1", "org_1", "")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"garbage", "not-a-jwt"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tc.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
