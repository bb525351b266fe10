package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "test"})

	token, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.ID == "" {
		t.Error("expected a jti")
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 24*time.Hour {
		t.Errorf("expected default 24h lifetime, got %s", got)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	a := NewJWTManager(JWTConfig{Secret: "one"})
	b := NewJWTManager(JWTConfig{Secret: "two"})

	token, _ := a.GenerateToken(1)
	if _, err := b.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := a.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "s", Expiry: time.Nanosecond})
	token, _ := m.GenerateToken(7)
	time.Sleep(1100 * time.Millisecond)

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	Cost = bcrypt.MinCost
	defer func() { Cost = 12 }()

	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "hunter22"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
}
