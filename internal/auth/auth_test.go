package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)

	token, err := m.GenerateToken("admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("username = %q, want admin", claims.Username)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.GenerateToken("admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestForeignSignatureRejected(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	other := NewJWTManager("other-secret", time.Minute)

	token, err := other.GenerateToken("admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
	if _, err := m.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token err = %v, want ErrInvalidToken", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	m := NewJWTManager("test-secret", time.Minute)
	a := NewAuthenticator("admin", hash, m)

	token, err := a.Login("admin", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if claims, err := m.ValidateToken(token); err != nil || claims.Username != "admin" {
		t.Errorf("claims/err = %v/%v, want a valid admin token", claims, err)
	}

	if _, err := a.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Login("root", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenDurationSeconds(t *testing.T) {
	if got := NewJWTManager("s", 15*time.Minute).TokenDurationSeconds(); got != 900 {
		t.Errorf("duration = %d, want 900", got)
	}
}
