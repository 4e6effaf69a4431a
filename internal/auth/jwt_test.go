package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	m := NewManager("test-secret-key", time.Hour)

	token, err := m.GenerateAccessToken(42, "sam@example.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)

	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("got userId %d, want 42", claims.UserID)
	}

	if claims.Email != "sam@example.com" {
		t.Errorf("got email %s, want sam@example.com", claims.Email)
	}

	if claims.Role != "user" {
		t.Errorf("got role %s, want user", claims.Role)
	}
}

func TestVerifyAccessToken_Tampered(t *testing.T) {
	m := NewManager("test-secret-key", time.Hour)

	token, err := m.GenerateAccessToken(1, "a@example.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// flip a character in the signature segment
	parts := strings.Split(token, ".")

	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}

	sig := []byte(parts[2])

	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}

	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.VerifyAccessToken(tampered)

	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("got %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	m := NewManager("secret-one", time.Hour)

	token, err := m.GenerateAccessToken(1, "a@example.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	other := NewManager("secret-two", time.Hour)

	_, err = other.VerifyAccessToken(token)

	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("got %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	m := NewManager("test-secret-key", time.Hour)

	_, err := m.VerifyAccessToken("definitely.not.ajwt")

	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("got %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	m := NewManager("test-secret-key", time.Hour).WithClock(func() time.Time {
		return issuedAt
	})

	token, err := m.GenerateAccessToken(7, "late@example.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// still valid just before the TTL elapses
	almost := m.WithClock(func() time.Time {
		return issuedAt.Add(59 * time.Minute)
	})

	if _, err := almost.VerifyAccessToken(token); err != nil {
		t.Fatalf("token should verify before expiry, got: %v", err)
	}

	// expired once the TTL has elapsed
	late := m.WithClock(func() time.Time {
		return issuedAt.Add(61 * time.Minute)
	})

	_, err = late.VerifyAccessToken(token)

	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}
