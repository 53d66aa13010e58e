package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret-key-for-tokens"

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService(testSecret, 24*time.Hour)

	signed, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Errorf("Issue() result does not look like a JWT: %q", signed)
	}

	userID, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("Verify() userID = %d, want 42", userID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewService(testSecret, -time.Minute)

	signed, err := svc.Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = svc.Verify(signed)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Verify() error = %v, want ErrExpired", err)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	svc := NewService(testSecret, 24*time.Hour)

	signed, err := svc.Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tampered := signed[:len(signed)-3] + "xxx"
	if _, err := svc.Verify(tampered); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify(tampered) error = %v, want ErrInvalid", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewService("first-secret-value", 24*time.Hour).Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewService("other-secret-value", 24*time.Hour)
	if _, err := other.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify() with wrong secret error = %v, want ErrInvalid", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewService(testSecret, 24*time.Hour)

	for _, tokenString := range []string{"", "garbage", "not.a.jwt"} {
		if _, err := svc.Verify(tokenString); !errors.Is(err, ErrInvalid) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalid", tokenString, err)
		}
	}
}

func TestVerifyNonNumericSubject(t *testing.T) {
	svc := NewService(testSecret, 24*time.Hour)

	// A token signed with the right secret but carrying a subject that is
	// not a user ID must be rejected, not decoded to user 0.
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := svc.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify() error = %v, want ErrInvalid", err)
	}
}
