package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignJWT(Claims{
		Email:            "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	past := time.Now().Add(-time.Hour)
	token, err := SignJWT(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(past),
	}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "one")
	token, err := SignJWT(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	t.Setenv("JWT_SECRET", "two")
	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSecretRequiredInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := SignJWT(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}); err == nil {
		t.Fatalf("expected error without secret in production")
	}
}
