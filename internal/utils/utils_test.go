package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("admin123", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "admin123") {
		t.Error("expected password to verify")
	}
	if VerifyPassword(hash, "admin124") {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("x", 99)
	if err != nil {
		t.Fatalf("expected out-of-range cost to fall back, got %v", err)
	}
	if c := HashCost(hash); c != 10 {
		t.Errorf("cost = %d, want bcrypt default 10", c)
	}
	if HashCost("plain") != 0 {
		t.Error("non-bcrypt hash should report cost 0")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	long := strings.Repeat("a", 73)
	if _, err := HashPassword(long, 4); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	hash, _ := HashPassword(long[:72], 4)
	if VerifyPassword(hash, long) {
		t.Error("a password differing past byte 72 must not verify")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 7, "admin", "ADMIN", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	claims, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.AdminID != 7 || claims.Username != "admin" || claims.Role != "ADMIN" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, _ := NewAccessToken("secret", 1, "admin", "ADMIN", 5)
	expired, _ := NewAccessToken("secret", 1, "admin", "ADMIN", -5)
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "ADMIN"})
	noneRaw, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{"wrong secret", "other", good.Token},
		{"expired", "secret", expired.Token},
		{"alg none", "secret", noneRaw},
		{"garbage", "secret", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.secret, tt.raw); err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(1)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	b, _ := NewRefreshToken(1)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Errorf("expected distinct 96-char tokens, got %q and %q", a.Raw, b.Raw)
	}
	h := HashRefreshRaw(a.Raw)
	if len(h) != 64 || strings.Contains(h, a.Raw) {
		t.Errorf("unexpected hash %q", h)
	}
	if HashRefreshRaw(a.Raw) != h {
		t.Error("hash is not deterministic")
	}
}
