package auth_test

import (
	"errors"
	"testing"

	"github.com/ganzorig/mishil/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken("64f1c0ffee0000000000abcd")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "64f1c0ffee0000000000abcd" {
		t.Errorf("UserID = %q, want the id the token was issued for", claims.UserID)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("token has no expiry")
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != auth.TokenTTL {
		t.Errorf("token ttl = %v, want %v", ttl, auth.TokenTTL)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, err := auth.ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
	if _, err := auth.ValidateToken(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	token, err := auth.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tampered := token[:len(token)-4] + "XXXX"
	if _, err := auth.ValidateToken(tampered); err == nil {
		t.Error("expected error for tampered signature")
	}
}

func TestHashPIN(t *testing.T) {
	hash, err := auth.HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN: %v", err)
	}
	if hash == "1234" {
		t.Fatal("PIN stored in plain text")
	}
	if !auth.CheckPIN(hash, "1234") {
		t.Error("correct PIN rejected")
	}
	if auth.CheckPIN(hash, "4321") {
		t.Error("wrong PIN accepted")
	}
}

func TestHashPINRejectsNonPIN(t *testing.T) {
	for _, bad := range []string{"", "123", "12345", "abcd", "12a4", "١٢٣٤"} {
		if _, err := auth.HashPIN(bad); !errors.Is(err, auth.ErrInvalidPIN) {
			t.Errorf("HashPIN(%q) = %v, want ErrInvalidPIN", bad, err)
		}
	}
}
