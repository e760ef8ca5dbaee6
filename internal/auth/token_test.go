package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("shared-secret", 5)

	token, expiresAt, err := manager.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("token already expired at issuance")
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Service != "ticket-bot" {
		t.Errorf("service claim = %s, want ticket-bot", claims.Service)
	}
	if claims.Issuer != "ticket-bot" {
		t.Errorf("issuer = %s, want ticket-bot", claims.Issuer)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 5)
	verifier := NewTokenManager("secret-b", 5)

	token, _, err := issuer.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Error("token signed with a different secret was accepted")
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("shared-secret", 5)
	if _, err := manager.ParseToken("not.a.jwt"); err == nil {
		t.Error("garbage token was accepted")
	}
}
