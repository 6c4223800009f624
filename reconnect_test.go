package main

import (
	"strings"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer(nil)

	token, err := ti.Issue("player-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	pid, err := ti.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if pid != "player-1" {
		t.Errorf("player id = %q, want player-1", pid)
	}
}

func TestTokenTamperingDetected(t *testing.T) {
	ti := NewTokenIssuer(nil)
	token, _ := ti.Issue("player-1")

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token parts = %d, want 3", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := ti.Validate(tampered); err == nil {
		t.Error("tampered signature accepted")
	}
	if _, err := ti.Validate("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestTokenSecretNotShared(t *testing.T) {
	a := NewTokenIssuer(nil)
	b := NewTokenIssuer(nil)

	token, _ := a.Issue("player-1")
	if _, err := b.Validate(token); err == nil {
		t.Error("token validated under a different secret")
	}
}

func TestTokenSecretPersistedInSettings(t *testing.T) {
	db := openTestDB(t)

	a := NewTokenIssuer(db)
	if db.GetSetting("reconnect_secret") == "" {
		t.Fatal("secret not persisted")
	}
	token, _ := a.Issue("player-1")

	// A fresh issuer over the same database reuses the secret
	b := NewTokenIssuer(db)
	pid, err := b.Validate(token)
	if err != nil || pid != "player-1" {
		t.Errorf("restarted issuer rejected token: %v", err)
	}
}
