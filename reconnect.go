package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens outlive the grace window by a wide margin; the window itself is
// enforced by the lobby's removal timers, the token only binds identity.
const reconnectTokenTTL = 24 * time.Hour

// TokenIssuer signs reconnect tokens so a logical player id cannot be
// reclaimed by a connection that never held it.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer loads the signing secret from the database settings
// table, generating and persisting a fresh one if none exists.
func NewTokenIssuer(db *DB) *TokenIssuer {
	return &TokenIssuer{secret: loadOrCreateSecret(db)}
}

func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("reconnect_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate reconnect secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("reconnect_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist reconnect secret: %v", err)
		}
	}
	return secret
}

// Issue signs a token for the given player id
func (ti *TokenIssuer) Issue(playerID string) (string, error) {
	claims := jwt.MapClaims{
		"pid": playerID,
		"exp": time.Now().Add(reconnectTokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Validate checks a token and returns the player id it was issued for
func (ti *TokenIssuer) Validate(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return ti.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	pid, ok := claims["pid"].(string)
	if !ok || pid == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return pid, nil
}
