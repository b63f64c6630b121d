package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
)

var ErrUnauthorized = errors.New("unauthorized")

// Verifier resolves which player a request speaks for. Tokens are issued by
// the account service and carry the player id as the subject. Without a
// secret the player id is read straight from the query string.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Enabled() bool { return len(v.secret) > 0 }

func (v *Verifier) PlayerFrom(r *http.Request) (engine.PlayerID, error) {
	if !v.Enabled() {
		p := r.URL.Query().Get("player")
		if p == "" {
			return "", fmt.Errorf("%w: missing player", ErrUnauthorized)
		}
		return engine.PlayerID(p), nil
	}

	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		// Browsers cannot set headers on a websocket upgrade.
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		return "", fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	return v.Parse(raw)
}

func (v *Verifier) Parse(raw string) (engine.PlayerID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return engine.PlayerID(claims.Subject), nil
}

// Issue signs a token for player. Used by tests and local tooling.
func (v *Verifier) Issue(player engine.PlayerID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(player),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
