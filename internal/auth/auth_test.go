package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
)

func TestPlayerFrom_DevMode(t *testing.T) {
	v := NewVerifier("")
	p, err := v.PlayerFrom(httptest.NewRequest("GET", "/ws?player=P3", nil))
	require.NoError(t, err)
	assert.Equal(t, engine.PlayerID("P3"), p)

	_, err = v.PlayerFrom(httptest.NewRequest("GET", "/ws", nil))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPlayerFrom_Token(t *testing.T) {
	v := NewVerifier("s3cret")
	tok, err := v.Issue("P2", time.Minute)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/sessions/x/view", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	p, err := v.PlayerFrom(r)
	require.NoError(t, err)
	assert.Equal(t, engine.PlayerID("P2"), p)

	p, err = v.PlayerFrom(httptest.NewRequest("GET", "/ws?token="+tok, nil))
	require.NoError(t, err)
	assert.Equal(t, engine.PlayerID("P2"), p)

	_, err = v.PlayerFrom(httptest.NewRequest("GET", "/ws?player=P2", nil))
	assert.ErrorIs(t, err, ErrUnauthorized, "plain ids are ignored once tokens are on")
}

func TestParse_Rejects(t *testing.T) {
	v := NewVerifier("s3cret")
	other := NewVerifier("different")

	forged, err := other.Issue("P1", time.Minute)
	require.NoError(t, err)
	_, err = v.Parse(forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired, err := v.Issue("P1", -time.Minute)
	require.NoError(t, err)
	_, err = v.Parse(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
