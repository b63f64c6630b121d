package store

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
)

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the full session state at a point in time plus a coarse phase
// label for querying.
type Snapshot struct {
	SessionID string         `json:"sessionId"`
	Phase     engine.Phase   `json:"phase"`
	Version   int            `json:"version"`
	State     engine.Session `json:"state"`
	SavedAt   time.Time      `json:"savedAt"`
}

// Store is a durable document store keyed by session id. Get returns
// ErrNotFound when nothing was saved.
type Store interface {
	Put(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}
