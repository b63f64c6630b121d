package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/kalitiri-backend/internal/auth"
	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
	"github.com/DoyleJ11/kalitiri-backend/internal/hub"
	"github.com/DoyleJ11/kalitiri-backend/pkg/types"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error(), Code: string(engine.Classify(err))})
}

// CreateSession starts a game for a finished room. The room service owns
// membership; this only validates the seating against the variant catalog.
func CreateSession(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad json"})
			return
		}

		seats := make([]engine.PlayerID, 0, len(req.Seats))
		names := make(map[engine.PlayerID]string, len(req.Seats))
		for _, s := range req.Seats {
			seats = append(seats, engine.PlayerID(s.ID))
			if s.Name != "" {
				names[engine.PlayerID(s.ID)] = s.Name
			}
		}

		cfg, err := engine.ConfigFor(len(seats), req.Decks)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		cfg = cfg.WithBidThreshold(req.BidThreshold)

		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		s, err := engine.NewSession(id, cfg, seats, names)
		if err != nil {
			if engine.Classify(err) == engine.KindConfiguration {
				writeError(w, http.StatusUnprocessableEntity, err)
				return
			}
			log.Error("deal failed", zap.String("session", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		if _, err := h.Create(r.Context(), s); err != nil {
			if errors.Is(err, hub.ErrSessionExists) {
				writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
				return
			}
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
			return
		}
		log.Info("session created", zap.String("session", id), zap.String("variant", cfg.Key))

		writeJSON(w, http.StatusCreated, types.CreateSessionResponse{ID: id, ConfigKey: cfg.Key, Phase: s.Phase})
	}
}

// SessionView returns the caller's redacted view, rehydrating the session if
// it is not resident.
func SessionView(h *hub.Hub, v *auth.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := v.PlayerFrom(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
			return
		}
		tb, err := h.Ensure(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeHubError(w, err)
			return
		}
		if _, s := tb.Current(); !slices.Contains(s.Seats, player) {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "not seated at this session"})
			return
		}
		version, view := tb.ViewFor(player)
		writeJSON(w, http.StatusOK, types.StateMessage(version, view, nil))
	}
}

func CheckpointSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Checkpoint(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeHubError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeHubError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeHubError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hub.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "session not found"})
	default:
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
