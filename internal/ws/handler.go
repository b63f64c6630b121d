package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/kalitiri-backend/internal/auth"
	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
	"github.com/DoyleJ11/kalitiri-backend/internal/hub"
	"github.com/DoyleJ11/kalitiri-backend/internal/table"
	"github.com/DoyleJ11/kalitiri-backend/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	outboxSize   = 16
)

func Handler(h *hub.Hub, v *auth.Verifier, log *zap.Logger, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session")
		if id == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}
		player, err := v.PlayerFrom(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		tb, err := h.Ensure(r.Context(), id)
		switch {
		case errors.Is(err, hub.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
			return
		case err != nil:
			log.Error("ensure session", zap.String("session", id), zap.Error(err))
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}
		if _, s := tb.Current(); !slices.Contains(s.Seats, player) {
			http.Error(w, "not seated at this session", http.StatusForbidden)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("session", id), zap.String("player", string(player)), zap.String("client", clientID))

		out := make(chan table.Outbound, outboxSize)
		if err := tb.Join(r.Context(), clientID, player, out); err != nil {
			conn.Close(websocket.StatusTryAgainLater, "session closed")
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), time.Second)
			defer cancel()
			_ = tb.Leave(ctx, clientID)
		}()
		log.Debug("client joined")

		// Writer goroutine
		go func() {
			for {
				select {
				case <-r.Context().Done():
					return
				case ob, ok := <-out:
					if !ok {
						// The table stopped or dropped us.
						conn.Close(websocket.StatusGoingAway, "session closed")
						return
					}
					msg := types.StateMessage(ob.Version, ob.View, ob.Events)
					if ob.Err != nil {
						msg = types.ErrorMessage(ob.Version, ob.Err)
					}
					if err := write(r.Context(), conn, msg); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(r.Context(), conn, types.ErrorMessage(0, fmt.Errorf("%w: bad json: %v", engine.ErrUnsupportedCommand, err)))
				continue
			}

			if cm.Type == types.MsgRequestState {
				version, view := tb.ViewFor(player)
				_ = write(r.Context(), conn, types.StateMessage(version, view, nil))
				continue
			}

			cmd, err := toEngineCommand(cm, player)
			if err != nil {
				_ = write(r.Context(), conn, types.ErrorMessage(0, err))
				continue
			}
			if err := tb.Dispatch(r.Context(), clientID, cmd); err != nil {
				return
			}
		}
	}
}

// write is safe to call from the reader and the writer goroutine at once.
func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

func toEngineCommand(m types.ClientMessage, player engine.PlayerID) (engine.Command, error) {
	cmd := engine.Command{Player: player}
	switch m.Type {
	case types.MsgPlaceBid:
		cmd.Type, cmd.Amount = engine.CmdPlaceBid, m.Amount
	case types.MsgPass:
		cmd.Type = engine.CmdPass
	case types.MsgSelectTrump:
		cmd.Type, cmd.Suit = engine.CmdSelectTrump, engine.Suit(m.Suit)
	case types.MsgSelectPartners:
		cmd.Type, cmd.Partners = engine.CmdSelectPartners, m.Partners
	case types.MsgPlayCard:
		if m.Card == nil {
			return engine.Command{}, fmt.Errorf("%w: play_card needs a card", engine.ErrInvalidCard)
		}
		cmd.Type, cmd.Card = engine.CmdPlayCard, *m.Card
	case types.MsgReadyNextRound:
		cmd.Type = engine.CmdReadyNextRound
	default:
		return engine.Command{}, fmt.Errorf("%w: %q", engine.ErrUnsupportedCommand, m.Type)
	}
	return cmd, nil
}
