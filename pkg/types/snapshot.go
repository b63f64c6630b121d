package types

import "github.com/DoyleJ11/kalitiri-backend/internal/engine"

// Server -> Client
// state:
//   version: number
//   state: PlayerView // own hand and valid plays only
//   events: Event[]   // what the last accepted command did
//
// error:
//   version: number
//   code: "turn_order" | "validation" | "authorization" | "configuration" | "internal"
//   error: string

const (
	MsgState = "state"
	MsgError = "error"
)

type ServerMessage struct {
	Type    string             `json:"type"`
	Version int                `json:"version"`
	State   *engine.PlayerView `json:"state,omitempty"`
	Events  []engine.Event     `json:"events,omitempty"`
	Code    string             `json:"code,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func StateMessage(version int, view engine.PlayerView, events []engine.Event) ServerMessage {
	return ServerMessage{Type: MsgState, Version: version, State: &view, Events: events}
}

func ErrorMessage(version int, err error) ServerMessage {
	return ServerMessage{Type: MsgError, Version: version, Code: string(engine.Classify(err)), Error: err.Error()}
}
