package types

import "github.com/DoyleJ11/kalitiri-backend/internal/engine"

// Client -> Server
// place_bid:
//   amount: number // multiple of the variant increment
//
// pass: {}
//
// select_trump:
//   suit: "S" | "H" | "D" | "C"
//
// select_partners:
//   partners: [{ card: {suit, rank}, disambiguation?: "1st" | "2nd" }]
//
// play_card:
//   card: { suit, rank, deckIndex }
//
// ready_next_round: {}
//
// request_state: {} // read-only, answered to the sender only

const (
	MsgPlaceBid       = "place_bid"
	MsgPass           = "pass"
	MsgSelectTrump    = "select_trump"
	MsgSelectPartners = "select_partners"
	MsgPlayCard       = "play_card"
	MsgReadyNextRound = "ready_next_round"
	MsgRequestState   = "request_state"
)

type ClientMessage struct {
	Type     string                 `json:"type"`
	Amount   int                    `json:"amount,omitempty"`
	Suit     string                 `json:"suit,omitempty"`
	Partners []engine.PartnerChoice `json:"partners,omitempty"`
	Card     *engine.Card           `json:"card,omitempty"`
}

type SeatRequest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// CreateSessionRequest is sent by room management once membership is final.
// Seats are in clockwise order. Decks may be 0 except for six players.
type CreateSessionRequest struct {
	ID           string        `json:"id,omitempty"`
	Seats        []SeatRequest `json:"seats"`
	Decks        int           `json:"decks,omitempty"`
	BidThreshold int           `json:"bidThreshold,omitempty"`
}

type CreateSessionResponse struct {
	ID        string       `json:"id"`
	ConfigKey string       `json:"configKey"`
	Phase     engine.Phase `json:"phase"`
}
