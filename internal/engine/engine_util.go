package engine

import (
	"fmt"
	"maps"
	"slices"
)

// NewSession seats players in the given clockwise order and deals the first
// round. names is optional.
func NewSession(id string, cfg Config, seats []PlayerID, names map[PlayerID]string) (Session, error) {
	if len(seats) != cfg.Players {
		return Session{}, fmt.Errorf("%w: %s needs %d players, got %d", ErrInvalidSeats, cfg.Key, cfg.Players, len(seats))
	}
	seen := make(map[PlayerID]bool, len(seats))
	for _, p := range seats {
		if p == "" || seen[p] {
			return Session{}, fmt.Errorf("%w: empty or repeated player %q", ErrInvalidSeats, p)
		}
		seen[p] = true
	}
	if dealt := cfg.Decks*deckSize - cfg.RemoveTwos; cfg.Players == 0 || dealt%cfg.Players != 0 {
		return Session{}, fmt.Errorf("%w: %d cards do not split over %d players", ErrUnsupportedVariant, dealt, cfg.Players)
	}

	base := Session{
		ID:     id,
		Config: cfg,
		Seats:  slices.Clone(seats),
		Names:  maps.Clone(names),
		Scores: make(map[PlayerID]int, len(seats)),
	}
	for _, p := range seats {
		base.Scores[p] = 0
	}
	return startRound(base)
}

// startRound deals a fresh hand for the same table. Identity, seats, names
// and cumulative scores carry over; everything else resets.
func startRound(prev Session) (Session, error) {
	hands, removed, err := dealFresh(prev.Config, prev.Seats)
	if err != nil {
		return prev, err
	}
	return Session{
		ID:               prev.ID,
		Config:           prev.Config,
		Phase:            PhaseBidding,
		Seats:            slices.Clone(prev.Seats),
		Names:            maps.Clone(prev.Names),
		Hands:            hands,
		RemovedTwos:      removed,
		Bidding:          NewBidding(prev.Config),
		Partners:         []PartnerSpec{},
		Teams:            Teams{Bid: []PlayerID{}, Oppose: []PlayerID{}},
		RevealedPartners: []PlayerID{},
		Tricks:           []CompletedTrick{},
		Scores:           maps.Clone(prev.Scores),
		NextRoundReady:   []PlayerID{},
		DealNumber:       prev.DealNumber + 1,
	}, nil
}

func (s Session) clone() Session {
	out := s
	out.Seats = slices.Clone(s.Seats)
	out.Names = maps.Clone(s.Names)
	out.Hands = make(map[PlayerID][]Card, len(s.Hands))
	for p, h := range s.Hands {
		out.Hands[p] = slices.Clone(h)
	}
	out.RemovedTwos = slices.Clone(s.RemovedTwos)
	out.Bidding.Passes = slices.Clone(s.Bidding.Passes)
	out.Partners = slices.Clone(s.Partners)
	out.Teams = s.Teams.clone()
	out.RevealedPartners = slices.Clone(s.RevealedPartners)
	if s.Trick != nil {
		t := *s.Trick
		t.Plays = slices.Clone(s.Trick.Plays)
		out.Trick = &t
	}
	out.Tricks = slices.Clone(s.Tricks)
	out.Scores = maps.Clone(s.Scores)
	out.NextRoundReady = slices.Clone(s.NextRoundReady)
	return out
}

// CurrentTurn is the player the table is waiting on, or "" when nobody is.
func (s Session) CurrentTurn() PlayerID {
	switch s.Phase {
	case PhaseBidding:
		if !s.Bidding.Complete && s.Bidding.TurnIndex < len(s.Seats) {
			return s.Seats[s.Bidding.TurnIndex]
		}
	case PhaseTrump, PhasePartners:
		return s.Leader
	case PhasePlaying:
		if s.Trick != nil && s.Trick.TurnIndex < len(s.Seats) {
			return s.Seats[s.Trick.TurnIndex]
		}
	case PhaseScoring, PhaseFinished:
	}
	return ""
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// PhaseChanged reports whether events include a phase transition.
func PhaseChanged(events []Event) bool {
	return ContainsEvent(events, EvtPhaseChanged) || ContainsEvent(events, EvtRoundStarted)
}
