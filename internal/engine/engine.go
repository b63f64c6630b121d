package engine

import (
	"fmt"
	"slices"
)

type Phase string

const (
	PhaseBidding  Phase = "bidding"
	PhaseTrump    Phase = "trump"
	PhasePartners Phase = "partners"
	PhasePlaying  Phase = "playing"
	PhaseScoring  Phase = "scoring"
	PhaseFinished Phase = "finished"
)

// Session is one game at one table. It is treated as a value: Apply never
// mutates its input and returns a fresh copy on success.
type Session struct {
	ID               string              `json:"id"`
	Config           Config              `json:"config"`
	Phase            Phase               `json:"phase"`
	Seats            []PlayerID          `json:"seats"`
	Names            map[PlayerID]string `json:"names,omitempty"`
	Hands            map[PlayerID][]Card `json:"hands"`
	RemovedTwos      []Card              `json:"removedTwos"`
	Bidding          BiddingState        `json:"bidding"`
	Leader           PlayerID            `json:"leader,omitempty"`
	Bid              int                 `json:"bid,omitempty"`
	Trump            Suit                `json:"trump,omitempty"`
	Partners         []PartnerSpec       `json:"partners"`
	Teams            Teams               `json:"teams"`
	RevealedPartners []PlayerID          `json:"revealedPartners"`
	Round            int                 `json:"round"` // tricks completed this deal
	Trick            *Trick              `json:"trick,omitempty"`
	RoundLeader      PlayerID            `json:"roundLeader,omitempty"`
	Tricks           []CompletedTrick    `json:"tricks"`
	Scores           map[PlayerID]int    `json:"scores"`
	LastResult       *ScoreResult        `json:"lastResult,omitempty"`
	NextRoundReady   []PlayerID          `json:"nextRoundReady"`
	DealNumber       int                 `json:"dealNumber"`
}

type CommandType string

const (
	CmdPlaceBid       CommandType = "PlaceBid"
	CmdPass           CommandType = "Pass"
	CmdSelectTrump    CommandType = "SelectTrump"
	CmdSelectPartners CommandType = "SelectPartners"
	CmdPlayCard       CommandType = "PlayCard"
	CmdReadyNextRound CommandType = "ReadyNextRound"
)

type Command struct {
	Type     CommandType
	Player   PlayerID
	Amount   int
	Suit     Suit
	Partners []PartnerChoice
	Card     Card
}

type EventType string

const (
	EvtBidPlaced        EventType = "BidPlaced"
	EvtPassed           EventType = "Passed"
	EvtBiddingComplete  EventType = "BiddingComplete"
	EvtRedeal           EventType = "Redeal"
	EvtTrumpSelected    EventType = "TrumpSelected"
	EvtPartnersSelected EventType = "PartnersSelected"
	EvtCardPlayed       EventType = "CardPlayed"
	EvtPartnerRevealed  EventType = "PartnerRevealed"
	EvtTrickCompleted   EventType = "TrickCompleted"
	EvtRoundScored      EventType = "RoundScored"
	EvtReadyUpdated     EventType = "ReadyUpdated"
	EvtRoundStarted     EventType = "RoundStarted"
	EvtPhaseChanged     EventType = "PhaseChanged"
)

// Event is a public side effect of an accepted command. Nothing private to a
// single player is ever put in an Event.
type Event struct {
	Type     EventType       `json:"type"`
	Player   PlayerID        `json:"player,omitempty"`
	Amount   int             `json:"amount,omitempty"`
	Suit     Suit            `json:"suit,omitempty"`
	Card     *Card           `json:"card,omitempty"`
	Partners []PartnerSpec   `json:"partners,omitempty"`
	Trick    *CompletedTrick `json:"trick,omitempty"`
	Result   *ScoreResult    `json:"result,omitempty"`
	Phase    Phase           `json:"phase,omitempty"`
	Removed  []Card          `json:"removed,omitempty"`
	Ready    []PlayerID      `json:"ready,omitempty"`
}

// Apply validates cmd against s. On success it returns the events produced
// and the next session; on failure s is returned untouched with the error.
func Apply(s Session, cmd Command) ([]Event, Session, error) {
	if seatIndex(s.Seats, cmd.Player) < 0 {
		return nil, s, ErrUnknownPlayer
	}

	switch s.Phase {
	case PhaseBidding:
		return applyBidding(s, cmd)
	case PhaseTrump:
		return applyTrump(s, cmd)
	case PhasePartners:
		return applyPartners(s, cmd)
	case PhasePlaying:
		return applyPlaying(s, cmd)
	case PhaseFinished:
		return applyFinished(s, cmd)
	case PhaseScoring:
		return nil, s, rejectOutOfPhase(cmd)
	default:
		return nil, s, fmt.Errorf("%w: unknown phase %q", ErrWrongPhase, s.Phase)
	}
}

func applyBidding(s Session, cmd Command) ([]Event, Session, error) {
	switch cmd.Type {
	case CmdPlaceBid:
		b, err := PlaceBid(s.Bidding, s.Config, s.Seats, cmd.Player, cmd.Amount)
		if err != nil {
			return nil, s, err
		}
		next := s.clone()
		next.Bidding = b
		events := []Event{{Type: EvtBidPlaced, Player: cmd.Player, Amount: cmd.Amount}}
		if b.Complete {
			events = closeBidding(&next, events)
		}
		return events, next, nil

	case CmdPass:
		b, redeal, err := Pass(s.Bidding, s.Seats, cmd.Player)
		if err != nil {
			return nil, s, err
		}
		events := []Event{{Type: EvtPassed, Player: cmd.Player}}
		if redeal {
			next, err := startRound(s)
			if err != nil {
				return nil, s, err
			}
			events = append(events,
				Event{Type: EvtRedeal},
				Event{Type: EvtRoundStarted, Removed: slices.Clone(next.RemovedTwos)},
			)
			return events, next, nil
		}
		next := s.clone()
		next.Bidding = b
		if b.Complete {
			events = closeBidding(&next, events)
		}
		return events, next, nil

	default:
		return nil, s, rejectOutOfPhase(cmd)
	}
}

func closeBidding(next *Session, events []Event) []Event {
	leader, bid, _ := next.Bidding.Winner()
	next.Leader = leader
	next.Bid = bid
	next.Teams = initialTeams(next.Seats, leader)
	next.Phase = PhaseTrump
	return append(events,
		Event{Type: EvtBiddingComplete, Player: leader, Amount: bid},
		Event{Type: EvtPhaseChanged, Phase: PhaseTrump},
	)
}

func applyTrump(s Session, cmd Command) ([]Event, Session, error) {
	switch cmd.Type {
	case CmdSelectTrump:
		if cmd.Player != s.Leader {
			return nil, s, ErrNotLeader
		}
		if !cmd.Suit.Valid() {
			return nil, s, fmt.Errorf("%w: %q", ErrInvalidSuit, cmd.Suit)
		}
		next := s.clone()
		next.Trump = cmd.Suit
		next.Phase = PhasePartners
		return []Event{
			{Type: EvtTrumpSelected, Player: cmd.Player, Suit: cmd.Suit},
			{Type: EvtPhaseChanged, Phase: PhasePartners},
		}, next, nil

	case CmdSelectPartners:
		if cmd.Player != s.Leader {
			return nil, s, ErrNotLeader
		}
		return nil, s, ErrTrumpNotSelected

	default:
		return nil, s, rejectOutOfPhase(cmd)
	}
}

func applyPartners(s Session, cmd Command) ([]Event, Session, error) {
	switch cmd.Type {
	case CmdSelectTrump:
		if cmd.Player != s.Leader {
			return nil, s, ErrNotLeader
		}
		return nil, s, ErrTrumpAlreadySelected

	case CmdSelectPartners:
		if cmd.Player != s.Leader {
			return nil, s, ErrNotLeader
		}
		specs, err := buildPartnerSpecs(s.Config, s.Bid, s.Hands[s.Leader], s.RemovedTwos, cmd.Partners)
		if err != nil {
			return nil, s, err
		}
		next := s.clone()
		next.Partners = specs
		next.Phase = PhasePlaying
		next.Round = 0
		next.RoundLeader = s.Leader
		next.Trick = &Trick{Plays: []Play{}, TurnIndex: seatIndex(s.Seats, s.Leader)}
		return []Event{
			{Type: EvtPartnersSelected, Player: cmd.Player, Partners: slices.Clone(specs)},
			{Type: EvtPhaseChanged, Phase: PhasePlaying},
		}, next, nil

	default:
		return nil, s, rejectOutOfPhase(cmd)
	}
}

func applyPlaying(s Session, cmd Command) ([]Event, Session, error) {
	if cmd.Type != CmdPlayCard {
		return nil, s, rejectOutOfPhase(cmd)
	}
	t := s.Trick
	if t == nil {
		return nil, s, ErrWrongPhase
	}
	if t.TurnIndex < 0 || t.TurnIndex >= len(s.Seats) || s.Seats[t.TurnIndex] != cmd.Player {
		return nil, s, ErrNotYourTurn
	}
	hand := s.Hands[cmd.Player]
	i := indexOfCard(hand, cmd.Card)
	if i < 0 {
		return nil, s, fmt.Errorf("%w: %s", ErrCardNotInHand, cmd.Card)
	}
	if t.LedSuit != "" && cmd.Card.Suit != t.LedSuit && holdsSuit(hand, t.LedSuit) {
		return nil, s, fmt.Errorf("%w: %s led", ErrMustFollowSuit, t.LedSuit)
	}

	next := s.clone()
	next.Hands[cmd.Player] = slices.Delete(next.Hands[cmd.Player], i, i+1)
	nt := next.Trick
	if len(nt.Plays) == 0 {
		nt.LedSuit = cmd.Card.Suit
	}
	nt.Plays = append(nt.Plays, Play{Player: cmd.Player, Card: cmd.Card})

	card := cmd.Card
	events := []Event{{Type: EvtCardPlayed, Player: cmd.Player, Card: &card}}
	if idx := revealOnPlay(&next, cmd.Player, cmd.Card); idx >= 0 {
		face := next.Partners[idx].Card
		events = append(events, Event{Type: EvtPartnerRevealed, Player: cmd.Player, Card: &face})
	}

	if len(nt.Plays) < len(next.Seats) {
		nt.TurnIndex = (nt.TurnIndex + 1) % len(next.Seats)
		return events, next, nil
	}
	events = completeTrick(&next, events)
	return events, next, nil
}

func completeTrick(next *Session, events []Event) []Event {
	t := next.Trick
	winner := ResolveTrick(t.Plays, t.LedSuit, next.Trump)
	done := CompletedTrick{Winner: winner.Player, Points: TrickPoints(t.Plays), Plays: t.Plays}
	next.Tricks = append(next.Tricks, done)
	next.Round++
	events = append(events, Event{Type: EvtTrickCompleted, Player: winner.Player, Trick: &done})

	if next.Round < next.Config.Rounds {
		next.RoundLeader = winner.Player
		next.Trick = &Trick{Plays: []Play{}, TurnIndex: seatIndex(next.Seats, winner.Player)}
		return events
	}

	next.Trick = nil
	next.Phase = PhaseScoring
	events = append(events, Event{Type: EvtPhaseChanged, Phase: PhaseScoring})

	result := ComputeScore(next.Teams, next.Tricks, next.Bid, next.Leader)
	next.Scores = ApplyScore(next.Scores, result)
	next.LastResult = &result
	next.NextRoundReady = []PlayerID{}
	next.Phase = PhaseFinished
	return append(events,
		Event{Type: EvtRoundScored, Player: next.Leader, Result: &result},
		Event{Type: EvtPhaseChanged, Phase: PhaseFinished},
	)
}

func applyFinished(s Session, cmd Command) ([]Event, Session, error) {
	if cmd.Type != CmdReadyNextRound {
		return nil, s, rejectOutOfPhase(cmd)
	}
	if slices.Contains(s.NextRoundReady, cmd.Player) {
		return nil, s, ErrAlreadyReady
	}
	ready := append(slices.Clone(s.NextRoundReady), cmd.Player)
	events := []Event{{Type: EvtReadyUpdated, Player: cmd.Player, Ready: slices.Clone(ready)}}
	if len(ready) < len(s.Seats) {
		next := s.clone()
		next.NextRoundReady = ready
		return events, next, nil
	}

	next, err := startRound(s)
	if err != nil {
		return nil, s, err
	}
	return append(events,
		Event{Type: EvtRoundStarted, Removed: slices.Clone(next.RemovedTwos)},
		Event{Type: EvtPhaseChanged, Phase: PhaseBidding},
	), next, nil
}

func rejectOutOfPhase(cmd Command) error {
	switch cmd.Type {
	case CmdPlaceBid, CmdPass, CmdSelectTrump, CmdSelectPartners, CmdPlayCard, CmdReadyNextRound:
		return ErrWrongPhase
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}
}
