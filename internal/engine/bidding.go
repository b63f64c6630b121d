package engine

import (
	"fmt"
	"slices"
)

type BiddingState struct {
	CurrentBid    int        `json:"currentBid"`
	CurrentBidder PlayerID   `json:"currentBidder,omitempty"`
	TurnIndex     int        `json:"turnIndex"`
	Passes        []PlayerID `json:"passes"`
	StartingBid   int        `json:"startingBid"`
	Complete      bool       `json:"complete"`
}

func NewBidding(cfg Config) BiddingState {
	return BiddingState{StartingBid: cfg.BidStart, Passes: []PlayerID{}}
}

// MinNextBid is the lowest amount the seat on turn may bid.
func (b BiddingState) MinNextBid(cfg Config) int {
	if b.CurrentBidder == "" {
		return b.StartingBid
	}
	return b.CurrentBid + cfg.BidIncrement
}

func (b BiddingState) HasPassed(p PlayerID) bool { return slices.Contains(b.Passes, p) }

// Winner returns the leader and the winning amount once bidding is complete.
func (b BiddingState) Winner() (PlayerID, int, bool) {
	if !b.Complete || b.CurrentBidder == "" {
		return "", 0, false
	}
	return b.CurrentBidder, b.CurrentBid, true
}

func (b BiddingState) checkTurn(seats []PlayerID, player PlayerID) error {
	if b.Complete {
		return ErrBiddingComplete
	}
	if b.TurnIndex < 0 || b.TurnIndex >= len(seats) || seats[b.TurnIndex] != player {
		return ErrNotYourTurn
	}
	if b.HasPassed(player) {
		return ErrAlreadyPassed
	}
	return nil
}

// PlaceBid records a bid. A bid at the ceiling, or a bid from the only seat
// that has not passed, closes the auction.
func PlaceBid(b BiddingState, cfg Config, seats []PlayerID, player PlayerID, amount int) (BiddingState, error) {
	if err := b.checkTurn(seats, player); err != nil {
		return b, err
	}
	if lowest := b.MinNextBid(cfg); amount < lowest {
		return b, fmt.Errorf("%w: minimum is %d", ErrBidTooLow, lowest)
	}
	if amount > cfg.BidMax {
		return b, fmt.Errorf("%w: maximum is %d", ErrBidTooHigh, cfg.BidMax)
	}
	if amount%cfg.BidIncrement != 0 {
		return b, fmt.Errorf("%w: increment is %d", ErrBidNotMultipleOfIncrement, cfg.BidIncrement)
	}

	next := b
	next.Passes = slices.Clone(b.Passes)
	next.CurrentBid = amount
	next.CurrentBidder = player
	if amount == cfg.BidMax || len(activeSeats(seats, next.Passes)) == 1 {
		next.Complete = true
		return next, nil
	}
	next.TurnIndex = nextActiveSeat(seats, b.TurnIndex, next.Passes)
	return next, nil
}

// Pass records a pass. redeal is true when every seat has passed without a
// single bid; the caller must start the deal over.
func Pass(b BiddingState, seats []PlayerID, player PlayerID) (next BiddingState, redeal bool, err error) {
	if err := b.checkTurn(seats, player); err != nil {
		return b, false, err
	}

	next = b
	next.Passes = append(slices.Clone(b.Passes), player)
	active := activeSeats(seats, next.Passes)
	switch {
	case len(active) <= 1 && b.CurrentBidder != "":
		// The standing bidder wins at their last amount.
		next.Complete = true
		return next, false, nil
	case len(active) == 0:
		return next, true, nil
	}
	next.TurnIndex = nextActiveSeat(seats, b.TurnIndex, next.Passes)
	return next, false, nil
}
