package engine

import "slices"

type SeatView struct {
	Player   PlayerID `json:"player"`
	Name     string   `json:"name,omitempty"`
	HandSize int      `json:"handSize"`
	Score    int      `json:"score"`
}

type BiddingView struct {
	CurrentBid    int        `json:"currentBid"`
	HighestBidder PlayerID   `json:"highestBidder,omitempty"`
	CurrentTurn   PlayerID   `json:"currentTurn,omitempty"`
	Passed        []PlayerID `json:"passed"`
	StartingBid   int        `json:"startingBid"`
	MinNextBid    int        `json:"minNextBid"`
	MaxBid        int        `json:"maxBid"`
	Increment     int        `json:"increment"`
	Complete      bool       `json:"complete"`
}

type TrickView struct {
	LedSuit     Suit     `json:"ledSuit,omitempty"`
	Plays       []Play   `json:"plays"`
	CurrentTurn PlayerID `json:"currentTurn,omitempty"`
}

// PlayerView is what one seat is allowed to see. Other players' hands never
// appear; a partner is only named once revealed.
type PlayerView struct {
	SessionID        string           `json:"sessionId"`
	ConfigKey        string           `json:"configKey"`
	Phase            Phase            `json:"phase"`
	DealNumber       int              `json:"dealNumber"`
	Seats            []SeatView       `json:"seats"`
	CurrentTurn      PlayerID         `json:"currentTurn,omitempty"`
	RemovedTwos      []Card           `json:"removedTwos"`
	Bidding          BiddingView      `json:"bidding"`
	Leader           PlayerID         `json:"leader,omitempty"`
	Bid              int              `json:"bid,omitempty"`
	Trump            Suit             `json:"trump,omitempty"`
	PartnerCardCount int              `json:"partnerCardCount"`
	Partners         []PartnerSpec    `json:"partners"`
	Teams            Teams            `json:"teams"`
	RevealedPartners []PlayerID       `json:"revealedPartners"`
	Round            int              `json:"round"`
	Rounds           int              `json:"rounds"`
	Trick            *TrickView       `json:"trick,omitempty"`
	RoundLeader      PlayerID         `json:"roundLeader,omitempty"`
	Tricks           []CompletedTrick `json:"tricks"`
	LastResult       *ScoreResult     `json:"lastResult,omitempty"`
	NextRoundReady   []PlayerID       `json:"nextRoundReady"`
	MyHand           []Card           `json:"myHand"`
	ValidPlays       []Card           `json:"validPlays"`
}

func ViewFor(s Session, viewer PlayerID) PlayerView {
	v := PlayerView{
		SessionID:        s.ID,
		ConfigKey:        s.Config.Key,
		Phase:            s.Phase,
		DealNumber:       s.DealNumber,
		CurrentTurn:      s.CurrentTurn(),
		RemovedTwos:      append([]Card{}, s.RemovedTwos...),
		Leader:           s.Leader,
		Bid:              s.Bid,
		Trump:            s.Trump,
		Partners:         make([]PartnerSpec, 0, len(s.Partners)),
		Teams:            s.Teams.clone(),
		RevealedPartners: slices.Clone(s.RevealedPartners),
		Round:            s.Round,
		Rounds:           s.Config.Rounds,
		RoundLeader:      s.RoundLeader,
		Tricks:           slices.Clone(s.Tricks),
		LastResult:       s.LastResult,
		NextRoundReady:   slices.Clone(s.NextRoundReady),
		MyHand:           []Card{},
		ValidPlays:       ValidPlays(s, viewer),
	}

	for _, p := range s.Seats {
		v.Seats = append(v.Seats, SeatView{Player: p, Name: s.Names[p], HandSize: len(s.Hands[p]), Score: s.Scores[p]})
	}
	if h, ok := s.Hands[viewer]; ok {
		v.MyHand = slices.Clone(h)
	}

	b := s.Bidding
	v.Bidding = BiddingView{
		CurrentBid:    b.CurrentBid,
		HighestBidder: b.CurrentBidder,
		Passed:        slices.Clone(b.Passes),
		StartingBid:   b.StartingBid,
		MinNextBid:    b.MinNextBid(s.Config),
		MaxBid:        s.Config.BidMax,
		Increment:     s.Config.BidIncrement,
		Complete:      b.Complete,
	}
	if s.Phase == PhaseBidding {
		v.Bidding.CurrentTurn = s.CurrentTurn()
	}

	if s.Leader != "" {
		v.PartnerCardCount = s.Config.PartnerCount(s.Bid)
	}
	for _, sp := range s.Partners {
		if !sp.Revealed {
			sp.RevealedBy = ""
		}
		v.Partners = append(v.Partners, sp)
	}

	if s.Trick != nil {
		v.Trick = &TrickView{LedSuit: s.Trick.LedSuit, Plays: slices.Clone(s.Trick.Plays), CurrentTurn: s.CurrentTurn()}
	}
	return v
}
