package engine

import (
	"fmt"
	"slices"
)

type Disambiguation string

const (
	AnyCopy    Disambiguation = ""
	FirstCopy  Disambiguation = "1st"
	SecondCopy Disambiguation = "2nd"
)

// PartnerChoice is one partner card as named by the leader.
type PartnerChoice struct {
	Card           Card           `json:"card"`
	Disambiguation Disambiguation `json:"disambiguation,omitempty"`
}

// PartnerSpec tracks a named partner card through the round. Card carries
// suit and rank only.
type PartnerSpec struct {
	Card           Card           `json:"card"`
	Disambiguation Disambiguation `json:"disambiguation,omitempty"`
	PlayCount      int            `json:"playCount"`
	Revealed       bool           `json:"revealed"`
	RevealedBy     PlayerID       `json:"revealedBy,omitempty"`
}

type Teams struct {
	Bid    []PlayerID `json:"bid"`
	Oppose []PlayerID `json:"oppose"`
}

func (t Teams) clone() Teams {
	return Teams{Bid: slices.Clone(t.Bid), Oppose: slices.Clone(t.Oppose)}
}

// initialTeams puts the leader alone on the bid side.
func initialTeams(seats []PlayerID, leader PlayerID) Teams {
	t := Teams{Bid: []PlayerID{leader}, Oppose: make([]PlayerID, 0, len(seats)-1)}
	for _, p := range seats {
		if p != leader {
			t.Oppose = append(t.Oppose, p)
		}
	}
	return t
}

// buildPartnerSpecs validates the leader's choices against their hand and the
// twos pruned from this deal.
func buildPartnerSpecs(cfg Config, bid int, hand, removed []Card, choices []PartnerChoice) ([]PartnerSpec, error) {
	if want := cfg.PartnerCount(bid); len(choices) != want {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrPartnerCount, want, len(choices))
	}

	specs := make([]PartnerSpec, 0, len(choices))
	for _, ch := range choices {
		face := Card{Suit: ch.Card.Suit, Rank: ch.Card.Rank}
		if !face.valid() {
			return nil, fmt.Errorf("%w: %s%s", ErrInvalidCard, ch.Card.Rank, ch.Card.Suit)
		}
		switch ch.Disambiguation {
		case AnyCopy, FirstCopy, SecondCopy:
		default:
			return nil, fmt.Errorf("%w: unknown copy %q", ErrInvalidCard, ch.Disambiguation)
		}
		for _, sp := range specs {
			if sp.Card.SameFace(face) {
				return nil, fmt.Errorf("%w: %s%s", ErrDuplicatePartnerCard, face.Rank, face.Suit)
			}
		}

		held := countFace(hand, face)
		elsewhere := cfg.Decks - countFace(removed, face) - held
		if cfg.Decks == 1 {
			if held > 0 {
				return nil, ErrPartnerCardInHand
			}
			if ch.Disambiguation != AnyCopy {
				return nil, ErrDisambiguationNotAllowed
			}
		} else {
			switch held {
			case 2:
				return nil, ErrPartnerCardBothCopies
			case 1:
				if ch.Disambiguation != AnyCopy {
					return nil, ErrDisambiguationNotAllowed
				}
			case 0:
				if ch.Disambiguation == AnyCopy {
					return nil, ErrDisambiguationRequired
				}
			}
		}
		if elsewhere < 1 || (ch.Disambiguation == SecondCopy && elsewhere < 2) {
			return nil, fmt.Errorf("%w: %s%s", ErrPartnerCardNotInPlay, face.Rank, face.Suit)
		}

		specs = append(specs, PartnerSpec{Card: face, Disambiguation: ch.Disambiguation})
	}
	return specs, nil
}

// revealOnPlay runs partner detection for one play against s, which must
// already be a private copy. It returns the index of the spec revealed by
// this play, or -1.
func revealOnPlay(s *Session, player PlayerID, card Card) int {
	for i := range s.Partners {
		sp := &s.Partners[i]
		if sp.Revealed || !sp.Card.SameFace(card) {
			continue
		}
		sp.PlayCount++
		if player == s.Leader {
			return -1
		}
		reveal := sp.Disambiguation == AnyCopy ||
			(sp.Disambiguation == FirstCopy && sp.PlayCount == 1) ||
			(sp.Disambiguation == SecondCopy && sp.PlayCount == 2)
		if !reveal {
			return -1
		}
		sp.Revealed = true
		sp.RevealedBy = player
		if i := slices.Index(s.Teams.Oppose, player); i >= 0 {
			s.Teams.Oppose = slices.Delete(s.Teams.Oppose, i, i+1)
		}
		if !slices.Contains(s.Teams.Bid, player) {
			s.Teams.Bid = append(s.Teams.Bid, player)
		}
		if !slices.Contains(s.RevealedPartners, player) {
			s.RevealedPartners = append(s.RevealedPartners, player)
		}
		return i
	}
	return -1
}
