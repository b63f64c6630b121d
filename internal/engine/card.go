package engine

import (
	"fmt"
	"slices"
)

type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

// Suits in deck construction order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) Valid() bool { return slices.Contains(Suits, s) }

type Rank string

// Ranks from lowest to highest.
var Ranks = []Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

func (r Rank) Valid() bool { return slices.Contains(Ranks, r) }

func (r Rank) order() int { return slices.Index(Ranks, r) }

// CompareRank returns -1, 0 or 1 as a ranks below, equal to or above b.
func CompareRank(a, b Rank) int {
	oa, ob := a.order(), b.order()
	switch {
	case oa < ob:
		return -1
	case oa > ob:
		return 1
	default:
		return 0
	}
}

type PlayerID string

// Card identity is all three fields. Two cards with the same suit and rank
// but a different DeckIndex are duplicates.
type Card struct {
	Suit      Suit `json:"suit"`
	Rank      Rank `json:"rank"`
	DeckIndex int  `json:"deckIndex"`
}

// SameFace reports whether c and o share suit and rank.
func (c Card) SameFace(o Card) bool { return c.Suit == o.Suit && c.Rank == o.Rank }

func (c Card) String() string { return fmt.Sprintf("%s%s#%d", c.Rank, c.Suit, c.DeckIndex) }

func (c Card) valid() bool {
	return c.Suit.Valid() && c.Rank.Valid() && c.DeckIndex >= 0 && c.DeckIndex <= 1
}

// PointValue is the scoring weight of a card: the three of spades is worth 30,
// tens and face cards 10, fives 5, everything else nothing.
func PointValue(c Card) int {
	switch {
	case c.Suit == Spades && c.Rank == "3":
		return 30
	case c.Rank == "10", c.Rank == "J", c.Rank == "Q", c.Rank == "K", c.Rank == "A":
		return 10
	case c.Rank == "5":
		return 5
	default:
		return 0
	}
}

func countFace(cards []Card, face Card) int {
	n := 0
	for _, c := range cards {
		if c.SameFace(face) {
			n++
		}
	}
	return n
}
