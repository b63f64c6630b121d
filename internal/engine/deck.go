package engine

import (
	"crypto/rand"
	"io"
	"math/big"
)

// randSource feeds every shuffle. Tests may swap it for a deterministic reader.
var randSource io.Reader = rand.Reader

// BuildDeck returns decks copies of the 52 card deck, ordered by deck, then
// suit, then rank.
func BuildDeck(decks int) []Card {
	out := make([]Card, 0, decks*deckSize)
	for d := 0; d < decks; d++ {
		for _, s := range Suits {
			for _, r := range Ranks {
				out = append(out, Card{Suit: s, Rank: r, DeckIndex: d})
			}
		}
	}
	return out
}

// Shuffle returns a Fisher-Yates permutation of cards. The input is not
// modified.
func Shuffle(cards []Card) ([]Card, error) {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(randSource, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, err
		}
		k := int(j.Int64())
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// PruneTwos removes n twos chosen uniformly at random among the twos in deck.
// Non-two cards keep their relative order.
func PruneTwos(deck []Card, n int) (remaining, removed []Card, err error) {
	var twos, rest []Card
	for _, c := range deck {
		if c.Rank == "2" {
			twos = append(twos, c)
		} else {
			rest = append(rest, c)
		}
	}
	if n <= 0 {
		return append([]Card(nil), deck...), nil, nil
	}
	if n > len(twos) {
		n = len(twos)
	}
	twos, err = Shuffle(twos)
	if err != nil {
		return nil, nil, err
	}
	removed = append(removed, twos[:n]...)
	remaining = make([]Card, 0, len(deck)-n)
	remaining = append(remaining, twos[n:]...)
	remaining = append(remaining, rest...)
	return remaining, removed, nil
}

// Deal shuffles deck and hands it out round-robin starting at seat 0.
func Deal(deck []Card, seats []PlayerID) (map[PlayerID][]Card, error) {
	if len(seats) == 0 {
		return nil, ErrInvalidSeats
	}
	shuffled, err := Shuffle(deck)
	if err != nil {
		return nil, err
	}
	hands := make(map[PlayerID][]Card, len(seats))
	for _, p := range seats {
		hands[p] = make([]Card, 0, len(deck)/len(seats)+1)
	}
	for i, c := range shuffled {
		p := seats[i%len(seats)]
		hands[p] = append(hands[p], c)
	}
	return hands, nil
}

// dealFresh builds, prunes and deals a new round for cfg.
func dealFresh(cfg Config, seats []PlayerID) (map[PlayerID][]Card, []Card, error) {
	deck, removed, err := PruneTwos(BuildDeck(cfg.Decks), cfg.RemoveTwos)
	if err != nil {
		return nil, nil, err
	}
	hands, err := Deal(deck, seats)
	if err != nil {
		return nil, nil, err
	}
	return hands, removed, nil
}
