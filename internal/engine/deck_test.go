package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeck(t *testing.T) {
	d := BuildDeck(2)
	require.Len(t, d, 104)
	seen := map[Card]bool{}
	for _, c := range d {
		require.False(t, seen[c], "duplicate identity %s", c)
		seen[c] = true
	}
	assert.Equal(t, Card{Suit: Spades, Rank: "2", DeckIndex: 0}, d[0])
	assert.Equal(t, Card{Suit: Spades, Rank: "2", DeckIndex: 1}, d[52])
}

func TestShuffle_IsPermutationAndLeavesInputAlone(t *testing.T) {
	d := BuildDeck(1)
	orig := append([]Card(nil), d...)
	s, err := Shuffle(d)
	require.NoError(t, err)
	assert.Equal(t, orig, d)
	assert.ElementsMatch(t, d, s)
}

func TestPruneTwos(t *testing.T) {
	d := BuildDeck(2)
	rest, removed, err := PruneTwos(d, 6)
	require.NoError(t, err)
	assert.Len(t, removed, 6)
	assert.Len(t, rest, 98)
	for _, c := range removed {
		assert.Equal(t, Rank("2"), c.Rank)
		assert.NotContains(t, rest, c)
	}

	rest, removed, err = PruneTwos(d, 0)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, d, rest)
}

func TestDeal_Completeness(t *testing.T) {
	for _, c := range catalog {
		t.Run(c.Key, func(t *testing.T) {
			ids := seatIDs(c.Players)
			hands, removed, err := dealFresh(c, ids)
			require.NoError(t, err)
			assert.Len(t, removed, c.RemoveTwos)

			total := 0
			all := map[Card]bool{}
			for _, p := range ids {
				assert.Len(t, hands[p], c.CardsPerPlayer)
				total += len(hands[p])
				for _, card := range hands[p] {
					assert.False(t, all[card])
					all[card] = true
				}
			}
			assert.Equal(t, c.Decks*deckSize-c.RemoveTwos, total)
		})
	}
}

func TestDeal_NoSeats(t *testing.T) {
	_, err := Deal(BuildDeck(1), nil)
	assert.ErrorIs(t, err, ErrInvalidSeats)
}
