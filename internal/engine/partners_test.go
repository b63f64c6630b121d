package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPartnerSpecs_SingleDeck(t *testing.T) {
	four, _ := ConfigFor(4, 0)
	five, _ := ConfigFor(5, 0)
	hand := cards("AS", "KH")

	cases := []struct {
		name    string
		cfg     Config
		bid     int
		removed []Card
		choices []PartnerChoice
		wantErr error
	}{
		{"too many", four, 150, nil, []PartnerChoice{{Card: card("QS")}, {Card: card("JS")}}, ErrPartnerCount},
		{"in hand", four, 150, nil, []PartnerChoice{{Card: card("AS")}}, ErrPartnerCardInHand},
		{"copy on single deck", four, 150, nil, []PartnerChoice{{Card: card("QS"), Disambiguation: FirstCopy}}, ErrDisambiguationNotAllowed},
		{"bogus card", four, 150, nil, []PartnerChoice{{Card: Card{Suit: "X", Rank: "1"}}}, ErrInvalidCard},
		{"pruned two", five, 150, cards("2H", "2C"), []PartnerChoice{{Card: card("2H")}}, ErrPartnerCardNotInPlay},
		{"threshold needs one more", five, 200, nil, []PartnerChoice{{Card: card("QS")}}, ErrPartnerCount},
		{"ok", four, 150, nil, []PartnerChoice{{Card: card("QS")}}, nil},
		{"ok at threshold", five, 200, cards("2H", "2C"), []PartnerChoice{{Card: card("QS")}, {Card: card("2D")}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			specs, err := buildPartnerSpecs(tc.cfg, tc.bid, hand, tc.removed, tc.choices)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, specs, len(tc.choices))
			for _, sp := range specs {
				assert.Zero(t, sp.PlayCount)
				assert.False(t, sp.Revealed)
			}
		})
	}
}

func TestBuildPartnerSpecs_TwoDecks(t *testing.T) {
	cfg, _ := ConfigFor(6, 2)
	hand := cards("AS#0", "AS#1", "KH#0")
	removed := cards("2D#0", "2C#1")

	cases := []struct {
		name    string
		choices []PartnerChoice
		wantErr error
	}{
		{"both copies held", []PartnerChoice{{Card: card("AS")}, {Card: card("QC"), Disambiguation: FirstCopy}}, ErrPartnerCardBothCopies},
		{"one held takes no copy", []PartnerChoice{{Card: card("KH"), Disambiguation: FirstCopy}, {Card: card("QC"), Disambiguation: FirstCopy}}, ErrDisambiguationNotAllowed},
		{"none held needs copy", []PartnerChoice{{Card: card("KH")}, {Card: card("QC")}}, ErrDisambiguationRequired},
		{"same face twice", []PartnerChoice{{Card: card("QC"), Disambiguation: FirstCopy}, {Card: card("QC"), Disambiguation: SecondCopy}}, ErrDuplicatePartnerCard},
		{"second copy pruned", []PartnerChoice{{Card: card("KH")}, {Card: card("2C"), Disambiguation: SecondCopy}}, ErrPartnerCardNotInPlay},
		{"unknown copy", []PartnerChoice{{Card: card("KH")}, {Card: card("QC"), Disambiguation: "3rd"}}, ErrInvalidCard},
		{"first copy of half pruned two", []PartnerChoice{{Card: card("KH")}, {Card: card("2C"), Disambiguation: FirstCopy}}, nil},
		{"ok", []PartnerChoice{{Card: card("KH")}, {Card: card("QC"), Disambiguation: SecondCopy}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			specs, err := buildPartnerSpecs(cfg, 300, hand, removed, tc.choices)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, specs, 2)
			assert.Zero(t, specs[0].Card.DeckIndex)
		})
	}
}

func sixPlayerTable(hands map[PlayerID][]Card, specs ...PartnerSpec) Session {
	cfg, _ := ConfigFor(6, 2)
	return playingSession(cfg, hands, "P1", Spades, specs)
}

func playAll(t *testing.T, s Session, plays ...Play) (Session, []Event) {
	t.Helper()
	var all []Event
	for _, p := range plays {
		var events []Event
		events, s = mustApply(t, s, Command{Type: CmdPlayCard, Player: p.Player, Card: p.Card})
		all = append(all, events...)
	}
	return s, all
}

func revealedBy(events []Event) []PlayerID {
	var out []PlayerID
	for _, e := range events {
		if e.Type == EvtPartnerRevealed {
			out = append(out, e.Player)
		}
	}
	return out
}

func TestReveal_AnyCopyRevealsImmediately(t *testing.T) {
	s := sixPlayerTable(map[PlayerID][]Card{
		"P1": cards("9C"), "P2": cards("3C"), "P3": cards("QC#1"),
		"P4": cards("4C"), "P5": cards("5C"), "P6": cards("6C"),
	}, PartnerSpec{Card: card("QC")})

	s, events := playAll(t, s,
		Play{"P1", card("9C")}, Play{"P2", card("3C")}, Play{"P3", card("QC#1")},
	)
	assert.Equal(t, []PlayerID{"P3"}, revealedBy(events))
	assert.Equal(t, []PlayerID{"P1", "P3"}, s.Teams.Bid)
	assert.NotContains(t, s.Teams.Oppose, PlayerID("P3"))
	assert.Equal(t, []PlayerID{"P3"}, s.RevealedPartners)
	assert.True(t, s.Partners[0].Revealed)
	assert.Equal(t, PlayerID("P3"), s.Partners[0].RevealedBy)
}

func TestReveal_FirstAndSecondCopy(t *testing.T) {
	hands := map[PlayerID][]Card{
		"P1": cards("9C"), "P2": cards("QC#0"), "P3": cards("3C"),
		"P4": cards("QC#1"), "P5": cards("5C"), "P6": cards("6C"),
	}
	plays := []Play{
		{"P1", card("9C")}, {"P2", card("QC#0")}, {"P3", card("3C")}, {"P4", card("QC#1")},
	}

	first := sixPlayerTable(hands, PartnerSpec{Card: card("QC"), Disambiguation: FirstCopy})
	first, events := playAll(t, first, plays...)
	assert.Equal(t, []PlayerID{"P2"}, revealedBy(events), "the later copy must not reveal again")
	assert.Equal(t, 1, first.Partners[0].PlayCount)

	second := sixPlayerTable(hands, PartnerSpec{Card: card("QC"), Disambiguation: SecondCopy})
	second, events = playAll(t, second, plays...)
	assert.Equal(t, []PlayerID{"P4"}, revealedBy(events))
	assert.Equal(t, 2, second.Partners[0].PlayCount)
	assert.Equal(t, []PlayerID{"P1", "P4"}, second.Teams.Bid)
	assert.Contains(t, second.Teams.Oppose, PlayerID("P2"))
}

// The leader holds one copy of the partner card and plays it first. That
// play only counts; the other copy still reveals its holder.
func TestReveal_LeaderPlaysOwnCopy(t *testing.T) {
	s := sixPlayerTable(map[PlayerID][]Card{
		"P1": cards("KH#0", "AC"), "P2": cards("3H"), "P3": cards("KH#1"),
		"P4": cards("4H"), "P5": cards("5H"), "P6": cards("6H"),
	}, PartnerSpec{Card: card("KH")})

	s, events := playAll(t, s, Play{"P1", card("KH#0")})
	assert.Empty(t, revealedBy(events))
	assert.Equal(t, 1, s.Partners[0].PlayCount)
	assert.False(t, s.Partners[0].Revealed)
	assert.Equal(t, []PlayerID{"P1"}, s.Teams.Bid)

	s, events = playAll(t, s, Play{"P2", card("3H")}, Play{"P3", card("KH#1")})
	assert.Equal(t, []PlayerID{"P3"}, revealedBy(events))
	assert.Equal(t, 2, s.Partners[0].PlayCount)
}

func TestReveal_StopsAtFirstMatchingSpec(t *testing.T) {
	s := sixPlayerTable(map[PlayerID][]Card{
		"P1": cards("9C"), "P2": cards("QC#0"), "P3": cards("3C"),
		"P4": cards("4C"), "P5": cards("5C"), "P6": cards("6C"),
	},
		PartnerSpec{Card: card("JD")},
		PartnerSpec{Card: card("QC"), Disambiguation: SecondCopy},
	)
	s, events := playAll(t, s, Play{"P1", card("9C")}, Play{"P2", card("QC#0")})
	assert.Empty(t, revealedBy(events))
	assert.Equal(t, 0, s.Partners[0].PlayCount)
	assert.Equal(t, 1, s.Partners[1].PlayCount)
}
