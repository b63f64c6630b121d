package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plays(pairs ...string) []Play {
	out := make([]Play, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Play{Player: PlayerID(pairs[i]), Card: card(pairs[i+1])})
	}
	return out
}

func TestResolveTrick(t *testing.T) {
	cases := []struct {
		name  string
		plays []Play
		trump Suit
		want  PlayerID
	}{
		{"led suit wins without trump", plays("P1", "10S", "P2", "AS", "P3", "2D", "P4", "KS"), Clubs, "P2"},
		{"any trump beats the led suit", plays("P1", "10S", "P2", "AS", "P3", "2H", "P4", "KS"), Hearts, "P3"},
		{"trump led is just the led suit", plays("P1", "10S", "P2", "AS", "P3", "2H", "P4", "KS"), Spades, "P2"},
		{"highest trump", plays("P1", "10S", "P2", "2H", "P3", "5H", "P4", "KS"), Hearts, "P3"},
		{"off-suit discard never wins", plays("P1", "3S", "P2", "AD", "P3", "AC", "P4", "4S"), Hearts, "P4"},
		{"later duplicate wins", plays("P1", "AH#0", "P2", "10H", "P3", "AH#1"), Hearts, "P3"},
		{"later duplicate trump wins", plays("P1", "5S", "P2", "KH#0", "P3", "QH", "P4", "KH#1", "P5", "AS"), Hearts, "P4"},
		{"duplicate of a beaten card", plays("P1", "5S", "P2", "KH#0", "P3", "AH", "P4", "KH#1"), Hearts, "P4"},
		{"duplicate of a beaten led card", plays("P1", "9S#0", "P2", "QS", "P3", "9S#1", "P4", "JS"), Clubs, "P3"},
		{"higher card after the duplicate", plays("P1", "9S#0", "P2", "QS", "P3", "9S#1", "P4", "AS"), Clubs, "P4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTrick(tc.plays, tc.plays[0].Card.Suit, tc.trump)
			assert.Equal(t, tc.want, got.Player)
		})
	}
}

func TestTrickPoints(t *testing.T) {
	assert.Equal(t, 45, TrickPoints(plays("P1", "3S", "P2", "10H", "P3", "5D", "P4", "2C")))
}

func TestValidPlays(t *testing.T) {
	cfg, _ := ConfigFor(4, 0)
	s := playingSession(cfg, map[PlayerID][]Card{
		"P1": cards("AS", "3D"), "P2": cards("KS", "2H", "9S"), "P3": cards("4H", "5D"), "P4": cards("JS"),
	}, "P1", Hearts, nil)

	assert.ElementsMatch(t, cards("AS", "3D"), ValidPlays(s, "P1"))
	assert.Empty(t, ValidPlays(s, "P2"), "not on turn")

	_, s = mustApply(t, s, Command{Type: CmdPlayCard, Player: "P1", Card: card("AS")})
	assert.ElementsMatch(t, cards("KS", "9S"), ValidPlays(s, "P2"))

	_, _, err := Apply(s, Command{Type: CmdPlayCard, Player: "P2", Card: card("2H")})
	assert.ErrorIs(t, err, ErrMustFollowSuit)
	_, _, err = Apply(s, Command{Type: CmdPlayCard, Player: "P2", Card: card("KS#1")})
	assert.ErrorIs(t, err, ErrCardNotInHand)
	_, _, err = Apply(s, Command{Type: CmdPlayCard, Player: "P3", Card: card("4H")})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, s = mustApply(t, s, Command{Type: CmdPlayCard, Player: "P2", Card: card("9S")})
	assert.ElementsMatch(t, cards("4H", "5D"), ValidPlays(s, "P3"), "void in the led suit plays anything")
}

func TestPlayCard_CorruptTurnIndex(t *testing.T) {
	cfg, _ := ConfigFor(4, 0)
	for _, idx := range []int{-1, 4, 99} {
		s := playingSession(cfg, map[PlayerID][]Card{
			"P1": cards("AS"), "P2": cards("KS"), "P3": cards("4H"), "P4": cards("JS"),
		}, "P1", Hearts, nil)
		s.Trick.TurnIndex = idx

		events, got, err := Apply(s, Command{Type: CmdPlayCard, Player: "P1", Card: card("AS")})
		require.ErrorIs(t, err, ErrNotYourTurn, "turn index %d", idx)
		assert.Nil(t, events)
		assert.Equal(t, s, got)
		assert.Empty(t, ValidPlays(s, "P1"))
	}
}

func TestTrick_WinnerLeadsNext(t *testing.T) {
	cfg, _ := ConfigFor(4, 0)
	s := playingSession(cfg, map[PlayerID][]Card{
		"P1": cards("10S", "3C"), "P2": cards("AS", "4C"), "P3": cards("2H", "5C"), "P4": cards("KS", "6C"),
	}, "P1", Hearts, nil)

	s, events := playAll(t, s,
		Play{"P1", card("10S")}, Play{"P2", card("AS")}, Play{"P3", card("2H")}, Play{"P4", card("KS")},
	)
	require.True(t, ContainsEvent(events, EvtTrickCompleted))
	require.Len(t, s.Tricks, 1)
	assert.Equal(t, PlayerID("P3"), s.Tricks[0].Winner)
	assert.Equal(t, 30, s.Tricks[0].Points)
	assert.Equal(t, 1, s.Round)
	assert.Equal(t, PlayerID("P3"), s.RoundLeader)
	assert.Equal(t, PlayerID("P3"), s.CurrentTurn())
	assert.Empty(t, s.Trick.Plays)
	assert.Equal(t, PhasePlaying, s.Phase)
}

func TestTrick_LastTrickScoresRound(t *testing.T) {
	cfg, _ := ConfigFor(4, 0)
	cfg.Rounds = 1
	s := playingSession(cfg, map[PlayerID][]Card{
		"P1": cards("10S"), "P2": cards("AS"), "P3": cards("3S"), "P4": cards("KS"),
	}, "P1", Hearts, nil)

	s, events := playAll(t, s,
		Play{"P1", card("10S")}, Play{"P2", card("AS")}, Play{"P3", card("3S")}, Play{"P4", card("KS")},
	)
	require.True(t, ContainsEvent(events, EvtRoundScored))
	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Nil(t, s.Trick)
	require.NotNil(t, s.LastResult)
	assert.Equal(t, 60, s.LastResult.OpposeTeamPoints)
	assert.Equal(t, -150, s.Scores["P1"])
	assert.Equal(t, 60, s.Scores["P2"])

	_, _, err := Apply(s, Command{Type: CmdPlayCard, Player: "P1", Card: card("10S")})
	assert.ErrorIs(t, err, ErrWrongPhase)
}
