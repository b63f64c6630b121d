package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeScore_BidFailure(t *testing.T) {
	teams := Teams{Bid: []PlayerID{"L", "X"}, Oppose: []PlayerID{"Y", "Z"}}
	tricks := []CompletedTrick{
		{Winner: "L", Points: 100},
		{Winner: "X", Points: 50},
		{Winner: "Y", Points: 60},
		{Winner: "Z", Points: 40},
	}
	r := ComputeScore(teams, tricks, 200, "L")

	assert.False(t, r.BidTeamSuccess)
	assert.Equal(t, 150, r.BidTeamPoints)
	assert.Equal(t, 100, r.OpposeTeamPoints)
	assert.Equal(t, map[PlayerID]int{"L": -200, "X": 50, "Y": 100, "Z": 100}, r.Deltas)
}

func TestComputeScore_SuccessIsNotSplit(t *testing.T) {
	teams := Teams{Bid: []PlayerID{"L", "X"}, Oppose: []PlayerID{"Y", "Z"}}
	tricks := []CompletedTrick{{Winner: "X", Points: 180}, {Winner: "Y", Points: 70}}
	r := ComputeScore(teams, tricks, 175, "L")

	assert.True(t, r.BidTeamSuccess)
	assert.Equal(t, map[PlayerID]int{"L": 180, "X": 180, "Y": 70, "Z": 70}, r.Deltas)
}

func TestComputeScore_ExactBidFails(t *testing.T) {
	teams := Teams{Bid: []PlayerID{"L"}, Oppose: []PlayerID{"Y"}}
	r := ComputeScore(teams, []CompletedTrick{{Winner: "L", Points: 150}, {Winner: "Y", Points: 25}}, 150, "L")
	assert.False(t, r.BidTeamSuccess)
	assert.Equal(t, -150, r.Deltas["L"])
}

func TestComputeScore_FloorsHalf(t *testing.T) {
	teams := Teams{Bid: []PlayerID{"L", "X"}, Oppose: []PlayerID{"Y"}}
	r := ComputeScore(teams, []CompletedTrick{{Winner: "Y", Points: 55}}, 150, "L")
	assert.Equal(t, 27, r.Deltas["X"])
}

func TestApplyScore(t *testing.T) {
	scores := map[PlayerID]int{"L": 100, "X": 0}
	out := ApplyScore(scores, ScoreResult{Deltas: map[PlayerID]int{"L": -200, "X": 50}})
	assert.Equal(t, map[PlayerID]int{"L": -100, "X": 50}, out)
	assert.Equal(t, 100, scores["L"], "input is not modified")
}
