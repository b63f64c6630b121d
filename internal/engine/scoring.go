package engine

import (
	"maps"
	"slices"
)

type ScoreResult struct {
	Leader           PlayerID         `json:"leader"`
	BidAmount        int              `json:"bidAmount"`
	BidTeamPoints    int              `json:"bidTeamPoints"`
	OpposeTeamPoints int              `json:"opposeTeamPoints"`
	BidTeamSuccess   bool             `json:"bidTeamSuccess"`
	Deltas           map[PlayerID]int `json:"deltas"`
}

// ComputeScore settles a finished round. The bid side must beat the bid
// outright; a failed leader loses the bid amount and their revealed partners
// keep half of what the opposition took.
func ComputeScore(teams Teams, tricks []CompletedTrick, bid int, leader PlayerID) ScoreResult {
	r := ScoreResult{Leader: leader, BidAmount: bid, Deltas: map[PlayerID]int{}}
	for _, t := range tricks {
		switch {
		case slices.Contains(teams.Bid, t.Winner):
			r.BidTeamPoints += t.Points
		case slices.Contains(teams.Oppose, t.Winner):
			r.OpposeTeamPoints += t.Points
		}
	}
	r.BidTeamSuccess = r.BidTeamPoints > bid

	for _, p := range teams.Bid {
		switch {
		case r.BidTeamSuccess:
			r.Deltas[p] = r.BidTeamPoints
		case p == leader:
			r.Deltas[p] = -bid
		default:
			r.Deltas[p] = r.OpposeTeamPoints / 2
		}
	}
	for _, p := range teams.Oppose {
		r.Deltas[p] = r.OpposeTeamPoints
	}
	return r
}

// ApplyScore returns new cumulative totals with r's deltas added.
func ApplyScore(scores map[PlayerID]int, r ScoreResult) map[PlayerID]int {
	out := maps.Clone(scores)
	if out == nil {
		out = map[PlayerID]int{}
	}
	for p, d := range r.Deltas {
		out[p] += d
	}
	return out
}
