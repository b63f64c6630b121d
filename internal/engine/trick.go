package engine

type Play struct {
	Player PlayerID `json:"player"`
	Card   Card     `json:"card"`
}

type Trick struct {
	LedSuit   Suit   `json:"ledSuit,omitempty"`
	Plays     []Play `json:"plays"`
	TurnIndex int    `json:"turnIndex"`
}

type CompletedTrick struct {
	Winner PlayerID `json:"winner"`
	Points int      `json:"points"`
	Plays  []Play   `json:"plays"`
}

// ResolveTrick picks the winning play. Trump beats the led suit unless trump
// was led. Within the deciding group a later copy of any card already played
// takes over whatever its rank, otherwise only a strictly higher rank does.
func ResolveTrick(plays []Play, led, trump Suit) Play {
	if len(plays) == 0 {
		return Play{}
	}
	var trumps, follows []Play
	for _, p := range plays {
		if trump != "" && p.Card.Suit == trump {
			trumps = append(trumps, p)
		}
		if p.Card.Suit == led {
			follows = append(follows, p)
		}
	}
	group := follows
	if len(trumps) > 0 && trump != led {
		group = trumps
	}
	if len(group) == 0 {
		return plays[0]
	}
	winner := group[0]
	seen := map[Rank]bool{winner.Card.Rank: true}
	for _, p := range group[1:] {
		if seen[p.Card.Rank] || CompareRank(p.Card.Rank, winner.Card.Rank) > 0 {
			winner = p
		}
		seen[p.Card.Rank] = true
	}
	return winner
}

func TrickPoints(plays []Play) int {
	total := 0
	for _, p := range plays {
		total += PointValue(p.Card)
	}
	return total
}

// ValidPlays lists the cards player may play now. It is empty unless the
// player is on turn in the playing phase.
func ValidPlays(s Session, player PlayerID) []Card {
	if s.Phase != PhasePlaying || s.Trick == nil {
		return []Card{}
	}
	if s.Trick.TurnIndex < 0 || s.Trick.TurnIndex >= len(s.Seats) || s.Seats[s.Trick.TurnIndex] != player {
		return []Card{}
	}
	hand := s.Hands[player]
	if s.Trick.LedSuit == "" {
		return append([]Card{}, hand...)
	}
	var follow []Card
	for _, c := range hand {
		if c.Suit == s.Trick.LedSuit {
			follow = append(follow, c)
		}
	}
	if len(follow) > 0 {
		return follow
	}
	return append([]Card{}, hand...)
}

func holdsSuit(hand []Card, suit Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

func indexOfCard(hand []Card, card Card) int {
	for i, c := range hand {
		if c == card {
			return i
		}
	}
	return -1
}
