package engine

import "fmt"

const deckSize = 52

type TeamSplit struct {
	Bid    int `json:"bid"`
	Oppose int `json:"oppose"`
}

// Config is the immutable rule set for one player count and deck count.
// A zero BidThreshold means the variant has no bid threshold.
type Config struct {
	Key            string     `json:"key"`
	Players        int        `json:"players"`
	Decks          int        `json:"decks"`
	TotalCards     int        `json:"totalCards"`
	RemoveTwos     int        `json:"removeTwos"`
	CardsPerPlayer int        `json:"cardsPerPlayer"`
	Rounds         int        `json:"rounds"`
	DefaultTeams   TeamSplit  `json:"defaultTeams"`
	AdvantageTeams *TeamSplit `json:"advantageTeams,omitempty"`
	PartnerCards   int        `json:"partnerCards"`
	MaxPoints      int        `json:"maxPoints"`
	BidStart       int        `json:"bidStart"`
	BidMax         int        `json:"bidMax"`
	BidIncrement   int        `json:"bidIncrement"`
	BidThreshold   int        `json:"bidThreshold,omitempty"`
}

func variant(players, decks, removeTwos int, teams TeamSplit, advantage *TeamSplit, partners, threshold int) Config {
	dealt := decks*deckSize - removeTwos
	c := Config{
		Key:            fmt.Sprintf("%dP%dD", players, decks),
		Players:        players,
		Decks:          decks,
		TotalCards:     dealt,
		RemoveTwos:     removeTwos,
		CardsPerPlayer: dealt / players,
		Rounds:         dealt / players,
		DefaultTeams:   teams,
		AdvantageTeams: advantage,
		PartnerCards:   partners,
		BidIncrement:   5,
		BidThreshold:   threshold,
	}
	if decks == 1 {
		c.MaxPoints, c.BidStart, c.BidMax = 250, 150, 250
	} else {
		c.MaxPoints, c.BidStart, c.BidMax = 500, 300, 500
	}
	return c
}

var catalog = map[string]Config{}

func init() {
	for _, c := range []Config{
		variant(4, 1, 0, TeamSplit{2, 2}, nil, 1, 0),
		variant(5, 1, 2, TeamSplit{2, 3}, &TeamSplit{3, 2}, 1, 200),
		variant(6, 1, 4, TeamSplit{3, 3}, nil, 2, 0),
		variant(6, 2, 2, TeamSplit{3, 3}, nil, 2, 0),
		variant(7, 2, 6, TeamSplit{3, 4}, &TeamSplit{4, 3}, 2, 400),
		variant(8, 2, 0, TeamSplit{4, 4}, nil, 3, 0),
		variant(9, 2, 5, TeamSplit{4, 5}, &TeamSplit{5, 4}, 3, 400),
		variant(10, 2, 8, TeamSplit{5, 5}, nil, 4, 0),
	} {
		catalog[c.Key] = c
	}
}

// ConfigFor resolves a variant. decks == 0 means the caller did not choose:
// four or five players get one deck, seven to ten get two, and six is
// ambiguous.
func ConfigFor(players, decks int) (Config, error) {
	if decks == 0 {
		switch {
		case players == 6:
			return Config{}, fmt.Errorf("%w: 6 players requires a deck count", ErrUnsupportedVariant)
		case players <= 5:
			decks = 1
		default:
			decks = 2
		}
	}
	c, ok := catalog[fmt.Sprintf("%dP%dD", players, decks)]
	if !ok {
		return Config{}, fmt.Errorf("%w: %d players with %d decks", ErrUnsupportedVariant, players, decks)
	}
	return c, nil
}

// WithBidThreshold applies a per-session threshold override. Variants without
// a threshold ignore it.
func (c Config) WithBidThreshold(override int) Config {
	if c.BidThreshold != 0 && override > 0 {
		c.BidThreshold = override
	}
	return c
}

// PartnerCount is how many hidden partner cards the leader names for a
// winning bid.
func (c Config) PartnerCount(bid int) int {
	n := c.PartnerCards
	if c.BidThreshold != 0 && bid >= c.BidThreshold {
		n++
	}
	return n
}

// TeamsFor reports the team split implied by the winning bid.
func (c Config) TeamsFor(bid int) TeamSplit {
	if c.AdvantageTeams != nil && c.BidThreshold != 0 && bid >= c.BidThreshold {
		return *c.AdvantageTeams
	}
	return c.DefaultTeams
}
