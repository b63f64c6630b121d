package engine

import "slices"

func seatIndex(seats []PlayerID, p PlayerID) int { return slices.Index(seats, p) }

// nextActiveSeat walks clockwise from the seat after from and returns the
// first seat whose player is not in skip. It returns from when every other
// seat is skipped.
func nextActiveSeat(seats []PlayerID, from int, skip []PlayerID) int {
	n := len(seats)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if !slices.Contains(skip, seats[i]) {
			return i
		}
	}
	return from
}

func activeSeats(seats []PlayerID, passes []PlayerID) []PlayerID {
	out := make([]PlayerID, 0, len(seats))
	for _, p := range seats {
		if !slices.Contains(passes, p) {
			out = append(out, p)
		}
	}
	return out
}
