package game

// Settler distributes the pot when a hand ends. Hand ranking and side
// pots are supplied by the caller's implementation; the session only
// knows who was still contesting the hand.
type Settler interface {
	// Settle returns the award per winner. The winners slice is in
	// seat order and may hold a single player (everyone else folded).
	Settle(pot int, winners []*Player) map[*Player]int
}

// EvenSplitSettler splits the pot evenly among the remaining players,
// giving any remainder to the earliest seat.
type EvenSplitSettler struct{}

func (EvenSplitSettler) Settle(pot int, winners []*Player) map[*Player]int {
	awards := make(map[*Player]int, len(winners))
	if len(winners) == 0 {
		return awards
	}
	share := pot / len(winners)
	remainder := pot % len(winners)
	for i, winner := range winners {
		awards[winner] = share
		if i == 0 {
			awards[winner] += remainder
		}
	}
	return awards
}
