package game

import (
	"github.com/google/uuid"

	"pokerserver/poker"
)

// SeatSummary is the public view of one occupied seat. It never
// carries hole cards.
type SeatSummary struct {
	Position int    `json:"position"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Chips    int    `json:"chips"`
}

// TableSnapshot is the canonical authoritative state of a session,
// built under the session lock once per transition. The same snapshot
// goes to every subscribed observer; each recipient adapts its own
// redacted copy, so seat and visibility logic lives in one place.
type TableSnapshot struct {
	SessionID  int           `json:"sessionId"`
	Pot        int           `json:"pot"`
	DealerSeat int           `json:"dealerSeat"`
	ActingSeat int           `json:"actingSeat"`
	ActorName  string        `json:"actorName"`
	TableCards []poker.Card  `json:"tableCards"`
	LastAction string        `json:"lastAction"`
	Seats      []SeatSummary `json:"seats"`
}

// Adapt builds the per-recipient state message: the recipient's own
// public entry is dropped from the seat list and replaced with the
// private You block.
func (s *TableSnapshot) Adapt(position int, hand []poker.Card, chips int) *StateMessage {
	others := make([]SeatState, 0, len(s.Seats))
	for _, seat := range s.Seats {
		if seat.Position == position {
			continue
		}
		others = append(others, SeatState{
			Position: seat.Position,
			Username: seat.Username,
			Avatar:   seat.Avatar,
			Chips:    seat.Chips,
		})
	}

	tableCards := make([]poker.Card, len(s.TableCards))
	copy(tableCards, s.TableCards)
	ownHand := make([]poker.Card, len(hand))
	copy(ownHand, hand)

	return &StateMessage{
		MessageID: uuid.NewString(),
		Kind:      StateGame,
		Game: &GameState{
			Pot:        s.Pot,
			Dealer:     s.DealerSeat,
			Actor:      s.ActorName,
			TableCards: tableCards,
			You: YouState{
				Position: position,
				Hand:     ownHand,
				Chips:    chips,
			},
			OtherPlayers: others,
			LastAction:   s.LastAction,
		},
	}
}
