package game

import (
	"sync"

	"github.com/rs/zerolog/log"
)

var lobbyLogger = log.With().Str("logger_name", "game::lobby").Logger()

// LobbyObserver receives the lobby listing after each membership
// change.
type LobbyObserver interface {
	OnLobbyChanged(state *LobbyState)
}

// Lobby holds the players between games and broadcasts the joinable
// session listing to them.
type Lobby struct {
	id       int
	registry *Registry

	lock      sync.Mutex
	observers []LobbyObserver
	occupants []*Player
}

func newLobby(id int, registry *Registry) *Lobby {
	return &Lobby{id: id, registry: registry}
}

func (l *Lobby) ID() int {
	return l.id
}

func (l *Lobby) Subscribe(observer LobbyObserver) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.observers = append(l.observers, observer)
}

func (l *Lobby) Unsubscribe(observer LobbyObserver) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for i, o := range l.observers {
		if o == observer {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return
		}
	}
}

func (l *Lobby) AddOccupant(p *Player) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, occupant := range l.occupants {
		if occupant == p {
			return false
		}
	}
	l.occupants = append(l.occupants, p)
	lobbyLogger.Info().Int("lobby", l.id).Str("player", p.Name()).Msg("Player entered lobby")
	l.broadcastLocked()
	return true
}

func (l *Lobby) RemoveOccupant(p *Player) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	for i, occupant := range l.occupants {
		if occupant == p {
			l.occupants = append(l.occupants[:i], l.occupants[i+1:]...)
			l.broadcastLocked()
			return true
		}
	}
	return false
}

func (l *Lobby) OccupantCount() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.occupants)
}

func (l *Lobby) buildStateLocked() *LobbyState {
	sessions := l.registry.ListSessions()
	games := make([]LobbyGameEntry, 0, len(sessions))
	for _, session := range sessions {
		seats := session.Seats()
		players := make([]LobbyOccupant, 0, len(seats))
		for _, seat := range seats {
			players = append(players, LobbyOccupant{
				Username: seat.Username,
				Avatar:   seat.Avatar,
				Chips:    seat.Chips,
			})
		}
		games = append(games, LobbyGameEntry{
			ID:      session.ID(),
			Open:    session.Open(),
			Players: players,
		})
	}

	occupants := make([]LobbyOccupant, 0, len(l.occupants))
	for _, occupant := range l.occupants {
		occupants = append(occupants, occupant.Summary())
	}
	return &LobbyState{Games: games, LobbyOccupants: occupants}
}

func (l *Lobby) broadcastLocked() {
	state := l.buildStateLocked()
	for _, observer := range l.observers {
		observer.OnLobbyChanged(state)
	}
}
