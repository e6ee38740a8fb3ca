package game

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

var registryLogger = log.With().Str("logger_name", "game::registry").Logger()

// Registry owns the process-wide session and lobby maps. It is
// constructed explicitly and passed to whoever creates players or
// sessions; sessions share the ID space with lobbies and never lock
// against each other.
type Registry struct {
	config  SessionConfig
	settler Settler
	persist PersistTableState

	lock     sync.RWMutex
	nextID   int
	sessions map[int]*Session
	lobbies  map[int]*Lobby
}

func NewRegistry(config SessionConfig, settler Settler, persist PersistTableState) *Registry {
	return &Registry{
		config:   config,
		settler:  settler,
		persist:  persist,
		nextID:   1,
		sessions: make(map[int]*Session),
		lobbies:  make(map[int]*Lobby),
	}
}

// CreateSession registers an empty session under a fresh ID.
func (r *Registry) CreateSession() (*Session, int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	id := r.nextID
	r.nextID++
	session := NewSession(id, r.config, r.settler, r.persist)
	r.sessions[id] = session
	registryLogger.Info().Int("session", id).Msg("Session created")
	return session, id
}

func (r *Registry) CreateLobby() (*Lobby, int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	id := r.nextID
	r.nextID++
	lobby := newLobby(id, r)
	r.lobbies[id] = lobby
	registryLogger.Info().Int("lobby", id).Msg("Lobby created")
	return lobby, id
}

func (r *Registry) Session(id int) *Session {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.sessions[id]
}

func (r *Registry) Lobby(id int) *Lobby {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.lobbies[id]
}

func (r *Registry) IsValidSession(id int) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// RemoveSession discards a finished session.
func (r *Registry) RemoveSession(id int) {
	r.lock.Lock()
	session := r.sessions[id]
	delete(r.sessions, id)
	r.lock.Unlock()
	if session != nil {
		session.Close()
		if r.persist != nil {
			if err := r.persist.Remove(id); err != nil {
				registryLogger.Error().Int("session", id).Err(err).
					Msg("Unable to remove persisted table state")
			}
		}
	}
}

// ListSessions returns the registered sessions in ID order.
func (r *Registry) ListSessions() []*Session {
	r.lock.RLock()
	defer r.lock.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID() < sessions[j].ID() })
	return sessions
}

// FirstAvailableLobby returns the lobby with the lowest ID, creating
// one when none exist yet.
func (r *Registry) FirstAvailableLobby() *Lobby {
	r.lock.RLock()
	var first *Lobby
	for _, lobby := range r.lobbies {
		if first == nil || lobby.ID() < first.ID() {
			first = lobby
		}
	}
	r.lock.RUnlock()
	if first != nil {
		return first
	}
	lobby, _ := r.CreateLobby()
	return lobby
}
