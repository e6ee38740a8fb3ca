package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pokerserver/poker"
)

var playerLogger = log.With().Str("logger_name", "game::player").Logger()

// Client is the outbound half of the transport boundary. The wire
// format and socket handling behind it belong to the adapter.
type Client interface {
	Send(message *StateMessage) error
}

// Player binds one connected identity to at most one session and one
// lobby. It translates inbound action messages into session calls and
// adapts outbound canonical snapshots into the per-recipient view.
//
// The identity boundary supplies name, avatar and starting chips,
// already validated.
type Player struct {
	registry *Registry
	client   Client
	name     string
	avatar   string

	lock    sync.Mutex
	chips   int
	hand    []poker.Card
	seat    int
	session *Session
	lobby   *Lobby
}

func NewPlayer(name string, avatar string, chips int, client Client, registry *Registry) *Player {
	return &Player{
		registry: registry,
		client:   client,
		name:     name,
		avatar:   avatar,
		chips:    chips,
		seat:     -1,
	}
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Avatar() string {
	return p.avatar
}

func (p *Player) Chips() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.chips
}

func (p *Player) Hand() []poker.Card {
	p.lock.Lock()
	defer p.lock.Unlock()
	hand := make([]poker.Card, len(p.hand))
	copy(hand, p.hand)
	return hand
}

func (p *Player) Summary() LobbyOccupant {
	p.lock.Lock()
	defer p.lock.Unlock()
	return LobbyOccupant{Username: p.name, Avatar: p.avatar, Chips: p.chips}
}

// HandleAction applies one validated action message. After every
// message a player left in neither a session nor a lobby is parked in
// the first available lobby.
func (p *Player) HandleAction(message *ActionMessage) {
	switch message.Kind {
	case ActionQuit:
		p.leaveSession()
	case ActionBet:
		p.handleBet(message.Bet)
	case ActionFold:
		p.handleFold(message.Fold)
	case ActionJoin:
		p.handleJoin(message.Join)
	}
	p.ensureMembership()
}

func (p *Player) handleBet(bet *BetAction) {
	p.lock.Lock()
	session := p.session
	chips := p.chips
	p.lock.Unlock()
	if session == nil {
		return
	}

	forwarded := BetAction{Amount: bet.Amount, AllIn: bet.AllIn}
	if bet.AllIn {
		// the declared amount yields to the actual remaining stack
		forwarded.Amount = chips
	} else if bet.Amount <= 0 || bet.Amount >= chips {
		playerLogger.Info().Str("player", p.name).Int("amount", bet.Amount).
			Int("chips", chips).Msg("Bet rejected: invalid amount")
		return
	}

	// optimistic local check, committed only once the session accepts;
	// a stale out-of-turn submit must not corrupt the stack
	if session.ApplyAction(p, &ActionMessage{Kind: ActionBet, Bet: &forwarded}) {
		p.lock.Lock()
		p.chips -= forwarded.Amount
		p.lock.Unlock()
	}
}

func (p *Player) handleFold(fold *FoldAction) {
	p.lock.Lock()
	session := p.session
	p.lock.Unlock()
	if session != nil {
		session.ApplyAction(p, &ActionMessage{Kind: ActionFold, Fold: fold})
	}
	if fold != nil && fold.Quit {
		p.leaveSession()
	}
}

func (p *Player) handleJoin(join *JoinAction) {
	session := p.registry.Session(join.GameID)
	if session == nil {
		// unknown IDs are ignored, the client may retry with a fresh
		// lobby listing
		playerLogger.Debug().Str("player", p.name).Int("gameID", join.GameID).
			Msg("Join requested for unknown session")
		return
	}
	p.JoinSession(session)
}

// JoinSession subscribes first and requests a seat second; only when
// both succeed does the player detach from any prior session or lobby.
// Rejoining the current session keeps the existing seat.
func (p *Player) JoinSession(session *Session) bool {
	p.lock.Lock()
	rejoin := p.session == session
	p.lock.Unlock()
	if rejoin {
		return true
	}

	session.Subscribe(p)
	if !session.AddPlayer(p) {
		session.Unsubscribe(p)
		return false
	}

	p.lock.Lock()
	prevSession := p.session
	prevLobby := p.lobby
	p.session = session
	p.lobby = nil
	p.lock.Unlock()

	if prevSession != nil && prevSession != session {
		prevSession.Unsubscribe(p)
		prevSession.RemovePlayer(p)
	}
	if prevLobby != nil {
		prevLobby.Unsubscribe(p)
		prevLobby.RemoveOccupant(p)
	}
	return true
}

func (p *Player) JoinLobby(lobby *Lobby) bool {
	lobby.Subscribe(p)
	if !lobby.AddOccupant(p) {
		lobby.Unsubscribe(p)
		return false
	}

	p.lock.Lock()
	prevSession := p.session
	prevLobby := p.lobby
	p.session = nil
	p.lobby = lobby
	p.lock.Unlock()

	if prevSession != nil {
		prevSession.Unsubscribe(p)
		prevSession.RemovePlayer(p)
	}
	if prevLobby != nil && prevLobby != lobby {
		prevLobby.Unsubscribe(p)
		prevLobby.RemoveOccupant(p)
	}
	return true
}

func (p *Player) leaveSession() {
	p.lock.Lock()
	session := p.session
	p.session = nil
	p.lock.Unlock()
	if session != nil {
		session.Unsubscribe(p)
		session.RemovePlayer(p)
	}
}

func (p *Player) ensureMembership() {
	p.lock.Lock()
	parked := p.session == nil && p.lobby == nil
	p.lock.Unlock()
	if !parked {
		return
	}
	if lobby := p.registry.FirstAvailableLobby(); lobby != nil {
		p.JoinLobby(lobby)
	}
}

// OnStateChanged adapts the canonical snapshot for this recipient and
// hands it to the transport. It never calls back into the session.
func (p *Player) OnStateChanged(snapshot *TableSnapshot) {
	p.lock.Lock()
	hand := make([]poker.Card, len(p.hand))
	copy(hand, p.hand)
	chips := p.chips
	position := p.seat
	p.lock.Unlock()

	if position == -1 {
		// watching without a seat, nothing private to attach
		hand = nil
	}

	if err := p.client.Send(snapshot.Adapt(position, hand, chips)); err != nil {
		playerLogger.Error().Str("player", p.name).Err(err).
			Msg("Unable to deliver state message")
	}
}

// OnLobbyChanged forwards the lobby listing to the transport.
func (p *Player) OnLobbyChanged(state *LobbyState) {
	message := &StateMessage{
		MessageID: uuid.NewString(),
		Kind:      StateLobby,
		Lobby:     state,
	}
	if err := p.client.Send(message); err != nil {
		playerLogger.Error().Str("player", p.name).Err(err).
			Msg("Unable to deliver lobby message")
	}
}

// setSeat, resetHand, addCardToHand and addChips are called by the
// session under its own lock while seating, dealing and settling.

func (p *Player) setSeat(seatNo int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.seat = seatNo
}

// clearSeat drops the cached seat index unless the player has already
// been seated by another session.
func (p *Player) clearSeat(session *Session) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.session == session || p.session == nil {
		p.seat = -1
	}
}

func (p *Player) resetHand() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.hand = nil
}

func (p *Player) addCardToHand(card poker.Card) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.hand = append(p.hand, card)
}

func (p *Player) addChips(amount int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.chips += amount
}
