package game

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"pokerserver/poker"
	"pokerserver/timer"
)

var sessionLogger = log.With().Str("logger_name", "game::session").Logger()

type SessionState string

const (
	WaitingForPlayers SessionState = "WAITING_FOR_PLAYERS"
	Betting           SessionState = "BETTING"
	EndGame           SessionState = "END_GAME"
)

type SessionConfig struct {
	MaxSeats      int
	MinPlayers    int
	ActionTimeSec uint32
}

// StateObserver receives every canonical snapshot a session builds.
// Implementations must not call back into the session.
type StateObserver interface {
	OnStateChanged(snapshot *TableSnapshot)
}

// Session is one forming or in-progress game at a single table.
//
// All state transitions run under one lock; the canonical snapshot is
// built inside the same critical section as the mutation that
// triggered it, so no two observers ever see snapshots of the same
// session out of relative order.
type Session struct {
	id          int
	config      SessionConfig
	settler     Settler
	persist     PersistTableState
	actionTimer *timer.ActionTimer

	lock         sync.Mutex
	observers    []StateObserver
	seats        map[int]*Player
	state        SessionState
	deck         *poker.Deck
	pot          int
	dealerSeat   int
	actingSeat   int
	tableCards   []poker.Card
	lastAction   string
	active       map[int]bool
	actedInRound map[int]bool
}

func NewSession(id int, config SessionConfig, settler Settler, persist PersistTableState) *Session {
	if settler == nil {
		settler = EvenSplitSettler{}
	}
	s := &Session{
		id:         id,
		config:     config,
		settler:    settler,
		persist:    persist,
		seats:      make(map[int]*Player),
		state:      WaitingForPlayers,
		dealerSeat: -1,
		actingSeat: -1,
		active:     make(map[int]bool),
	}
	if config.ActionTimeSec > 0 {
		s.actionTimer = timer.NewActionTimer(fmt.Sprintf("session-%d", id), config.ActionTimeSec, s.onActionTimeout)
		s.actionTimer.Run()
	}
	return s
}

func (s *Session) ID() int {
	return s.id
}

func (s *Session) State() SessionState {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

func (s *Session) Pot() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pot
}

// Open reports whether the session can currently be joined from the
// lobby.
func (s *Session) Open() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state == WaitingForPlayers && len(s.seats) < s.config.MaxSeats
}

// Seats returns the public summaries of the occupied seats, in seat
// order.
func (s *Session) Seats() []SeatSummary {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.seatSummariesLocked()
}

func (s *Session) Subscribe(observer StateObserver) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *Session) Unsubscribe(observer StateObserver) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// AddPlayer seats the player at the lowest free seat index. Crossing
// the configured minimum while waiting for players starts the first
// hand before returning.
func (s *Session) AddPlayer(p *Player) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.seatOfLocked(p); ok {
		sessionLogger.Info().Int("session", s.id).Str("player", p.Name()).
			Msg("Player is already seated")
		return false
	}
	seatNo := -1
	for i := 0; i < s.config.MaxSeats; i++ {
		if s.seats[i] == nil {
			seatNo = i
			break
		}
	}
	if seatNo == -1 {
		sessionLogger.Info().Int("session", s.id).Str("player", p.Name()).
			Msg(SeatUnavailableError{SessionID: s.id}.Error())
		return false
	}
	s.seats[seatNo] = p
	p.setSeat(seatNo)
	sessionLogger.Info().Int("session", s.id).Str("player", p.Name()).
		Int("seat", seatNo).Msg("Player took a seat")

	if s.state == WaitingForPlayers && len(s.seats) >= s.config.MinPlayers {
		s.startHandLocked()
	} else {
		s.broadcastLocked()
	}
	return true
}

// RemovePlayer frees the player's seat immediately, mid-hand removal
// included. Seats are never renumbered.
func (s *Session) RemovePlayer(p *Player) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	seatNo, ok := s.seatOfLocked(p)
	if !ok {
		return false
	}
	wasActing := seatNo == s.actingSeat
	delete(s.seats, seatNo)
	delete(s.active, seatNo)
	delete(s.actedInRound, seatNo)
	p.clearSeat(s)
	sessionLogger.Info().Int("session", s.id).Str("player", p.Name()).
		Int("seat", seatNo).Msg("Player left the table")

	if s.state == Betting {
		if len(s.active) <= 1 {
			s.endHandLocked()
		} else if wasActing {
			s.advanceLocked(seatNo)
		}
	}
	s.broadcastLocked()
	return true
}

func (s *Session) SeatOf(p *Player) (int, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.seatOfLocked(p)
}

func (s *Session) seatOfLocked(p *Player) (int, bool) {
	for seatNo, seated := range s.seats {
		if seated == p {
			return seatNo, true
		}
	}
	return 0, false
}

// StartHand begins a new hand. The automatic trigger is crossing the
// player minimum; re-running a finished session is the caller's policy.
func (s *Session) StartHand() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.state == Betting {
		return UnexpectedSessionStateError{State: s.state}
	}
	if len(s.seats) < s.config.MinPlayers {
		return NotEnoughPlayersError{Seated: len(s.seats), Min: s.config.MinPlayers}
	}
	s.startHandLocked()
	return nil
}

func (s *Session) startHandLocked() {
	s.deck = poker.NewDeck(nil)
	s.pot = 0
	s.tableCards = nil
	s.lastAction = ""
	s.dealerSeat = s.nextOccupiedSeat(s.dealerSeat)
	s.actingSeat = s.nextOccupiedSeat(s.dealerSeat + 1)

	s.active = make(map[int]bool)
	s.actedInRound = make(map[int]bool)
	order := s.dealOrderLocked()
	for _, seatNo := range order {
		s.active[seatNo] = true
		s.seats[seatNo].resetHand()
	}
	// one card per active seat per pass, starting left of the dealer
	for pass := 0; pass < 2; pass++ {
		for _, seatNo := range order {
			s.seats[seatNo].addCardToHand(s.deck.Draw(1)[0])
		}
	}

	s.state = Betting
	sessionLogger.Info().Int("session", s.id).
		Int("dealer", s.dealerSeat).Int("actor", s.actingSeat).
		Msg("New hand dealt")
	s.resetTimerLocked()
	s.broadcastLocked()
}

// dealOrderLocked returns the occupied seats beginning with the seat
// left of the dealer.
func (s *Session) dealOrderLocked() []int {
	order := make([]int, 0, len(s.seats))
	start := s.nextOccupiedSeat(s.dealerSeat)
	seatNo := start
	for {
		order = append(order, seatNo)
		seatNo = s.nextOccupiedSeat(seatNo)
		if seatNo == start {
			break
		}
	}
	return order
}

// ApplyAction applies a fold or bet from the acting player. An actor
// that does not hold the turn cursor is rejected silently with no
// mutation and no broadcast; resubmitting later is safe.
func (s *Session) ApplyAction(actor *Player, message *ActionMessage) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.state != Betting {
		return false
	}
	seatNo, ok := s.seatOfLocked(actor)
	if !ok || seatNo != s.actingSeat {
		return false
	}

	switch message.Kind {
	case ActionFold:
		delete(s.active, seatNo)
		delete(s.actedInRound, seatNo)
		s.lastAction = fmt.Sprintf("%s folds", actor.Name())
		if len(s.active) <= 1 {
			s.endHandLocked()
		} else {
			s.advanceLocked(seatNo)
		}

	case ActionBet:
		// stack legality is checked on the player side; the pot never
		// shrinks no matter what reaches the session
		if message.Bet == nil || message.Bet.Amount <= 0 {
			return false
		}
		s.pot += message.Bet.Amount
		s.actedInRound[seatNo] = true
		if message.Bet.AllIn {
			s.lastAction = fmt.Sprintf("%s goes all-in for %d", actor.Name(), message.Bet.Amount)
		} else {
			s.lastAction = fmt.Sprintf("%s bets %d", actor.Name(), message.Bet.Amount)
		}
		s.advanceLocked(seatNo)

	default:
		return false
	}

	s.broadcastLocked()
	return true
}

// advanceLocked moves the turn cursor after an action at lastPosition,
// dealing the next street once every active seat has acted.
func (s *Session) advanceLocked(lastPosition int) {
	if s.roundCompleteLocked() {
		s.dealStreetLocked()
		return
	}
	s.actingSeat = s.nextActiveSeat(lastPosition)
	s.resetTimerLocked()
}

func (s *Session) roundCompleteLocked() bool {
	for seatNo := range s.active {
		if !s.actedInRound[seatNo] {
			return false
		}
	}
	return true
}

func (s *Session) dealStreetLocked() {
	switch len(s.tableCards) {
	case 0:
		s.tableCards = append(s.tableCards, s.deck.Draw(3)...)
	case 3:
		s.tableCards = append(s.tableCards, s.deck.Draw(2)...)
	case 5:
		s.endHandLocked()
		return
	}
	s.actedInRound = make(map[int]bool)
	s.actingSeat = s.nextActiveSeat(s.dealerSeat)
	s.resetTimerLocked()
}

// nextActiveSeat scans upward from lastPosition+1, wrapping through
// 0..lastPosition, for the first seat that is occupied and still in
// the hand. Finding none while the active set is non-empty means the
// session is corrupted.
func (s *Session) nextActiveSeat(lastPosition int) int {
	for seatNo := lastPosition + 1; seatNo < s.config.MaxSeats; seatNo++ {
		if s.seats[seatNo] != nil && s.active[seatNo] {
			return seatNo
		}
	}
	for seatNo := 0; seatNo <= lastPosition; seatNo++ {
		if s.seats[seatNo] != nil && s.active[seatNo] {
			return seatNo
		}
	}
	panic(InvariantViolationError{
		Msg: fmt.Sprintf("session %d: no active seat found from position %d (%d active)", s.id, lastPosition, len(s.active)),
	})
}

// nextOccupiedSeat is the same wraparound scan over occupancy alone,
// used for moving the dealer button and for dealing.
func (s *Session) nextOccupiedSeat(lastPosition int) int {
	for seatNo := lastPosition + 1; seatNo < s.config.MaxSeats; seatNo++ {
		if s.seats[seatNo] != nil {
			return seatNo
		}
	}
	for seatNo := 0; seatNo <= lastPosition && seatNo < s.config.MaxSeats; seatNo++ {
		if s.seats[seatNo] != nil {
			return seatNo
		}
	}
	panic(InvariantViolationError{
		Msg: fmt.Sprintf("session %d: no occupied seat found from position %d", s.id, lastPosition),
	})
}

func (s *Session) endHandLocked() {
	s.state = EndGame
	s.actingSeat = -1
	if s.actionTimer != nil {
		s.actionTimer.Pause()
	}

	winners := make([]*Player, 0, len(s.active))
	for seatNo := 0; seatNo < s.config.MaxSeats; seatNo++ {
		if s.active[seatNo] && s.seats[seatNo] != nil {
			winners = append(winners, s.seats[seatNo])
		}
	}
	awards := s.settler.Settle(s.pot, winners)
	names := ""
	for _, winner := range winners {
		winner.addChips(awards[winner])
		if names != "" {
			names += ", "
		}
		names += winner.Name()
	}
	if len(winners) > 0 {
		s.lastAction = fmt.Sprintf("%s won the pot of %d", names, s.pot)
	}
	sessionLogger.Info().Int("session", s.id).Int("pot", s.pot).
		Str("winners", names).Msg("Hand ended")
}

func (s *Session) buildSnapshotLocked() *TableSnapshot {
	actorName := ""
	if s.actingSeat >= 0 && s.seats[s.actingSeat] != nil {
		actorName = s.seats[s.actingSeat].Name()
	}
	tableCards := make([]poker.Card, len(s.tableCards))
	copy(tableCards, s.tableCards)
	return &TableSnapshot{
		SessionID:  s.id,
		Pot:        s.pot,
		DealerSeat: s.dealerSeat,
		ActingSeat: s.actingSeat,
		ActorName:  actorName,
		TableCards: tableCards,
		LastAction: s.lastAction,
		Seats:      s.seatSummariesLocked(),
	}
}

func (s *Session) seatSummariesLocked() []SeatSummary {
	summaries := make([]SeatSummary, 0, len(s.seats))
	for seatNo := 0; seatNo < s.config.MaxSeats; seatNo++ {
		p := s.seats[seatNo]
		if p == nil {
			continue
		}
		summaries = append(summaries, SeatSummary{
			Position: seatNo,
			Username: p.Name(),
			Avatar:   p.Avatar(),
			Chips:    p.Chips(),
		})
	}
	return summaries
}

func (s *Session) broadcastLocked() {
	snapshot := s.buildSnapshotLocked()
	for _, observer := range s.observers {
		observer.OnStateChanged(snapshot)
	}
	if s.persist != nil {
		if err := s.persist.Save(s.id, snapshot); err != nil {
			sessionLogger.Error().Int("session", s.id).Err(err).
				Msg("Unable to save table state")
		}
	}
}

func (s *Session) resetTimerLocked() {
	if s.actionTimer != nil && s.actingSeat >= 0 {
		s.actionTimer.Reset(s.actingSeat)
	}
}

// onActionTimeout folds for a seat that stalled past the action
// timeout.
func (s *Session) onActionTimeout(msg timer.Msg) {
	s.lock.Lock()
	p := s.seats[msg.SeatNo]
	stalled := s.state == Betting && s.actingSeat == msg.SeatNo
	s.lock.Unlock()
	if p == nil || !stalled {
		return
	}
	sessionLogger.Info().Int("session", s.id).Int("seat", msg.SeatNo).
		Msg("Action timed out, folding")
	s.ApplyAction(p, &ActionMessage{Kind: ActionFold, Fold: &FoldAction{}})
}

// Close stops the session's background timer. The registry calls this
// when discarding a session.
func (s *Session) Close() {
	if s.actionTimer != nil {
		s.actionTimer.Destroy()
	}
}
