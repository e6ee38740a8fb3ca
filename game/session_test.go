package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testClient records everything the transport would deliver.
type testClient struct {
	lock     sync.Mutex
	messages []*StateMessage
}

func (c *testClient) Send(message *StateMessage) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.messages = append(c.messages, message)
	return nil
}

func (c *testClient) lastGameState() *GameState {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Kind == StateGame {
			return c.messages[i].Game
		}
	}
	return nil
}

func newTestTable(t *testing.T, maxSeats, minPlayers int) (*Registry, *Session) {
	t.Helper()
	registry := NewRegistry(SessionConfig{MaxSeats: maxSeats, MinPlayers: minPlayers}, nil, nil)
	session, _ := registry.CreateSession()
	return registry, session
}

func newTestPlayer(registry *Registry, name string, chips int) (*Player, *testClient) {
	client := &testClient{}
	return NewPlayer(name, "http://avatar/"+name, chips, client, registry), client
}

func TestSeatAssignmentLowestFree(t *testing.T) {
	// min high enough that no hand starts
	registry, session := newTestTable(t, 6, 10)

	names := []string{"alice", "bob", "carol"}
	players := make([]*Player, len(names))
	for i, name := range names {
		players[i], _ = newTestPlayer(registry, name, 1000)
		if !session.AddPlayer(players[i]) {
			t.Fatalf("AddPlayer(%s) failed", name)
		}
	}
	for i, p := range players {
		seatNo, ok := session.SeatOf(p)
		if !ok || seatNo != i {
			t.Errorf("%s got seat %d/%v, want %d", p.Name(), seatNo, ok, i)
		}
	}

	if !session.RemovePlayer(players[1]) {
		t.Fatal("RemovePlayer failed")
	}
	if _, ok := session.SeatOf(players[1]); ok {
		t.Error("removed player still holds a seat")
	}
	// seats are not renumbered, the hole gets refilled
	if seatNo, _ := session.SeatOf(players[2]); seatNo != 2 {
		t.Errorf("carol moved to seat %d after a removal", seatNo)
	}
	dave, _ := newTestPlayer(registry, "dave", 1000)
	session.AddPlayer(dave)
	if seatNo, _ := session.SeatOf(dave); seatNo != 1 {
		t.Errorf("dave got seat %d, want the freed seat 1", seatNo)
	}
}

func TestSeatUnavailable(t *testing.T) {
	registry, session := newTestTable(t, 2, 10)
	for _, name := range []string{"alice", "bob"} {
		p, _ := newTestPlayer(registry, name, 1000)
		session.AddPlayer(p)
	}
	late, _ := newTestPlayer(registry, "late", 1000)
	if session.AddPlayer(late) {
		t.Fatal("AddPlayer succeeded on a full table")
	}
	if _, ok := session.SeatOf(late); ok {
		t.Error("rejected player holds a seat")
	}
}

func TestTurnRotationWraparound(t *testing.T) {
	registry, session := newTestTable(t, 6, 99)
	for i := 0; i < 5; i++ {
		p, _ := newTestPlayer(registry, string(rune('a'+i)), 1000)
		session.AddPlayer(p)
	}
	session.lock.Lock()
	session.active = map[int]bool{0: true, 2: true, 4: true}
	next := session.nextActiveSeat(4)
	session.lock.Unlock()
	if next != 0 {
		t.Errorf("nextActiveSeat(4) = %d, want wraparound to 0", next)
	}

	session.lock.Lock()
	next = session.nextActiveSeat(0)
	session.lock.Unlock()
	if next != 2 {
		t.Errorf("nextActiveSeat(0) = %d, want 2", next)
	}
}

func TestRotationPanicsWithoutActiveSeat(t *testing.T) {
	registry, session := newTestTable(t, 6, 99)
	p, _ := newTestPlayer(registry, "alone", 1000)
	session.AddPlayer(p)

	defer func() {
		err := recover()
		if err == nil {
			t.Fatal("expected panic when no active seat exists")
		}
		if _, ok := err.(InvariantViolationError); !ok {
			t.Fatalf("panic value %v is not an InvariantViolationError", err)
		}
	}()
	session.lock.Lock()
	defer session.lock.Unlock()
	session.nextActiveSeat(0)
}

func TestTwoPlayerHand(t *testing.T) {
	registry, session := newTestTable(t, 6, 2)
	p1, c1 := newTestPlayer(registry, "alice", 1000)
	p2, c2 := newTestPlayer(registry, "bob", 1000)

	assert.True(t, p1.JoinSession(session))
	assert.Equal(t, WaitingForPlayers, session.State())
	assert.True(t, p2.JoinSession(session))

	// crossing the minimum starts the hand
	assert.Equal(t, Betting, session.State())

	state1 := c1.lastGameState()
	state2 := c2.lastGameState()
	if state1 == nil || state2 == nil {
		t.Fatal("players did not receive a game snapshot")
	}
	assert.NotEmpty(t, state1.Actor)
	assert.Equal(t, state1.Actor, state2.Actor)
	assert.Len(t, state1.You.Hand, 2)
	assert.Len(t, state2.You.Hand, 2)
	assert.Empty(t, state1.TableCards)

	// each player sees only the other in the public summaries
	assert.Len(t, state1.OtherPlayers, 1)
	assert.Equal(t, "bob", state1.OtherPlayers[0].Username)
	assert.Len(t, state2.OtherPlayers, 1)
	assert.Equal(t, "alice", state2.OtherPlayers[0].Username)

	// heads-up first hand: dealer seat 0 acts first
	assert.Equal(t, "alice", state1.Actor)

	// out of turn: rejected with no mutation
	bet := &ActionMessage{Kind: ActionBet, Bet: &BetAction{Amount: 100}}
	assert.False(t, session.ApplyAction(p2, bet))
	assert.Equal(t, 0, session.Pot())

	// in turn: accepted, pot grows, cursor advances
	assert.True(t, session.ApplyAction(p1, bet))
	assert.Equal(t, 100, session.Pot())
	assert.Equal(t, "bob", c1.lastGameState().Actor)
	assert.Equal(t, "bob", c2.lastGameState().Actor)
}

func TestFoldEndsHandAndAwardsPot(t *testing.T) {
	registry, session := newTestTable(t, 6, 2)
	p1, _ := newTestPlayer(registry, "alice", 1000)
	p2, c2 := newTestPlayer(registry, "bob", 1000)
	p1.JoinSession(session)
	p2.JoinSession(session)

	p1.HandleAction(&ActionMessage{Kind: ActionBet, Bet: &BetAction{Amount: 100}})
	assert.Equal(t, 900, p1.Chips())
	p2.HandleAction(&ActionMessage{Kind: ActionBet, Bet: &BetAction{Amount: 100}})
	assert.Equal(t, 200, session.Pot())

	// betting round complete, the flop is out, bob acts first
	state := c2.lastGameState()
	assert.Len(t, state.TableCards, 3)
	assert.Equal(t, "bob", state.Actor)

	p2.HandleAction(&ActionMessage{Kind: ActionFold, Fold: &FoldAction{}})
	assert.Equal(t, EndGame, session.State())
	// alice wins the pot uncontested
	assert.Equal(t, 1100, p1.Chips())
	assert.Equal(t, 900, p2.Chips())
	assert.Empty(t, c2.lastGameState().Actor)
}

func TestFullBoardSplitsPot(t *testing.T) {
	registry, session := newTestTable(t, 6, 2)
	p1, c1 := newTestPlayer(registry, "alice", 1000)
	p2, _ := newTestPlayer(registry, "bob", 1000)
	p1.JoinSession(session)
	p2.JoinSession(session)

	bet := func(p *Player) {
		p.HandleAction(&ActionMessage{Kind: ActionBet, Bet: &BetAction{Amount: 50}})
	}
	// preflop, flop and five-card rounds
	bet(p1)
	bet(p2)
	assert.Len(t, c1.lastGameState().TableCards, 3)
	bet(p2)
	bet(p1)
	assert.Len(t, c1.lastGameState().TableCards, 5)
	bet(p2)
	bet(p1)

	assert.Equal(t, EndGame, session.State())
	// without hand ranking the default settler splits the pot evenly
	assert.Equal(t, 1000, p1.Chips())
	assert.Equal(t, 1000, p2.Chips())
}

func TestRemoveActingPlayerAdvancesCursor(t *testing.T) {
	registry, session := newTestTable(t, 6, 3)
	p1, _ := newTestPlayer(registry, "alice", 1000)
	p2, c2 := newTestPlayer(registry, "bob", 1000)
	p3, _ := newTestPlayer(registry, "carol", 1000)
	p1.JoinSession(session)
	p2.JoinSession(session)
	p3.JoinSession(session)
	assert.Equal(t, Betting, session.State())

	// dealer 0, first actor is the next occupied seat after dealer+1
	assert.Equal(t, "carol", c2.lastGameState().Actor)

	assert.True(t, session.RemovePlayer(p3))
	assert.Equal(t, Betting, session.State())
	state := c2.lastGameState()
	assert.Equal(t, "alice", state.Actor)
	assert.Len(t, state.OtherPlayers, 1)
}

func TestApplyActionRejectsNonPositiveBet(t *testing.T) {
	registry, session := newTestTable(t, 6, 2)
	p1, _ := newTestPlayer(registry, "alice", 1000)
	p2, _ := newTestPlayer(registry, "bob", 1000)
	p1.JoinSession(session)
	p2.JoinSession(session)

	bet := &ActionMessage{Kind: ActionBet, Bet: &BetAction{Amount: -500}}
	assert.False(t, session.ApplyAction(p1, bet))
	bet.Bet.Amount = 0
	assert.False(t, session.ApplyAction(p1, bet))
	assert.Equal(t, 0, session.Pot())
}

func TestAddPlayerRejectsSeatedPlayer(t *testing.T) {
	registry, session := newTestTable(t, 6, 10)
	p, _ := newTestPlayer(registry, "alice", 1000)
	if !session.AddPlayer(p) {
		t.Fatal("AddPlayer failed")
	}
	if session.AddPlayer(p) {
		t.Fatal("AddPlayer seated the same player twice")
	}
	if got := len(session.Seats()); got != 1 {
		t.Errorf("session holds %d seats, want 1", got)
	}
}

func TestApplyActionRejectsOtherKinds(t *testing.T) {
	registry, session := newTestTable(t, 6, 2)
	p1, _ := newTestPlayer(registry, "alice", 1000)
	p2, _ := newTestPlayer(registry, "bob", 1000)
	p1.JoinSession(session)
	p2.JoinSession(session)

	join := &ActionMessage{Kind: ActionJoin, Join: &JoinAction{GameID: 1}}
	assert.False(t, session.ApplyAction(p1, join))
	quit := &ActionMessage{Kind: ActionQuit}
	assert.False(t, session.ApplyAction(p1, quit))
	assert.Equal(t, 0, session.Pot())
}

func TestStartHandRequiresPlayers(t *testing.T) {
	registry, session := newTestTable(t, 6, 3)
	p1, _ := newTestPlayer(registry, "alice", 1000)
	session.AddPlayer(p1)

	err := session.StartHand()
	if _, ok := err.(NotEnoughPlayersError); !ok {
		t.Fatalf("StartHand error = %v, want NotEnoughPlayersError", err)
	}
}
