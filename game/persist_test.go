package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pokerserver/poker"
)

func TestMemoryStateTracker(t *testing.T) {
	tracker := NewMemoryStateTracker()

	snapshot := &TableSnapshot{
		SessionID:  3,
		Pot:        250,
		DealerSeat: 1,
		ActingSeat: 4,
		ActorName:  "carol",
		TableCards: []poker.Card{poker.NewCard("Ah"), poker.NewCard("Kd"), poker.NewCard("2c")},
		LastAction: "bob bets 50",
		Seats: []SeatSummary{
			{Position: 1, Username: "bob", Avatar: "b", Chips: 950},
			{Position: 4, Username: "carol", Avatar: "c", Chips: 700},
		},
	}
	if err := tracker.Save(3, snapshot); err != nil {
		t.Fatalf("Save returned error [%s]", err)
	}

	loaded, err := tracker.Load(3)
	if err != nil {
		t.Fatalf("Load returned error [%s]", err)
	}
	if !cmp.Equal(snapshot, loaded) {
		t.Errorf("snapshot mismatch: %s", cmp.Diff(snapshot, loaded))
	}

	if _, err := tracker.Load(99); err == nil {
		t.Error("Load of an unknown session succeeded")
	}

	if err := tracker.Remove(3); err != nil {
		t.Fatalf("Remove returned error [%s]", err)
	}
	if _, err := tracker.Load(3); err == nil {
		t.Error("Load succeeded after Remove")
	}
}

func TestSessionSavesSnapshotOnBroadcast(t *testing.T) {
	tracker := NewMemoryStateTracker()
	registry := NewRegistry(SessionConfig{MaxSeats: 6, MinPlayers: 2}, nil, tracker)
	session, id := registry.CreateSession()

	p1, _ := newTestPlayer(registry, "alice", 1000)
	p2, _ := newTestPlayer(registry, "bob", 1000)
	p1.JoinSession(session)
	p2.JoinSession(session)
	p1.HandleAction(&ActionMessage{Kind: ActionBet, Bet: &BetAction{Amount: 100}})

	loaded, err := tracker.Load(id)
	if err != nil {
		t.Fatalf("Load returned error [%s]", err)
	}
	if loaded.Pot != 100 {
		t.Errorf("persisted pot = %d, want 100", loaded.Pot)
	}
	if loaded.ActorName != "bob" {
		t.Errorf("persisted actor = %s, want bob", loaded.ActorName)
	}
}
