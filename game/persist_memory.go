package game

import (
	"fmt"
	"sync"
)

// MemoryStateTracker keeps table snapshots in process memory. Used in
// tests and single-node setups.
type MemoryStateTracker struct {
	lock         sync.Mutex
	activeTables map[int][]byte
}

func NewMemoryStateTracker() *MemoryStateTracker {
	return &MemoryStateTracker{
		activeTables: make(map[int][]byte),
	}
}

func (m *MemoryStateTracker) Load(sessionID int) (*TableSnapshot, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	stateBytes, ok := m.activeTables[sessionID]
	if !ok {
		return nil, fmt.Errorf("table state for session %d is not found", sessionID)
	}
	var snapshot TableSnapshot
	if err := json.Unmarshal(stateBytes, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (m *MemoryStateTracker) Save(sessionID int, snapshot *TableSnapshot) error {
	stateBytes, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.activeTables[sessionID] = stateBytes
	return nil
}

func (m *MemoryStateTracker) Remove(sessionID int) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.activeTables, sessionID)
	return nil
}
