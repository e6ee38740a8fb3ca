package game

// PersistTableState stores the latest canonical snapshot per session
// so that an operator can inspect or recover a table after a crash.
type PersistTableState interface {
	Load(sessionID int) (*TableSnapshot, error)
	Save(sessionID int, snapshot *TableSnapshot) error
	Remove(sessionID int) error
}
