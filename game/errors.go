package game

import "fmt"

type InvalidMessageError struct {
	Msg string
}

func (e InvalidMessageError) Error() string {
	return e.Msg
}

type SeatUnavailableError struct {
	SessionID int
}

func (e SeatUnavailableError) Error() string {
	return fmt.Sprintf("No free seat in session %d", e.SessionID)
}

type UnexpectedSessionStateError struct {
	State SessionState
}

func (e UnexpectedSessionStateError) Error() string {
	return fmt.Sprintf("Unexpected session state: %s", e.State)
}

type NotEnoughPlayersError struct {
	Seated int
	Min    int
}

func (e NotEnoughPlayersError) Error() string {
	return fmt.Sprintf("Cannot start a hand with %d players, need %d", e.Seated, e.Min)
}

// InvariantViolationError indicates corrupted session state. It is
// surfaced via panic and must never be swallowed.
type InvariantViolationError struct {
	Msg string
}

func (e InvariantViolationError) Error() string {
	return e.Msg
}
