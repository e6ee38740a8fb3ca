package timer

import (
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

var actionTimerLogger = log.With().Str("logger_name", "timer::action_timer").Logger()

// Msg identifies the seat being timed.
type Msg struct {
	SeatNo   int
	ExpireAt time.Time
}

type commandKind int

const (
	cmdReset commandKind = iota
	cmdPause
	cmdDestroy
)

type command struct {
	kind commandKind
	msg  Msg
}

// ActionTimer watches the acting seat of one session and invokes the
// callback when that seat stalls past the timeout. Commands go through
// one buffered channel so that a caller holding the session lock never
// blocks against the callback, which runs on its own goroutine.
type ActionTimer struct {
	name string

	chCommand chan command

	callback           func(Msg)
	secondsTillTimeout uint32
}

func NewActionTimer(name string, secondsTillTimeout uint32, callback func(Msg)) *ActionTimer {
	return &ActionTimer{
		name:               name,
		chCommand:          make(chan command, 16),
		callback:           callback,
		secondsTillTimeout: secondsTillTimeout,
	}
}

func (a *ActionTimer) Run() {
	go a.loop()
}

func (a *ActionTimer) Destroy() {
	a.chCommand <- command{kind: cmdDestroy}
}

// Reset starts timing the given seat, replacing whatever seat was
// being timed before.
func (a *ActionTimer) Reset(seatNo int) {
	a.chCommand <- command{kind: cmdReset, msg: Msg{
		SeatNo:   seatNo,
		ExpireAt: time.Now().Add(time.Duration(a.secondsTillTimeout) * time.Second),
	}}
}

// Pause stops timing until the next Reset.
func (a *ActionTimer) Pause() {
	a.chCommand <- command{kind: cmdPause}
}

func (a *ActionTimer) loop() {
	defer func() {
		if err := recover(); err != nil {
			actionTimerLogger.Error().Str("timer", a.name).
				Msgf("Action timer loop returning due to panic: %s\nStack Trace:\n%s", err, string(debug.Stack()))
		}
	}()

	var current Msg
	paused := true
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case cmd := <-a.chCommand:
			switch cmd.kind {
			case cmdDestroy:
				return
			case cmdPause:
				paused = true
			case cmdReset:
				current = cmd.msg
				paused = false
			}
		case <-ticker.C:
			if paused {
				continue
			}
			if time.Now().After(current.ExpireAt) {
				paused = true
				go a.callback(current)
			}
		}
	}
}
