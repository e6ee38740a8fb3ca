package nats

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"

	"pokerserver/game"
	"pokerserver/util"
)

// connectRequest is the identity handoff payload. The identity service
// validates these fields before announcing the player.
type connectRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Chips    int    `json:"chips"`
}

// Listener creates one PlayerBridge per announced player.
type Listener struct {
	natsConn     *natsgo.Conn
	registry     *game.Registry
	defaultChips int
	subscription *natsgo.Subscription

	lock    sync.Mutex
	bridges map[string]*PlayerBridge
}

func NewListener(nc *natsgo.Conn, registry *game.Registry, defaultChips int) (*Listener, error) {
	l := &Listener{
		natsConn:     nc,
		registry:     registry,
		defaultChips: defaultChips,
		bridges:      make(map[string]*PlayerBridge),
	}
	var err error
	l.subscription, err = nc.Subscribe(GetConnectSubject(), l.onConnect)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Listener) onConnect(msg *natsgo.Msg) {
	var req connectRequest
	if err := jsoniter.Unmarshal(msg.Data, &req); err != nil || req.Username == "" {
		natsLogger.Error().Err(err).Msg("Ignoring malformed connect request")
		return
	}
	if req.Avatar == "" {
		req.Avatar = util.GravatarURL(req.Email)
	}
	if req.Chips == 0 {
		req.Chips = l.defaultChips
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	if _, ok := l.bridges[req.Username]; ok {
		natsLogger.Info().Str("player", req.Username).Msg("Player is already connected")
		return
	}
	bridge, err := NewPlayerBridge(l.natsConn, req.Username, req.Avatar, req.Chips, l.registry)
	if err != nil {
		natsLogger.Error().Str("player", req.Username).Err(err).
			Msg("Unable to set up player bridge")
		return
	}
	l.bridges[req.Username] = bridge
	natsLogger.Info().Str("player", req.Username).Msg("Player connected")
}

func (l *Listener) Close() {
	if l.subscription != nil {
		_ = l.subscription.Unsubscribe()
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, bridge := range l.bridges {
		bridge.Close()
	}
}
