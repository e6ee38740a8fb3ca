package nats

import (
	"fmt"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"pokerserver/game"
)

var natsLogger = log.With().Str("logger_name", "nats::player").Logger()

// PlayerBridge connects one player to the NATS server: inbound bytes
// on the act subject become validated action messages, and adapted
// state messages go out on the state subject. It is the game.Client
// capability for the player it wraps.
type PlayerBridge struct {
	natsConn     *natsgo.Conn
	player       *game.Player
	stateSubject string

	actSubscription *natsgo.Subscription
}

func NewPlayerBridge(nc *natsgo.Conn, username string, avatar string, chips int, registry *game.Registry) (*PlayerBridge, error) {
	b := &PlayerBridge{
		natsConn:     nc,
		stateSubject: GetPlayerStateSubject(username),
	}
	b.player = game.NewPlayer(username, avatar, chips, b, registry)

	actSubject := GetPlayerActSubject(username)
	var err error
	b.actSubscription, err = nc.Subscribe(actSubject, b.onAction)
	if err != nil {
		natsLogger.Error().Msg(fmt.Sprintf("Failed to subscribe to %s", actSubject))
		return nil, err
	}

	// park the player in a lobby until it joins a game
	if lobby := registry.FirstAvailableLobby(); lobby != nil {
		b.player.JoinLobby(lobby)
	}
	return b, nil
}

func (b *PlayerBridge) Player() *game.Player {
	return b.player
}

func (b *PlayerBridge) onAction(msg *natsgo.Msg) {
	action, err := game.ParseActionMessage(msg.Data)
	if err != nil {
		// schema rejections go back to the sender, processing continues
		natsLogger.Info().Str("player", b.player.Name()).Err(err).
			Msg("Rejected invalid action message")
		if sendErr := b.Send(game.NewErrorMessage("INVALID_MESSAGE", err.Error())); sendErr != nil {
			natsLogger.Error().Str("player", b.player.Name()).Err(sendErr).
				Msg("Unable to deliver error message")
		}
		return
	}
	b.player.HandleAction(action)
}

// Send implements game.Client.
func (b *PlayerBridge) Send(message *game.StateMessage) error {
	data, err := game.EncodeStateMessage(message)
	if err != nil {
		return err
	}
	return b.natsConn.Publish(b.stateSubject, data)
}

func (b *PlayerBridge) Close() {
	if b.actSubscription != nil {
		_ = b.actSubscription.Unsubscribe()
	}
}
