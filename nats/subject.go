package nats

import "fmt"

// Subjects used to exchange messages with one connected player.
// player.<username>.act   : inbound action messages
// player.<username>.state : outbound state messages

func GetPlayerActSubject(username string) string {
	return fmt.Sprintf("player.%s.act", username)
}

func GetPlayerStateSubject(username string) string {
	return fmt.Sprintf("player.%s.state", username)
}

// GetConnectSubject carries the identity handoff: the identity service
// announces a connected player here.
func GetConnectSubject() string {
	return "player.connect"
}
