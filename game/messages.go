package game

import (
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"pokerserver/poker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ActionKind string

const (
	ActionJoin ActionKind = "JOIN"
	ActionBet  ActionKind = "BET"
	ActionFold ActionKind = "FOLD"
	ActionQuit ActionKind = "QUIT"
)

type StateKind string

const (
	StateGame  StateKind = "GAME_STATE"
	StateLobby StateKind = "LOBBY_STATE"
	StateError StateKind = "ERROR"
)

// ActionMessage is one validated player request. Exactly the variant
// matching Kind is set.
type ActionMessage struct {
	Kind ActionKind
	Join *JoinAction
	Bet  *BetAction
	Fold *FoldAction
}

type JoinAction struct {
	GameID int `json:"GameID"`
}

type BetAction struct {
	Amount int  `json:"Amount"`
	AllIn  bool `json:"All-in"`
}

type FoldAction struct {
	Quit bool `json:"Quit"`
}

// StateMessage is one outbound message ready for delivery. Exactly the
// variant matching Kind is set.
type StateMessage struct {
	MessageID string
	Kind      StateKind
	Game      *GameState
	Lobby     *LobbyState
	Error     *ErrorState
}

// GameState is the per-recipient adapted view of a table.
type GameState struct {
	Pot          int          `json:"Pot"`
	Dealer       int          `json:"Dealer"`
	Actor        string       `json:"Actor"`
	TableCards   []poker.Card `json:"TableCards"`
	You          YouState     `json:"You"`
	OtherPlayers []SeatState  `json:"OtherPlayers"`
	LastAction   string       `json:"LastAction"`
}

type YouState struct {
	Position int          `json:"Position"`
	Hand     []poker.Card `json:"Hand"`
	Chips    int          `json:"Chips"`
}

type SeatState struct {
	Position int    `json:"Position"`
	Username string `json:"Username"`
	Avatar   string `json:"Avatar"`
	Chips    int    `json:"Chips"`
}

type LobbyState struct {
	Games          []LobbyGameEntry `json:"Games"`
	LobbyOccupants []LobbyOccupant  `json:"LobbyOccupants"`
}

type LobbyGameEntry struct {
	ID       int             `json:"ID"`
	Open     bool            `json:"Open"`
	Players  []LobbyOccupant `json:"Players"`
	Watchers []LobbyWatcher  `json:"Watchers,omitempty"`
}

type LobbyOccupant struct {
	Username string `json:"Username"`
	Avatar   string `json:"Avatar"`
	Chips    int    `json:"Chips"`
}

type LobbyWatcher struct {
	Username string `json:"Username"`
	Avatar   string `json:"Avatar"`
}

type ErrorState struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// wireMessage is the on-the-wire envelope. Params stays raw so that the
// per-kind validators can reject unknown or missing keys before any
// typed decoding happens.
type wireMessage struct {
	MessageID string                         `json:"message-id,omitempty"`
	Kind      string                         `json:"kind"`
	Params    map[string]jsoniter.RawMessage `json:"params"`
}

// ParseActionMessage validates inbound bytes against the closed action
// schema and returns the typed message. Validation is structural only:
// exact key set per kind and per-field types.
func ParseActionMessage(data []byte) (*ActionMessage, error) {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, InvalidMessageError{Msg: fmt.Sprintf("malformed message: %v", err)}
	}

	switch ActionKind(wire.Kind) {
	case ActionJoin:
		if err := checkParams(wire.Kind, wire.Params, "GameID"); err != nil {
			return nil, err
		}
		gameID, err := intParam(wire.Kind, "GameID", wire.Params["GameID"])
		if err != nil {
			return nil, err
		}
		return &ActionMessage{Kind: ActionJoin, Join: &JoinAction{GameID: gameID}}, nil

	case ActionBet:
		if err := checkParams(wire.Kind, wire.Params, "Amount", "All-in"); err != nil {
			return nil, err
		}
		amount, err := intParam(wire.Kind, "Amount", wire.Params["Amount"])
		if err != nil {
			return nil, err
		}
		allIn, err := boolParam(wire.Kind, "All-in", wire.Params["All-in"])
		if err != nil {
			return nil, err
		}
		return &ActionMessage{Kind: ActionBet, Bet: &BetAction{Amount: amount, AllIn: allIn}}, nil

	case ActionFold:
		if err := checkParams(wire.Kind, wire.Params, "Quit"); err != nil {
			return nil, err
		}
		quit, err := boolParam(wire.Kind, "Quit", wire.Params["Quit"])
		if err != nil {
			return nil, err
		}
		return &ActionMessage{Kind: ActionFold, Fold: &FoldAction{Quit: quit}}, nil

	case ActionQuit:
		if err := checkParams(wire.Kind, wire.Params); err != nil {
			return nil, err
		}
		return &ActionMessage{Kind: ActionQuit}, nil
	}

	return nil, InvalidMessageError{Msg: fmt.Sprintf("unknown action kind %q", wire.Kind)}
}

// ParseStateMessage validates inbound state bytes against the closed
// state schema. Used by client-side consumers and tests; the server
// validates outbound messages with StateMessage.Validate.
func ParseStateMessage(data []byte) (*StateMessage, error) {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, InvalidMessageError{Msg: fmt.Sprintf("malformed message: %v", err)}
	}

	msg := &StateMessage{MessageID: wire.MessageID, Kind: StateKind(wire.Kind)}
	switch msg.Kind {
	case StateGame:
		required := []string{"Pot", "Dealer", "Actor", "TableCards", "You", "OtherPlayers", "LastAction"}
		if err := checkParams(wire.Kind, wire.Params, required...); err != nil {
			return nil, err
		}
		if err := checkObjectKeys(wire.Kind, "You", wire.Params["You"], []string{"Position", "Hand", "Chips"}, nil); err != nil {
			return nil, err
		}
		if err := checkListEntries(wire.Kind, "OtherPlayers", wire.Params["OtherPlayers"], []string{"Position", "Username", "Avatar", "Chips"}, nil); err != nil {
			return nil, err
		}
		var state GameState
		if err := decodeParams(wire.Kind, wire.Params, &state); err != nil {
			return nil, err
		}
		msg.Game = &state

	case StateLobby:
		if err := checkParams(wire.Kind, wire.Params, "Games", "LobbyOccupants"); err != nil {
			return nil, err
		}
		if err := checkListEntries(wire.Kind, "Games", wire.Params["Games"], []string{"ID", "Open", "Players"}, []string{"Watchers"}); err != nil {
			return nil, err
		}
		if err := checkLobbyGames(wire.Params["Games"]); err != nil {
			return nil, err
		}
		if err := checkListEntries(wire.Kind, "LobbyOccupants", wire.Params["LobbyOccupants"], []string{"Username", "Avatar", "Chips"}, nil); err != nil {
			return nil, err
		}
		var state LobbyState
		if err := decodeParams(wire.Kind, wire.Params, &state); err != nil {
			return nil, err
		}
		msg.Lobby = &state

	case StateError:
		if err := checkParams(wire.Kind, wire.Params, "Code", "Message"); err != nil {
			return nil, err
		}
		var state ErrorState
		if err := decodeParams(wire.Kind, wire.Params, &state); err != nil {
			return nil, err
		}
		msg.Error = &state

	default:
		return nil, InvalidMessageError{Msg: fmt.Sprintf("unknown state kind %q", wire.Kind)}
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// Validate checks the cardinality rules that typed decoding cannot
// express. It never checks cross-field semantic consistency.
func (m *StateMessage) Validate() error {
	switch m.Kind {
	case StateGame:
		if m.Game == nil {
			return InvalidMessageError{Msg: "GAME_STATE message carries no game state"}
		}
		n := len(m.Game.TableCards)
		if n != 0 && n != 3 && n != 5 {
			return InvalidMessageError{Msg: fmt.Sprintf("GAME_STATE has %d table cards, want 0, 3 or 5", n)}
		}
		h := len(m.Game.You.Hand)
		if h != 0 && h != 2 {
			return InvalidMessageError{Msg: fmt.Sprintf("GAME_STATE hand has %d cards, want 0 or 2", h)}
		}
	case StateLobby:
		if m.Lobby == nil {
			return InvalidMessageError{Msg: "LOBBY_STATE message carries no lobby state"}
		}
	case StateError:
		if m.Error == nil {
			return InvalidMessageError{Msg: "ERROR message carries no error state"}
		}
	default:
		return InvalidMessageError{Msg: fmt.Sprintf("unknown state kind %q", m.Kind)}
	}
	return nil
}

// EncodeStateMessage validates and serializes a state message for the
// transport boundary.
func EncodeStateMessage(m *StateMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	var params interface{}
	switch m.Kind {
	case StateGame:
		params = m.Game
	case StateLobby:
		params = m.Lobby
	case StateError:
		params = m.Error
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	paramMap := map[string]jsoniter.RawMessage{}
	if err := json.Unmarshal(rawParams, &paramMap); err != nil {
		return nil, err
	}
	return json.Marshal(&wireMessage{
		MessageID: m.MessageID,
		Kind:      string(m.Kind),
		Params:    paramMap,
	})
}

func NewErrorMessage(code string, message string) *StateMessage {
	return &StateMessage{
		MessageID: uuid.NewString(),
		Kind:      StateError,
		Error:     &ErrorState{Code: code, Message: message},
	}
}

func checkParams(kind string, params map[string]jsoniter.RawMessage, required ...string) error {
	if len(params) != len(required) {
		return InvalidMessageError{Msg: fmt.Sprintf("%s message has %d params, want %d", kind, len(params), len(required))}
	}
	for _, name := range required {
		if _, ok := params[name]; !ok {
			return InvalidMessageError{Msg: fmt.Sprintf("%s message is missing param %s", kind, name)}
		}
	}
	return nil
}

// checkObjectKeys verifies one nested object carries exactly the
// required keys plus any subset of the optional ones.
func checkObjectKeys(kind string, field string, raw jsoniter.RawMessage, required []string, optional []string) error {
	var keys map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return InvalidMessageError{Msg: fmt.Sprintf("%s param %s is not an object", kind, field)}
	}
	for _, name := range required {
		if _, ok := keys[name]; !ok {
			return InvalidMessageError{Msg: fmt.Sprintf("%s param %s is missing key %s", kind, field, name)}
		}
		delete(keys, name)
	}
	for _, name := range optional {
		delete(keys, name)
	}
	for name := range keys {
		return InvalidMessageError{Msg: fmt.Sprintf("%s param %s has unknown key %s", kind, field, name)}
	}
	return nil
}

func checkListEntries(kind string, field string, raw jsoniter.RawMessage, required []string, optional []string) error {
	var entries []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return InvalidMessageError{Msg: fmt.Sprintf("%s param %s is not a list", kind, field)}
	}
	for i, entry := range entries {
		if err := checkObjectKeys(kind, fmt.Sprintf("%s[%d]", field, i), entry, required, optional); err != nil {
			return err
		}
	}
	return nil
}

// checkLobbyGames validates the nested player and watcher lists of
// each lobby game entry.
func checkLobbyGames(raw jsoniter.RawMessage) error {
	var entries []map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return InvalidMessageError{Msg: "LOBBY_STATE param Games is not a list of objects"}
	}
	for i, entry := range entries {
		field := fmt.Sprintf("Games[%d].Players", i)
		if err := checkListEntries(string(StateLobby), field, entry["Players"], []string{"Username", "Avatar", "Chips"}, nil); err != nil {
			return err
		}
		if watchers, ok := entry["Watchers"]; ok {
			field = fmt.Sprintf("Games[%d].Watchers", i)
			if err := checkListEntries(string(StateLobby), field, watchers, []string{"Username", "Avatar"}, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeParams(kind string, params map[string]jsoniter.RawMessage, target interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return InvalidMessageError{Msg: fmt.Sprintf("%s message has mistyped params: %v", kind, err)}
	}
	return nil
}

func intParam(kind string, name string, raw jsoniter.RawMessage) (int, error) {
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, InvalidMessageError{Msg: fmt.Sprintf("%s param %s must be an integer", kind, name)}
	}
	return value, nil
}

func boolParam(kind string, name string, raw jsoniter.RawMessage) (bool, error) {
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, InvalidMessageError{Msg: fmt.Sprintf("%s param %s must be a boolean", kind, name)}
	}
	return value, nil
}
