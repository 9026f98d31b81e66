package proto

import "encoding/json"

// Inbound frames carry an "action" discriminator. Room-level and lobby-level
// actions are closed sets; anything else on a room socket is handed to the
// active game, which validates its own payload schema.
const (
	ActionCreateRoom  = "create_room"
	ActionDestroyRoom = "destroy_room"
	ActionJoinGame    = "join_game"
	ActionStartGame   = "start_game"
)

// Envelope peeks at the action discriminator of an inbound frame.
type Envelope struct {
	Action string `json:"action"`
}

// LobbyAction is an inbound frame on the lobby socket.
type LobbyAction struct {
	Action   string `json:"action"`
	RoomName string `json:"room_name"`
	RoomType string `json:"room_type,omitempty"`
}

// RoomAction is a room-level inbound frame on a room socket.
type RoomAction struct {
	Action string `json:"action"`
	Name   string `json:"name,omitempty"`
}

// RoomSummary is the lobby's public view of one room.
type RoomSummary struct {
	Type    string   `json:"type"`
	Players []string `json:"players"`
	Status  string   `json:"status"`
}

// LobbySnapshot is pushed to every lobby subscriber.
type LobbySnapshot struct {
	Rooms map[string]RoomSummary `json:"rooms"`
}

// RoomSnapshot is pushed to every room subscriber. Game is null until a game
// has been started.
type RoomSnapshot struct {
	Game         json.RawMessage   `json:"game"`
	Players      []string          `json:"players"`
	PlayerColors map[string]string `json:"player_colors"`
}
