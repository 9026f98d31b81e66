package http

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/antonvlasov/gameroom-server/internal/core"
	"github.com/antonvlasov/gameroom-server/internal/proto"
)

// WSHandlers bridges lobby and room sockets to the core.
type WSHandlers struct {
	lobby     *core.Lobby
	heartbeat time.Duration
	log       *zerolog.Logger
}

// NewWSHandlers builds the websocket handlers.
func NewWSHandlers(lobby *core.Lobby, heartbeat time.Duration, logger *zerolog.Logger) *WSHandlers {
	return &WSHandlers{lobby: lobby, heartbeat: heartbeat, log: logger}
}

// Lobby serves the lobby socket: subscribe, push the current room list, then
// route create/destroy frames until the client goes away.
// GET /ws
func (h *WSHandlers) Lobby(c *gin.Context) {
	conn, err := acceptConn(c.Writer, c.Request, h.heartbeat, h.log)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	h.lobby.Subscribe(conn.id, conn.events)
	defer h.lobby.Unsubscribe(conn.id)

	if data, err := json.Marshal(h.lobby.Snapshot()); err == nil {
		conn.push(data)
	}

	conn.run(c.Request.Context(), func(frame json.RawMessage) {
		if err := h.lobby.Dispatch(frame); err != nil {
			// Frame is dropped, the connection stays open.
			conn.log.Warn().Err(err).RawJSON("frame", frame).Msg("rejected lobby action")
		}
	})
}

// Room serves a room socket: subscribe, push the current state, issue the
// implicit join for the display name in the path, then route frames to the
// room. Successful room actions also refresh every lobby subscriber.
// GET /room/:room/:user/ws
func (h *WSHandlers) Room(c *gin.Context) {
	roomName := c.Param("room")
	user := c.Param("user")

	room, ok := h.lobby.Room(roomName)
	if !ok {
		h.log.Warn().Str("room", roomName).Msg("can't find room")
		c.String(404, "room not found")
		return
	}

	conn, err := acceptConn(c.Writer, c.Request, h.heartbeat, h.log)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	room.Subscribe(conn.id, conn.events)
	defer func() {
		if empty := room.Unsubscribe(conn.id); empty {
			// Last one out cleans up the room. A concurrent disconnect may
			// have beaten us to it.
			if err := h.lobby.Destroy(roomName); err != nil {
				h.log.Warn().Err(err).Str("room", roomName).Msg("room cleanup")
			}
		}
	}()

	if data, err := json.Marshal(room.Snapshot()); err == nil {
		conn.push(data)
	}

	join, _ := json.Marshal(proto.RoomAction{Action: proto.ActionJoinGame, Name: user})
	if err := room.Dispatch(join); err != nil {
		conn.log.Warn().Err(err).Str("player", user).Msg("implicit join failed")
	} else {
		h.lobby.Broadcast()
	}

	conn.run(c.Request.Context(), func(frame json.RawMessage) {
		if err := room.Dispatch(frame); err != nil {
			conn.log.Warn().Err(err).RawJSON("frame", frame).Msg("rejected room action")
			return
		}
		// Keep the lobby's player counts and statuses current.
		h.lobby.Broadcast()
	})
}
