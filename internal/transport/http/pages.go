package http

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/antonvlasov/gameroom-server/internal/core"
)

// PageHandlers serves the token-templated lobby and room pages.
type PageHandlers struct {
	lobby     *core.Lobby
	palette   *core.Palette
	staticDir string
	log       *zerolog.Logger
}

// NewPageHandlers builds the page handlers.
func NewPageHandlers(lobby *core.Lobby, palette *core.Palette, staticDir string, logger *zerolog.Logger) *PageHandlers {
	return &PageHandlers{lobby: lobby, palette: palette, staticDir: staticDir, log: logger}
}

// WaitingRoom renders the landing page with the available room types and a
// palette color, because why not.
// GET /
func (h *PageHandlers) WaitingRoom(c *gin.Context) {
	types, err := json.Marshal(h.lobby.GameTypes())
	if err != nil {
		h.log.Warn().Err(err).Msg("marshal room types")
		c.String(500, "internal error")
		return
	}
	// The color lands in a style attribute, so it stays unquoted.
	h.render(c, "waiting-room.html", map[string]string{
		"ROOM_TYPES":   string(types),
		"RANDOM_COLOR": h.palette.Next(),
	})
}

// GameRoom renders the room page for a room/user pair.
// GET /room/:room/:user
func (h *PageHandlers) GameRoom(c *gin.Context) {
	room, _ := json.Marshal(c.Param("room"))
	user, _ := json.Marshal(c.Param("user"))

	h.render(c, "game-room.html", map[string]string{
		"ROOM": string(room),
		"USER": string(user),
	})
}

func (h *PageHandlers) render(c *gin.Context, page string, tokens map[string]string) {
	data, err := os.ReadFile(filepath.Join(h.staticDir, page))
	if err != nil {
		h.log.Warn().Err(err).Str("page", page).Msg("read page")
		c.String(500, "internal error")
		return
	}

	body := string(data)
	for token, value := range tokens {
		body = strings.ReplaceAll(body, token, value)
	}
	c.Data(200, "text/html; charset=utf-8", []byte(body))
}
