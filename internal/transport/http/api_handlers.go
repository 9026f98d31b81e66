package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/antonvlasov/gameroom-server/internal/store"
)

// ErrorResponse is the JSON shape for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIHandlers serves the small JSON API next to the websocket endpoints.
type APIHandlers struct {
	results store.ResultStore
	log     *zerolog.Logger
}

// NewAPIHandlers builds the API handlers.
func NewAPIHandlers(results store.ResultStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{results: results, log: logger}
}

// ResultRow is one finished game in API responses.
type ResultRow struct {
	ID       int64    `json:"id"`
	Room     string   `json:"room"`
	GameType string   `json:"game_type"`
	Winner   string   `json:"winner,omitempty"`
	Status   string   `json:"status"`
	Players  []string `json:"players"`
	PlayedAt string   `json:"played_at"`
}

// ListResults returns recent finished games, newest first.
// GET /api/results?room=<name>&limit=<n>
func (h *APIHandlers) ListResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	room := c.Query("room")

	results, err := h.results.ListResults(c.Request.Context(), room, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list results")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	rows := make([]ResultRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, ResultRow{
			ID:       res.ID,
			Room:     res.Room,
			GameType: res.GameType,
			Winner:   res.Winner,
			Status:   res.Status,
			Players:  res.Players,
			PlayedAt: res.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, rows)
}
