package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/antonvlasov/gameroom-server/internal/config"
	"github.com/antonvlasov/gameroom-server/internal/core"
	"github.com/antonvlasov/gameroom-server/internal/store"
)

// NewServer builds the HTTP server: templated pages, static assets, the
// results API, and the two websocket endpoints.
func NewServer(lobby *core.Lobby, palette *core.Palette, results store.ResultStore, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	pages := NewPageHandlers(lobby, palette, cfg.StaticDir, logger)
	api := NewAPIHandlers(results, logger)
	ws := NewWSHandlers(lobby, cfg.Heartbeat, logger)

	router.GET("/", pages.WaitingRoom)
	router.GET("/room/:room/:user", pages.GameRoom)
	router.GET("/ws", ws.Lobby)
	router.GET("/room/:room/:user/ws", ws.Room)
	router.GET("/healthz", healthHandler)
	router.GET("/api/results", api.ListResults)
	router.Static("/static", cfg.StaticDir)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	fmt.Fprint(c.Writer, "ok")
}
