package http

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/adapters/signal"
	"github.com/dkeye/watchparty/internal/app/orch"
	"github.com/dkeye/watchparty/internal/config"
	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/logging"
)

const (
	sessionName    = "WatchPartySession"
	clientTokenKey = "client_token"
	sessionMaxAge  = 3600 * 24 * 7
)

// ClientTokenMiddleware gives every browser a stable token kept in the
// signed session cookie. It only correlates reconnects in the logs; room
// membership is keyed by the per-socket connection id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(logging.GinMiddleware(log.Logger))
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: sessionMaxAge, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticPath, "index.html"))
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	h := &handlers{orch: o, cfg: cfg}
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:code", h.getRoom)
	api.GET("/ice-servers", h.iceServers)
	api.GET("/stats", h.stats)

	ctrl := signal.NewSignalWSController(o, cfg.WebSocket, cfg.RateLimit)
	api.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	return r
}

type handlers struct {
	orch *orch.Orchestrator
	cfg  *config.Config
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *handlers) getRoom(c *gin.Context) {
	code, err := domain.NewRoomCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, ok := h.orch.Rooms.Info(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) iceServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ice_servers": h.cfg.GetICEServers()})
}

func (h *handlers) stats(c *gin.Context) {
	rooms, members := h.orch.Rooms.Stats()
	c.JSON(http.StatusOK, gin.H{
		"rooms":       rooms,
		"members":     members,
		"connections": h.orch.Registry.Count(),
	})
}
