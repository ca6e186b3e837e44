package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jhifarskiy/eatune/internal/api/middleware"
	"github.com/jhifarskiy/eatune/internal/catalog"
	"github.com/jhifarskiy/eatune/internal/config"
	"github.com/jhifarskiy/eatune/internal/jukebox"
	"github.com/jhifarskiy/eatune/internal/ws"
)

type Server struct {
	cfg     *config.Config
	svc     *jukebox.Service
	hub     *ws.Hub
	catalog *catalog.Cache
	router  *gin.Engine
}

func New(cfg *config.Config, svc *jukebox.Service, hub *ws.Hub, cache *catalog.Cache) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:     cfg,
		svc:     svc,
		hub:     hub,
		catalog: cache,
		router:  gin.Default(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "eatune"})
	})

	// Subscriber channel (player + patron displays)
	s.router.GET("/ws", s.HandleSubscriber)

	// API Group
	api := s.router.Group("/api")
	{
		api.GET("/tracks", s.GetTracks)
		api.GET("/queue/:venueId", s.GetQueue)
		api.GET("/history/:venueId", s.GetHistory)

		api.POST("/queue/add", s.AddToQueue)

		api.POST("/player/next", s.NextTrack)
		api.POST("/player/previous", s.PreviousTrack)
		api.POST("/player/:action", s.PlayerControl)

		// Staff-only queue surgery
		admin := api.Group("/", middleware.RequireAdmin([]byte(s.cfg.Server.AdminSecret)))
		{
			admin.POST("/queue/add-next", s.AddNext)
			admin.POST("/queue/remove", s.RemoveFromQueue)
		}
	}
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
