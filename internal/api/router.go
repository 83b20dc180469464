package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/api/handlers"
	"github.com/jstittsworth/lineup-editor/internal/api/middleware"
	"github.com/jstittsworth/lineup-editor/internal/services"
	"github.com/jstittsworth/lineup-editor/pkg/config"
	"github.com/jstittsworth/lineup-editor/pkg/database"
)

// Dependencies bundles what the routes need. Cache, Hub and Breakers may be
// nil.
type Dependencies struct {
	DB       *database.DB
	Repo     *services.TimelineRepository
	Cache    *services.CacheService
	Sessions *services.SessionManager
	Hub      *services.Hub
	Breakers *services.CircuitBreakerService
	Config   *config.Config
	Logger   *logrus.Logger
}

// NewRouter builds the gin engine with middleware, health checks, the
// /api/v1 group and the websocket endpoint
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Config.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache, deps.Sessions, deps.Hub, deps.Breakers)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	apiV1 := router.Group("/api/v1")
	SetupRoutes(apiV1, deps)

	// WebSocket endpoint lives at root level, not under /api/v1
	if deps.Hub != nil {
		wsHandler := handlers.NewWebSocketHandler(deps.Sessions, deps.Hub)
		router.GET("/ws/sessions/:id", middleware.OptionalAuth(deps.Config.JWTSecret), wsHandler.StreamSession)
	}

	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	catalog := deps.Sessions.Catalog()

	formationHandler := handlers.NewFormationHandler(catalog)
	matchHandler := handlers.NewMatchHandler(deps.Repo, deps.Cache, catalog, deps.Config.StateCacheTTL, deps.Logger)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions, deps.Logger)

	// Public reads
	public := group.Group("")
	public.Use(middleware.OptionalAuth(deps.Config.JWTSecret))
	{
		public.GET("/formations", formationHandler.ListFormations)
		public.GET("/formations/:name", formationHandler.GetFormation)

		public.GET("/matches", matchHandler.ListMatches)
		public.GET("/matches/:id", matchHandler.GetMatch)
		public.GET("/matches/:id/snapshots", matchHandler.GetSnapshots)

		public.GET("/sessions", sessionHandler.ListSessions)
		public.GET("/sessions/:id", sessionHandler.GetState)
		public.GET("/sessions/:id/snapshots", sessionHandler.ListSnapshots)
	}

	// Authenticated routes
	auth := group.Group("")
	auth.Use(middleware.AuthRequired(deps.Config.JWTSecret))
	{
		auth.POST("/matches", matchHandler.CreateMatch)

		auth.POST("/sessions", sessionHandler.CreateSession)
		auth.DELETE("/sessions/:id", sessionHandler.CloseSession)
		auth.POST("/sessions/:id/save", sessionHandler.SaveSession)
		auth.POST("/sessions/:id/snapshots", sessionHandler.CaptureSnapshot)

		// Selection state machine
		auth.POST("/sessions/:id/selection", sessionHandler.Select)
		auth.POST("/sessions/:id/selection/swap", sessionHandler.ChooseSwap)
		auth.POST("/sessions/:id/selection/resolve", sessionHandler.Resolve)
		auth.DELETE("/sessions/:id/selection", sessionHandler.Cancel)

		// Movement engine
		auth.POST("/sessions/:id/moves", sessionHandler.ApplyMove)
		auth.PUT("/sessions/:id/formations/:team", sessionHandler.SetFormation)

		// Timeline
		auth.POST("/sessions/:id/timeline/play", sessionHandler.Play)
		auth.POST("/sessions/:id/timeline/pause", sessionHandler.Pause)
		auth.POST("/sessions/:id/timeline/seek", sessionHandler.Seek)
	}
}
