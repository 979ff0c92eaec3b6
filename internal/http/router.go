package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/tierfolio/tierfolio-backend/internal/http/handlers"
	httpMW "github.com/tierfolio/tierfolio-backend/internal/http/middleware"
	"github.com/tierfolio/tierfolio-backend/internal/observability"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	CollectionHandler *httpH.CollectionHandler
	ItemHandler       *httpH.ItemHandler
	TierHandler       *httpH.TierHandler
	SessionHandler    *httpH.SessionHandler
	ActivityHandler   *httpH.ActivityHandler
	DiscoveryHandler  *httpH.DiscoveryHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil && observability.Enabled() {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.CollectionHandler != nil {
		api.POST("/collections", cfg.CollectionHandler.CreateCollection)
		api.GET("/collections", cfg.CollectionHandler.ListCollections)
		api.GET("/collections/:id", cfg.CollectionHandler.GetCollection)
	}

	if cfg.ItemHandler != nil {
		api.POST("/collections/:id/items", cfg.ItemHandler.CreateItem)
		api.GET("/collections/:id/items", cfg.ItemHandler.ListItems)
		api.PATCH("/items/:id/status", cfg.ItemHandler.SetItemStatus)
		api.DELETE("/items/:id", cfg.ItemHandler.DeleteItem)
	}

	if cfg.TierHandler != nil {
		api.GET("/collections/:id/tiers", cfg.TierHandler.ListTiers)
		api.POST("/collections/:id/tiers", cfg.TierHandler.CreateCustomRank)
		api.PUT("/collections/:id/tiers/order", cfg.TierHandler.ReorderTiers)
		api.PATCH("/tiers/:id", cfg.TierHandler.UpdateCustomRank)
		api.DELETE("/tiers/:id", cfg.TierHandler.DeleteCustomRank)
		api.PUT("/items/:id/tier", cfg.TierHandler.AssignItemToTier)
		api.DELETE("/items/:id/tier", cfg.TierHandler.RemoveItemTier)
	}

	if cfg.SessionHandler != nil {
		api.POST("/sessions", cfg.SessionHandler.OpenSession)
		api.GET("/sessions/:id", cfg.SessionHandler.GetSession)
		api.DELETE("/sessions/:id", cfg.SessionHandler.CloseSession)
		api.POST("/sessions/:id/tournament", cfg.SessionHandler.StartTournament)
		api.POST("/sessions/:id/drag/start", cfg.SessionHandler.DragStart)
		api.POST("/sessions/:id/drag/drop", cfg.SessionHandler.DragDrop)
		api.POST("/sessions/:id/drag/cancel", cfg.SessionHandler.DragCancel)
		api.POST("/sessions/:id/vote", cfg.SessionHandler.Vote)
		api.POST("/sessions/:id/promote", cfg.SessionHandler.PromoteChallenger)
		api.POST("/sessions/:id/unranked-sort", cfg.SessionHandler.SortUnranked)
	}

	if cfg.ActivityHandler != nil {
		api.GET("/activity", cfg.ActivityHandler.ListRecent)
	}

	if cfg.DiscoveryHandler != nil {
		api.GET("/discovery/search", cfg.DiscoveryHandler.Search)
	}

	return r
}
