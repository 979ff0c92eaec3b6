package app

import (
	internalhttp "github.com/tierfolio/tierfolio-backend/internal/http"
	"github.com/tierfolio/tierfolio-backend/internal/observability"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *internalhttp.Server {
	return internalhttp.NewServer(log, cfg.HTTPAddr, internalhttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,

		AuthMiddleware: middleware.Auth,

		CollectionHandler: handlers.Collection,
		ItemHandler:       handlers.Item,
		TierHandler:       handlers.Tier,
		SessionHandler:    handlers.Session,
		ActivityHandler:   handlers.Activity,
		DiscoveryHandler:  handlers.Discovery,
		HealthHandler:     handlers.Health,
	})
}
