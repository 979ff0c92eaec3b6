package app

import (
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/clients/discovery"
	"github.com/tierfolio/tierfolio-backend/internal/clients/redis"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

type Clients struct {
	Discovery   discovery.Client
	SearchCache *redis.SearchCache
}

// wireClients builds the outbound clients. Both are optional: without
// discovery config the pool builder serves owned items only, and without
// redis the discovery client just skips its cache.
func wireClients(log *logger.Logger, _ *gorm.DB) Clients {
	log.Info("Wiring clients...")
	var out Clients

	cache, err := redis.NewSearchCache(log)
	if err != nil {
		log.Warn("search cache disabled", "error", err)
	} else {
		out.SearchCache = cache
	}

	var sc discovery.SearchCache
	if out.SearchCache != nil {
		sc = out.SearchCache
	}
	disco, err := discovery.NewFromEnv(log, sc)
	if err != nil {
		log.Warn("discovery client disabled", "error", err)
	} else {
		out.Discovery = disco
	}
	return out
}
