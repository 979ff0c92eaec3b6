package app

import (
	httpH "github.com/tierfolio/tierfolio-backend/internal/http/handlers"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

type Handlers struct {
	Collection *httpH.CollectionHandler
	Item       *httpH.ItemHandler
	Tier       *httpH.TierHandler
	Session    *httpH.SessionHandler
	Activity   *httpH.ActivityHandler
	Discovery  *httpH.DiscoveryHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Collection: httpH.NewCollectionHandler(log, services.Collection),
		Item:       httpH.NewItemHandler(log, services.Item, services.Collection),
		Tier:       httpH.NewTierHandler(log, services.Tier, services.Collection),
		Session:    httpH.NewSessionHandler(log, services.Sessions, services.Collection),
		Activity:   httpH.NewActivityHandler(log, services.Activity),
		Health:     httpH.NewHealthHandler(),
	}
	if clients.Discovery != nil {
		h.Discovery = httpH.NewDiscoveryHandler(log, clients.Discovery)
	}
	return h
}
