package app

import (
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/observability"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
	"github.com/tierfolio/tierfolio-backend/internal/services"
	"github.com/tierfolio/tierfolio-backend/internal/session"
)

type Services struct {
	Activity   services.ActivityService
	Collection services.CollectionService
	Item       services.ItemService
	Tier       services.TierService
	Tournament services.TournamentService
	Match      services.MatchService

	Sessions *session.Manager
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	activity := services.NewActivityService(db, log, repos.Activity)
	matchCfg := services.MatchConfigFromEnv()

	svc := Services{
		Activity:   activity,
		Collection: services.NewCollectionService(db, log, repos.Collection),
		Item:       services.NewItemService(db, log, repos.Item, repos.Collection, activity),
		Tier:       services.NewTierService(db, log, repos.CustomRank, repos.Item, activity),
		Tournament: services.NewTournamentService(log, repos.Item, repos.Collection, clients.Discovery, activity, metrics),
		Match:      services.NewMatchService(log, matchCfg, repos.Item, activity, metrics),
	}

	svc.Sessions = session.NewManager(session.Deps{
		Log:         log,
		Items:       repos.Item,
		Tiers:       svc.Tier,
		Matches:     svc.Match,
		Tournaments: svc.Tournament,
		Metrics:     metrics,
		KFactor:     matchCfg.KFactor,
	})
	return svc
}
