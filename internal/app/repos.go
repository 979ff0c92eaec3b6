package app

import (
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

type Repos struct {
	Collection ranking.CollectionRepo
	Item       ranking.ItemRepo
	CustomRank ranking.CustomRankRepo
	Activity   ranking.ActivityEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Collection: ranking.NewCollectionRepo(db, log),
		Item:       ranking.NewItemRepo(db, log),
		CustomRank: ranking.NewCustomRankRepo(db, log),
		Activity:   ranking.NewActivityEventRepo(db, log),
	}
}
