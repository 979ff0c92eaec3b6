package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

// ActivityService appends audit events. Log is fire-and-forget: failures are
// logged and never block or roll back the ranking operation that emitted them.
type ActivityService interface {
	Log(userID uuid.UUID, eventType string, payload map[string]any)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ActivityEvent, error)
}

type activityService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo ranking.ActivityEventRepo

	// writeTimeout bounds the detached insert.
	writeTimeout time.Duration
}

func NewActivityService(db *gorm.DB, baseLog *logger.Logger, repo ranking.ActivityEventRepo) ActivityService {
	return &activityService{
		db:           db,
		log:          baseLog.With("service", "ActivityService"),
		repo:         repo,
		writeTimeout: 5 * time.Second,
	}
}

func (s *activityService) Log(userID uuid.UUID, eventType string, payload map[string]any) {
	if userID == uuid.Nil || eventType == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("activity payload marshal failed", "type", eventType, "error", err)
		raw = []byte("{}")
	}
	row := &domain.ActivityEvent{
		UserID:  userID,
		Type:    eventType,
		Payload: datatypes.JSON(raw),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()
		if err := s.repo.Create(ctx, nil, []*domain.ActivityEvent{row}); err != nil {
			s.log.Warn("activity log write failed", "type", eventType, "error", err)
		}
	}()
}

func (s *activityService) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ActivityEvent, error) {
	return s.repo.ListRecentByUser(ctx, nil, userID, limit)
}
