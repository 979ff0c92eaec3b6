package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tierfolio/tierfolio-backend/internal/http/response"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
	"github.com/tierfolio/tierfolio-backend/internal/services"
)

type ActivityHandler struct {
	log      *logger.Logger
	activity services.ActivityService
}

func NewActivityHandler(log *logger.Logger, activity services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		log:      log.With("handler", "ActivityHandler"),
		activity: activity,
	}
}

// GET /api/activity?limit=
func (h *ActivityHandler) ListRecent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}
	events, err := h.activity.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, events)
}
