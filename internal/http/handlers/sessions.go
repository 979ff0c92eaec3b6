package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/http/response"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
	"github.com/tierfolio/tierfolio-backend/internal/services"
	"github.com/tierfolio/tierfolio-backend/internal/session"
)

// SessionHandler exposes the live ranking session: open/close, drag moves,
// tournament pools, votes, and challenger promotion all run against the
// session's speculative state.
type SessionHandler struct {
	log         *logger.Logger
	sessions    *session.Manager
	collections services.CollectionService
}

func NewSessionHandler(log *logger.Logger, sessions *session.Manager, collections services.CollectionService) *SessionHandler {
	return &SessionHandler{
		log:         log.With("handler", "SessionHandler"),
		sessions:    sessions,
		collections: collections,
	}
}

type openSessionRequest struct {
	CollectionID uuid.UUID `json:"collection_id" binding:"required"`
}

// POST /api/sessions
func (h *SessionHandler) OpenSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !requireOwnedCollection(c, h.collections, req.CollectionID, userID) {
		return
	}
	s, err := h.sessions.Create(c.Request.Context(), userID, req.CollectionID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondCreated(c, s.Snapshot())
}

// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.RespondOK(c, s.Snapshot())
}

// DELETE /api/sessions/:id
func (h *SessionHandler) CloseSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.sessions.Close(id, userID); err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type startTournamentRequest struct {
	PoolSize      int  `json:"pool_size" binding:"required"`
	IncludeUnseen bool `json:"include_unseen"`
}

// POST /api/sessions/:id/tournament
func (h *SessionHandler) StartTournament(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req startTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	pool, err := s.StartTournament(c.Request.Context(), req.PoolSize, req.IncludeUnseen)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pool": pool})
}

type dragStartRequest struct {
	Kind     string `json:"kind" binding:"required"`
	SourceID string `json:"source_id" binding:"required"`
}

// POST /api/sessions/:id/drag/start
func (h *SessionHandler) DragStart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := s.StartDrag(session.DragKind(req.Kind), req.SourceID); err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type dragDropRequest struct {
	TargetID string `json:"target_id" binding:"required"`
}

// POST /api/sessions/:id/drag/drop
func (h *SessionHandler) DragDrop(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dragDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := s.Drop(req.TargetID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/sessions/:id/drag/cancel
func (h *SessionHandler) DragCancel(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.CancelDrag()
	response.RespondNoContent(c)
}

// POST /api/sessions/:id/vote
func (h *SessionHandler) Vote(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var outcome domain.MatchOutcome
	if err := c.ShouldBindJSON(&outcome); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if outcome.WinnerID == "" || outcome.LoserID == "" || outcome.WinnerID == outcome.LoserID {
		response.RespondError(c, http.StatusBadRequest, "invalid_outcome", nil)
		return
	}
	res, err := s.Vote(outcome)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, res)
}

type promoteRequest struct {
	TempID string `json:"temp_id" binding:"required"`
}

// POST /api/sessions/:id/promote
func (h *SessionHandler) PromoteChallenger(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	item, err := s.PromoteChallenger(c.Request.Context(), req.TempID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondCreated(c, item)
}

type unrankedSortRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// POST /api/sessions/:id/unranked-sort
func (h *SessionHandler) SortUnranked(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req unrankedSortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	s.SortUnranked(session.UnrankedSort(req.Mode))
	response.RespondOK(c, s.Snapshot())
}

func (h *SessionHandler) session(c *gin.Context) (*session.Session, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return nil, false
	}
	s, err := h.sessions.Get(id, userID)
	if err != nil {
		response.RespondForError(c, err)
		return nil, false
	}
	return s, true
}
