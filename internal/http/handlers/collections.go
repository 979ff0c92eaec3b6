package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"net/http"

	"github.com/tierfolio/tierfolio-backend/internal/http/response"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
	"github.com/tierfolio/tierfolio-backend/internal/services"
)

type CollectionHandler struct {
	log         *logger.Logger
	collections services.CollectionService
}

func NewCollectionHandler(log *logger.Logger, collections services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		log:         log.With("handler", "CollectionHandler"),
		collections: collections,
	}
}

type createCollectionRequest struct {
	Name       string `json:"name" binding:"required"`
	DomainHint string `json:"domain_hint"`
}

// POST /api/collections
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	col, err := h.collections.CreateCollection(c.Request.Context(), userID, req.Name, req.DomainHint)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondCreated(c, col)
}

// GET /api/collections
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cols, err := h.collections.ListCollections(c.Request.Context(), userID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, cols)
}

// GET /api/collections/:id
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	col, err := h.collections.GetCollection(c.Request.Context(), id)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	if col.UserID != userID {
		response.RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	response.RespondOK(c, col)
}

// requireOwnedCollection loads a collection and enforces ownership. Foreign
// collections read as not found, never as forbidden.
func requireOwnedCollection(c *gin.Context, svc services.CollectionService, id, userID uuid.UUID) bool {
	col, err := svc.GetCollection(c.Request.Context(), id)
	if err != nil {
		response.RespondForError(c, err)
		return false
	}
	if col.UserID != userID {
		response.RespondError(c, http.StatusNotFound, "not_found", nil)
		return false
	}
	return true
}
