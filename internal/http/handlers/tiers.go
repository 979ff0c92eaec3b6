package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/http/response"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
	"github.com/tierfolio/tierfolio-backend/internal/services"
)

type TierHandler struct {
	log         *logger.Logger
	tiers       services.TierService
	collections services.CollectionService
}

func NewTierHandler(log *logger.Logger, tiers services.TierService, collections services.CollectionService) *TierHandler {
	return &TierHandler{
		log:         log.With("handler", "TierHandler"),
		tiers:       tiers,
		collections: collections,
	}
}

// GET /api/collections/:id/tiers
func (h *TierHandler) ListTiers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if !requireOwnedCollection(c, h.collections, collectionID, userID) {
		return
	}
	rows, err := h.tiers.ListTiers(c.Request.Context(), collectionID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

type createRankRequest struct {
	Name      string `json:"name" binding:"required"`
	Color     string `json:"color"`
	Sentiment string `json:"sentiment"`
}

// POST /api/collections/:id/tiers
func (h *TierHandler) CreateCustomRank(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if !requireOwnedCollection(c, h.collections, collectionID, userID) {
		return
	}
	var req createRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rank, err := h.tiers.CreateCustomRank(c.Request.Context(), userID, collectionID, req.Name, req.Color, domain.RankSentiment(req.Sentiment))
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondCreated(c, rank)
}

type updateRankRequest struct {
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	Sentiment *string `json:"sentiment"`
}

// PATCH /api/tiers/:id
func (h *TierHandler) UpdateCustomRank(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rankID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !h.rankOwned(c, rankID, userID) {
		return
	}
	patch := services.RankPatch{Name: req.Name, Color: req.Color}
	if req.Sentiment != nil {
		s := domain.RankSentiment(*req.Sentiment)
		patch.Sentiment = &s
	}
	rank, err := h.tiers.UpdateCustomRank(c.Request.Context(), rankID, patch)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, rank)
}

// DELETE /api/tiers/:id
//
// Deleting a non-empty tier returns 409 with the live item count; the client
// must empty the tier first.
func (h *TierHandler) DeleteCustomRank(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rankID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if !h.rankOwned(c, rankID, userID) {
		return
	}
	if err := h.tiers.DeleteCustomRank(c.Request.Context(), userID, rankID); err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type reorderRequest struct {
	OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required"`
}

// PUT /api/collections/:id/tiers/order
func (h *TierHandler) ReorderTiers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	collectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if !requireOwnedCollection(c, h.collections, collectionID, userID) {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.tiers.ReorderTiers(c.Request.Context(), userID, collectionID, req.OrderedIDs); err != nil {
		response.RespondForError(c, err)
		return
	}
	rows, err := h.tiers.ListTiers(c.Request.Context(), collectionID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

type assignTierRequest struct {
	CollectionID uuid.UUID `json:"collection_id" binding:"required"`
	Tier         string    `json:"tier" binding:"required"`
}

// PUT /api/items/:id/tier
func (h *TierHandler) AssignItemToTier(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req assignTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !requireOwnedCollection(c, h.collections, req.CollectionID, userID) {
		return
	}
	item, err := h.tiers.AssignItemToTier(c.Request.Context(), userID, itemID, req.Tier, req.CollectionID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, item)
}

type removeTierRequest struct {
	CollectionID uuid.UUID `json:"collection_id" binding:"required"`
}

// DELETE /api/items/:id/tier
func (h *TierHandler) RemoveItemTier(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req removeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !requireOwnedCollection(c, h.collections, req.CollectionID, userID) {
		return
	}
	item, err := h.tiers.RemoveItemTier(c.Request.Context(), userID, itemID, req.CollectionID)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// rankOwned resolves a rank's collection and enforces ownership.
func (h *TierHandler) rankOwned(c *gin.Context, rankID, userID uuid.UUID) bool {
	rank, err := h.tiers.GetCustomRank(c.Request.Context(), rankID)
	if err != nil {
		response.RespondForError(c, err)
		return false
	}
	return requireOwnedCollection(c, h.collections, rank.CollectionID, userID)
}
