package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/data/repos/ranking"
	"github.com/tierfolio/tierfolio-backend/internal/domain"
	"github.com/tierfolio/tierfolio-backend/internal/http/response"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
	"github.com/tierfolio/tierfolio-backend/internal/services"
)

type ItemHandler struct {
	log         *logger.Logger
	items       services.ItemService
	collections services.CollectionService
}

func NewItemHandler(log *logger.Logger, items services.ItemService, collections services.CollectionService) *ItemHandler {
	return &ItemHandler{
		log:         log.With("handler", "ItemHandler"),
		items:       items,
		collections: collections,
	}
}

type createItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Origin      string `json:"origin"`
}

// POST /api/collections/:id/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
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
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	item, err := h.items.CreateItem(c.Request.Context(), userID, collectionID, services.NewItemInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Origin:      req.Origin,
	})
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondCreated(c, item)
}

// GET /api/collections/:id/items?status=&tier=&unranked=&limit=
func (h *ItemHandler) ListItems(c *gin.Context) {
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
	var f ranking.ItemFilters
	if s := c.Query("status"); s != "" {
		f.Status = domain.ItemStatus(s)
	}
	if t := c.Query("tier"); t != "" {
		f.Tier = &t
	}
	if c.Query("unranked") == "true" {
		f.Unranked = true
	}
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			f.Limit = n
		}
	}
	items, err := h.items.ListItems(c.Request.Context(), collectionID, f)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, items)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/items/:id/status
func (h *ItemHandler) SetItemStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if !h.itemOwned(c, itemID, userID) {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	item, err := h.items.SetItemStatus(c.Request.Context(), itemID, domain.ItemStatus(req.Status))
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// DELETE /api/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if !h.itemOwned(c, itemID, userID) {
		return
	}
	if err := h.items.DeleteItem(c.Request.Context(), itemID); err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *ItemHandler) itemOwned(c *gin.Context, itemID, userID uuid.UUID) bool {
	item, err := h.items.GetItem(c.Request.Context(), itemID)
	if err != nil {
		response.RespondForError(c, err)
		return false
	}
	return requireOwnedCollection(c, h.collections, item.CollectionID, userID)
}
