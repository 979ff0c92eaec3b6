package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tierfolio/tierfolio-backend/internal/clients/discovery"
	"github.com/tierfolio/tierfolio-backend/internal/http/response"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

// DiscoveryHandler proxies ad-hoc candidate searches. Pool construction goes
// through sessions; this endpoint exists for browse-style UIs.
type DiscoveryHandler struct {
	log    *logger.Logger
	client discovery.Client
}

func NewDiscoveryHandler(log *logger.Logger, client discovery.Client) *DiscoveryHandler {
	return &DiscoveryHandler{
		log:    log.With("handler", "DiscoveryHandler"),
		client: client,
	}
}

// GET /api/discovery/search?q=&domain=&limit=
func (h *DiscoveryHandler) Search(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	query := c.Query("q")
	if query == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query", nil)
		return
	}
	limit := 10
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	candidates, err := h.client.Search(c.Request.Context(), query, c.Query("domain"), limit)
	if err != nil {
		response.RespondForError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"candidates": candidates})
}
