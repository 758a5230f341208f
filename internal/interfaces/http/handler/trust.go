package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/househero/backend/internal/domain/trust"
)

// TrustService is the subset of the trust service the handler needs
type TrustService interface {
	Get(ctx context.Context, providerID int64) (*trust.Score, error)
}

// TrustHandler serves provider trust scores
type TrustHandler struct {
	BaseHandler
	service TrustService
}

// NewTrustHandler creates a new TrustHandler
func NewTrustHandler(service TrustService) *TrustHandler {
	return &TrustHandler{service: service}
}

// Get godoc
// @ID           getTrustScore
// @Summary      Get a provider's trust score
// @Description  Returns the stored score, computing it on first access
// @Tags         trust
// @Produce      json
// @Param        providerId path int true "Provider id"
// @Success      200 {object} APIResponse[trust.Score]
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /trust-scores/{providerId} [get]
func (h *TrustHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "providerId")
	if !ok {
		h.BadRequest(c, "Invalid provider ID")
		return
	}
	score, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, score)
}
