package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	pricingapp "github.com/househero/backend/internal/application/pricing"
	"github.com/househero/backend/internal/domain/pricing"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/infrastructure/logger"
	"github.com/househero/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// PricingService is the subset of the pricing service the handler needs
type PricingService interface {
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]pricing.Item, error)
	Quote(ctx context.Context, selected []servicerequest.SelectedItem) (*pricingapp.Quote, error)
}

// PricingHandler exposes the price catalogue
type PricingHandler struct {
	BaseHandler
	service PricingService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(service PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

// PricingErrorResponse is the raw error body of GET /api/pricing
type PricingErrorResponse struct {
	Error string `json:"error" example:"Failed to fetch pricing data"`
}

// QuoteRequest is the body of POST /api/pricing/quote
type QuoteRequest struct {
	Items []QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

// QuoteItemRequest is one selected line in a quote request
type QuoteItemRequest struct {
	Category string `json:"category" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	IsWhite  bool   `json:"is_white"`
}

// List godoc
// @ID           listPricing
// @Summary      List pricing categories or items
// @Description  Without a category returns the sorted category names. With ?category= returns that category's items ordered by customer price.
// @Tags         pricing
// @Produce      json
// @Param        category query string false "Service category"
// @Success      200 {array} string
// @Failure      500 {object} PricingErrorResponse
// @Router       /pricing [get]
func (h *PricingHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	category := c.Query("category")

	var (
		body any
		err  error
	)
	if category == "" {
		body, err = h.service.Categories(ctx)
	} else {
		body, err = h.service.ByCategory(ctx, category)
	}
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to fetch pricing data",
			zap.String("category", category), zap.Error(err))
		c.JSON(http.StatusInternalServerError, PricingErrorResponse{Error: "Failed to fetch pricing data"})
		return
	}
	c.JSON(http.StatusOK, body)
}

// Quote godoc
// @ID           quotePricing
// @Summary      Price a selection of items
// @Description  Totals the selected items the way a booking stores them: customer total, provider total and commission.
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body QuoteRequest true "Selected items"
// @Success      200 {object} APIResponse[pricingapp.Quote]
// @Failure      400 {object} dto.Response
// @Router       /pricing/quote [post]
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	selected := make([]servicerequest.SelectedItem, len(req.Items))
	for i, it := range req.Items {
		selected[i] = servicerequest.SelectedItem{
			Category: it.Category,
			Type:     it.Type,
			Quantity: it.Quantity,
			IsWhite:  it.IsWhite,
		}
	}

	quote, err := h.service.Quote(c.Request.Context(), selected)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
