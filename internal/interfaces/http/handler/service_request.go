package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	auditapp "github.com/househero/backend/internal/application/audit"
	requestapp "github.com/househero/backend/internal/application/servicerequest"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/interfaces/http/middleware"
)

// ServiceRequestService is the subset of the service request service the handler needs
type ServiceRequestService interface {
	Get(ctx context.Context, id int64) (*servicerequest.ServiceRequest, error)
	ConfirmCompletion(ctx context.Context, actor auditapp.Actor, id int64) (*requestapp.ConfirmResult, error)
}

// ServiceRequestHandler handles booked job endpoints
type ServiceRequestHandler struct {
	BaseHandler
	service ServiceRequestService
}

// NewServiceRequestHandler creates a new ServiceRequestHandler
func NewServiceRequestHandler(service ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{service: service}
}

// ConfirmCompletionResponse reports the confirmation state after a party confirmed
type ConfirmCompletionResponse struct {
	Message       string                `json:"message" example:"Completion confirmed successfully"`
	ConfirmedBy   servicerequest.Party  `json:"confirmedBy" example:"customer"`
	BothConfirmed bool                  `json:"bothConfirmed"`
	OneConfirmed  bool                  `json:"oneConfirmed"`
	Status        servicerequest.Status `json:"status"`
	CanRate       bool                  `json:"canRate"`
}

// Get godoc
// @ID           getServiceRequest
// @Summary      Get a service request
// @Tags         service-requests
// @Produce      json
// @Param        id path int true "Service request id"
// @Success      200 {object} APIResponse[servicerequest.ServiceRequest]
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /service-requests/{id} [get]
func (h *ServiceRequestHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}
	req, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// ConfirmCompletion godoc
// @ID           confirmServiceRequestCompletion
// @Summary      Confirm a job is complete
// @Description  The customer or the assigned provider confirms completion. When both have confirmed the job completes and its escrowed payment is released.
// @Tags         service-requests
// @Produce      json
// @Param        id path int true "Service request id"
// @Success      200 {object} APIResponse[ConfirmCompletionResponse]
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /service-requests/{id}/confirm-completion [post]
func (h *ServiceRequestHandler) ConfirmCompletion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}
	result, err := h.service.ConfirmCompletion(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ConfirmCompletionResponse{
		Message:       "Completion confirmed successfully",
		ConfirmedBy:   result.ConfirmedBy,
		BothConfirmed: result.BothConfirmed,
		OneConfirmed:  result.OneConfirmed,
		Status:        result.Status,
		CanRate:       result.CanRate,
	})
}
