package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/interfaces/http/dto"
	"github.com/househero/backend/internal/interfaces/http/middleware"
)

// AuditService is the subset of the audit service the handler needs
type AuditService interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Event, error)
}

// AuditHandler exposes the audit log to admins
type AuditHandler struct {
	BaseHandler
	service AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// AuditListQuery holds the filters of GET /audit-logs
type AuditListQuery struct {
	dto.ListRequest
	Action       string `form:"action"`
	ResourceType string `form:"resourceType"`
}

// List godoc
// @ID           listAuditLogs
// @Summary      List audit log entries
// @Tags         audit
// @Produce      json
// @Param        action       query string false "Action"
// @Param        userId       query int    false "Acting user id"
// @Param        resourceType query string false "Resource type"
// @Param        resourceId   query int    false "Resource id"
// @Param        page         query int    false "Page number" default(1)
// @Param        page_size    query int    false "Page size" default(20)
// @Param        order_by     query string false "Sort column" Enums(created_at, action, resource_type)
// @Param        order_dir    query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]audit.Event]
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     BearerAuth
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var q AuditListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	q.Normalize()

	filter := audit.Filter{
		Filter:       shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: q.OrderBy, OrderDir: q.OrderDir},
		ResourceType: q.ResourceType,
	}
	if q.Action != "" {
		action := audit.Action(q.Action)
		filter.Action = &action
	}
	var ok bool
	if filter.UserID, ok = optionalInt64(c, "userId"); !ok {
		h.BadRequest(c, "Invalid userId")
		return
	}
	if filter.ResourceID, ok = optionalInt64(c, "resourceId"); !ok {
		h.BadRequest(c, "Invalid resourceId")
		return
	}

	events, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}
