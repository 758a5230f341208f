package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/househero/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger is implemented by persistence.Database
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// APIHealthResponse is the body of GET /api/health
type APIHealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message" example:"House Hero Backend is running!"`
}

// APIHealth godoc
// @ID           getApiHealth
// @Summary      Liveness check
// @Description  Always answers 200 while the process is serving requests. Never touches the database.
// @Tags         system
// @Produce      json
// @Success      200 {object} APIHealthResponse
// @Router       /health [get]
func (h *HealthHandler) APIHealth(c *gin.Context) {
	c.JSON(http.StatusOK, APIHealthResponse{
		Status:  "healthy",
		Message: "House Hero Backend is running!",
	})
}

// ReadinessResponse is the body of GET /health
type ReadinessResponse struct {
	Status   string `json:"status" example:"healthy"`
	Time     string `json:"time" example:"2026-10-18T09:00:00Z"`
	Database string `json:"database" example:"ok"`
}

// Readiness pings the database and answers 503 when it is unreachable
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	now := h.now().UTC().Format(time.RFC3339)
	if err := h.db.PingContext(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ReadinessResponse{Status: "unhealthy", Time: now, Database: "error"})
		return
	}
	c.JSON(http.StatusOK, ReadinessResponse{Status: "healthy", Time: now, Database: "ok"})
}
