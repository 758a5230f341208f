// Package audit records who did what to payments, service requests and
// sessions. Recording never fails the calling operation.
package audit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SystemEmail is recorded as the actor of automatic operations
const SystemEmail = "system"

// Actor is the authenticated caller an event is attributed to
type Actor struct {
	UserID *int64
	Email  string
	Role   string
	IP     string
}

// SystemActor is used by background release and follow-ups that run without a caller
func SystemActor() Actor {
	return Actor{Email: SystemEmail, Role: SystemEmail, IP: "unknown"}
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

// Recorder is implemented by Service. Other application services depend on
// it so tests can record events in memory.
type Recorder interface {
	Log(ctx context.Context, actor Actor, action audit.Action, resourceType string, resourceID *int64, details map[string]any)
}

// Service persists audit events
type Service struct {
	repo   audit.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new audit service
func NewService(repo audit.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Log writes an audit event. Service request events are also appended to the
// request's own trail. Errors are logged and dropped.
func (s *Service) Log(ctx context.Context, actor Actor, action audit.Action, resourceType string, resourceID *int64, details map[string]any) {
	ip := actor.IP
	if ip == "" {
		ip = "unknown"
	}
	event := &audit.Event{
		Action:       action,
		UserID:       actor.UserID,
		UserEmail:    actor.Email,
		UserRole:     actor.Role,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    ip,
		CreatedAt:    s.now().UTC(),
	}

	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("action", string(action)),
		zap.String("resource_type", resourceType),
	)

	if err := s.repo.Create(ctx, event); err != nil {
		log.Error("Failed to write audit log", zap.Error(err))
		return
	}
	if resourceType == audit.ResourceServiceRequest && resourceID != nil {
		if err := s.repo.AppendToRequestTrail(ctx, event); err != nil {
			log.Error("Failed to append service request audit trail",
				zap.Int64("request_id", *resourceID), zap.Error(err))
		}
	}
}

// List returns the most recent events matching filter
func (s *Service) List(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	return s.repo.FindAll(ctx, filter)
}

// ClientIP picks the caller address from proxy headers: the first
// X-Forwarded-For entry, then X-Real-IP, else "unknown".
func ClientIP(h http.Header) string {
	if forwarded := h.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(h.Get("X-Real-IP")); real != "" {
		return real
	}
	return "unknown"
}

var _ Recorder = (*Service)(nil)
