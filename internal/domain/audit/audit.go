package audit

import (
	"context"
	"time"

	"github.com/househero/backend/internal/domain/shared"
)

// Action names a recorded event
type Action string

const (
	ActionLogin               Action = "login"
	ActionLogout              Action = "logout"
	ActionTokenRefreshed      Action = "token_refreshed"
	ActionPaymentSubmitted    Action = "payment_submitted"
	ActionPaymentVerified     Action = "payment_verified"
	ActionPaymentReleased     Action = "payment_released"
	ActionPaymentRefunded     Action = "payment_refunded"
	ActionPaymentAutoReleased Action = "payment_auto_released"
	ActionCompletionConfirmed Action = "completion_confirmed"
)

// Resource types
const (
	ResourceAuth           = "auth"
	ResourcePayment        = "payment"
	ResourceServiceRequest = "service_request"
	ResourceTrustScore     = "trust_score"
)

// Event is one audit log entry
type Event struct {
	ID           int64          `json:"id"`
	Action       Action         `json:"action"`
	UserID       *int64         `json:"userId,omitempty"`
	UserEmail    string         `json:"userEmail,omitempty"`
	UserRole     string         `json:"userRole,omitempty"`
	ResourceType string         `json:"resourceType"`
	ResourceID   *int64         `json:"resourceId,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	IPAddress    string         `json:"ipAddress"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Filter defines filtering options for audit queries
type Filter struct {
	shared.Filter
	Action       *Action
	UserID       *int64
	ResourceType string
	ResourceID   *int64
}

// Repository defines the interface for audit log persistence
type Repository interface {
	Create(ctx context.Context, e *Event) error
	FindAll(ctx context.Context, filter Filter) ([]Event, error)

	// AppendToRequestTrail mirrors a service_request event into the
	// request's own JSON audit trail
	AppendToRequestTrail(ctx context.Context, e *Event) error
}

// TrailEntry is the shape of one element in a service request's audit trail
type TrailEntry struct {
	Action    Action         `json:"action"`
	UserID    *int64         `json:"userId,omitempty"`
	UserEmail string         `json:"userEmail,omitempty"`
	UserRole  string         `json:"userRole,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
}

// Trail converts the event to its service request trail entry
func (e *Event) Trail() TrailEntry {
	return TrailEntry{
		Action:    e.Action,
		UserID:    e.UserID,
		UserEmail: e.UserEmail,
		UserRole:  e.UserRole,
		Timestamp: e.CreatedAt,
		Details:   e.Details,
		IPAddress: e.IPAddress,
	}
}
