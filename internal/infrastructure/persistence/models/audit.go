package models

import (
	"time"

	"github.com/househero/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for an audit Event.
type AuditLogModel struct {
	ID           int64          `gorm:"primaryKey;autoIncrement"`
	Action       audit.Action   `gorm:"type:varchar(50);not null;index"`
	UserID       *int64         `gorm:"index"`
	UserEmail    string         `gorm:"type:varchar(200)"`
	UserRole     string         `gorm:"type:varchar(20)"`
	ResourceType string         `gorm:"type:varchar(50);not null;index:idx_audit_resource,priority:1"`
	ResourceID   *int64         `gorm:"index:idx_audit_resource,priority:2"`
	Details      map[string]any `gorm:"type:jsonb;serializer:json"`
	IPAddress    string         `gorm:"type:varchar(64)"`
	CreatedAt    time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain Event.
func (m *AuditLogModel) ToDomain() audit.Event {
	return audit.Event{
		ID:           m.ID,
		Action:       m.Action,
		UserID:       m.UserID,
		UserEmail:    m.UserEmail,
		UserRole:     m.UserRole,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		Details:      m.Details,
		IPAddress:    m.IPAddress,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Event.
func (m *AuditLogModel) FromDomain(e *audit.Event) {
	m.ID = e.ID
	m.Action = e.Action
	m.UserID = e.UserID
	m.UserEmail = e.UserEmail
	m.UserRole = e.UserRole
	m.ResourceType = e.ResourceType
	m.ResourceID = e.ResourceID
	m.Details = e.Details
	m.IPAddress = e.IPAddress
	m.CreatedAt = e.CreatedAt
}
