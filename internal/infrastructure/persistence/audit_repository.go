package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Create inserts an audit event
func (r *GormAuditRepository) Create(ctx context.Context, e *audit.Event) error {
	var model models.AuditLogModel
	model.FromDomain(e)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	e.ID = model.ID
	return nil
}

// FindAll lists audit events newest first
func (r *GormAuditRepository) FindAll(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != nil {
		query = query.Where("resource_id = ?", *filter.ResourceID)
	}

	var rows []models.AuditLogModel
	err := query.Order(orderClause(filter.Filter, AuditSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	events := make([]audit.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].ToDomain())
	}
	return events, nil
}

// AppendToRequestTrail appends the event to service_requests.audit_log, a
// JSON array kept on the request row
func (r *GormAuditRepository) AppendToRequestTrail(ctx context.Context, e *audit.Event) error {
	if e.ResourceType != audit.ResourceServiceRequest || e.ResourceID == nil {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.ServiceRequestModel
		err := tx.Select("request_id", "audit_log").First(&req, "request_id = ?", *e.ResourceID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		trail := make([]json.RawMessage, 0, 1)
		if req.AuditLog != "" {
			if err := json.Unmarshal([]byte(req.AuditLog), &trail); err != nil {
				return fmt.Errorf("decode audit trail of request %d: %w", req.RequestID, err)
			}
		}

		entry, err := json.Marshal(e.Trail())
		if err != nil {
			return err
		}
		trail = append(trail, entry)

		encoded, err := json.Marshal(trail)
		if err != nil {
			return err
		}
		return tx.Model(&models.ServiceRequestModel{}).
			Where("request_id = ?", req.RequestID).
			UpdateColumn("audit_log", string(encoded)).Error
	})
}
