package persistence

import (
	"context"
	"errors"

	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceRequestRepository implements servicerequest.Repository using GORM
type GormServiceRequestRepository struct {
	db *gorm.DB
}

// NewGormServiceRequestRepository creates a new GormServiceRequestRepository
func NewGormServiceRequestRepository(db *gorm.DB) *GormServiceRequestRepository {
	return &GormServiceRequestRepository{db: db}
}

// FindByID finds a service request by its request ID
func (r *GormServiceRequestRepository) FindByID(ctx context.Context, requestID int64) (*servicerequest.ServiceRequest, error) {
	var model models.ServiceRequestModel
	if err := r.db.WithContext(ctx).First(&model, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProvider lists a provider's jobs in any of the given statuses
func (r *GormServiceRequestRepository) FindByProvider(ctx context.Context, providerID int64, statuses []servicerequest.Status) ([]servicerequest.ServiceRequest, error) {
	query := r.db.WithContext(ctx).Where("assigned_provider_id = ?", providerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var rows []models.ServiceRequestModel
	if err := query.Order("request_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	requests := make([]servicerequest.ServiceRequest, 0, len(rows))
	for i := range rows {
		requests = append(requests, *rows[i].ToDomain())
	}
	return requests, nil
}

// Create inserts a service request and copies the generated ID back
func (r *GormServiceRequestRepository) Create(ctx context.Context, req *servicerequest.ServiceRequest) error {
	var model models.ServiceRequestModel
	model.FromDomain(req)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	req.RequestID = model.RequestID
	req.CreatedAt = model.CreatedAt
	req.UpdatedAt = model.UpdatedAt
	return nil
}

// Save writes every mutable column of an existing request. The JSON audit
// trail is owned by the audit repository and left alone.
func (r *GormServiceRequestRepository) Save(ctx context.Context, req *servicerequest.ServiceRequest) error {
	var model models.ServiceRequestModel
	model.FromDomain(req)

	result := r.db.WithContext(ctx).Model(&model).
		Select("*").
		Omit("created_at", "audit_log").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	req.UpdatedAt = model.UpdatedAt
	return nil
}

// MarkProviderPaid flags that the provider has been paid for the job
func (r *GormServiceRequestRepository) MarkProviderPaid(ctx context.Context, requestID int64) error {
	return r.setFlag(ctx, requestID, "provider_payment_made")
}

// MarkCustomerPaid flags that the customer's payment has been received
func (r *GormServiceRequestRepository) MarkCustomerPaid(ctx context.Context, requestID int64) error {
	return r.setFlag(ctx, requestID, "customer_payment_received")
}

func (r *GormServiceRequestRepository) setFlag(ctx context.Context, requestID int64, column string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ServiceRequestModel{}).
		Where("request_id = ?", requestID).
		Update(column, true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
