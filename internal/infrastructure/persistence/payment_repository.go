package persistence

import (
	"context"
	"errors"

	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID. A missing payment is not an error.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id int64) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindInEscrowByJob finds the escrowed payment for a job
func (r *GormPaymentRepository) FindInEscrowByJob(ctx context.Context, jobID int64) (*payment.Payment, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND status = ?", jobID, payment.StatusInEscrow).
		Order("id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists payments matching the filter, newest first
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter payment.Filter) ([]payment.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}

	var rows []models.PaymentModel
	err := query.Order(orderClause(filter.Filter, PaymentSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	payments := make([]payment.Payment, 0, len(rows))
	for i := range rows {
		payments = append(payments, *rows[i].ToDomain())
	}
	return payments, nil
}

// FindEscrowedForCompletedJobs lists escrowed payments whose service request
// is already completed, oldest first
func (r *GormPaymentRepository) FindEscrowedForCompletedJobs(ctx context.Context, limit int) ([]payment.Payment, error) {
	if limit <= 0 {
		limit = shared.DefaultFilter().PageSize
	}

	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Joins("JOIN service_requests sr ON sr.request_id = payments.job_id").
		Where("payments.status = ? AND sr.status = ?", payment.StatusInEscrow, servicerequest.StatusCompleted).
		Order("payments.id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	payments := make([]payment.Payment, 0, len(rows))
	for i := range rows {
		payments = append(payments, *rows[i].ToDomain())
	}
	return payments, nil
}

// Create inserts a payment and copies the generated ID back
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	var model models.PaymentModel
	model.FromDomain(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

// Save writes every mutable column of an existing payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	var model models.PaymentModel
	model.FromDomain(p)

	result := r.db.WithContext(ctx).Model(&model).Select("*").Omit("created_at").Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	p.UpdatedAt = model.UpdatedAt
	return nil
}
