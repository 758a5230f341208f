package persistence

import (
	"context"

	"github.com/househero/backend/internal/domain/pricing"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPricingRepository implements pricing.Repository using GORM
type GormPricingRepository struct {
	db *gorm.DB
}

// NewGormPricingRepository creates a new GormPricingRepository
func NewGormPricingRepository(db *gorm.DB) *GormPricingRepository {
	return &GormPricingRepository{db: db}
}

// Categories returns the distinct service categories in ascending order
func (r *GormPricingRepository) Categories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&models.PricingItemModel{}).
		Distinct("service_category").
		Order("service_category ASC").
		Pluck("service_category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByCategory returns a category's items, cheapest first
func (r *GormPricingRepository) FindByCategory(ctx context.Context, category string) ([]pricing.Item, error) {
	var rows []models.PricingItemModel
	err := r.db.WithContext(ctx).
		Where("service_category = ?", category).
		Order("customer_display_price ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]pricing.Item, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}
	return items, nil
}

// ExistsByCategoryAndType reports whether a (category, type) row exists
func (r *GormPricingRepository) ExistsByCategoryAndType(ctx context.Context, category, serviceType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PricingItemModel{}).
		Where("service_category = ? AND service_type = ?", category, serviceType).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a catalogue row and copies the generated ID back
func (r *GormPricingRepository) Create(ctx context.Context, item *pricing.Item) error {
	var model models.PricingItemModel
	model.FromDomain(item)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	item.ID = model.ID
	item.CommissionPercentage = model.CommissionPercentage
	return nil
}

// Count returns the number of catalogue rows
func (r *GormPricingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PricingItemModel{}).Count(&count).Error
	return count, err
}
