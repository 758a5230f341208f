package persistence

import (
	"context"
	"errors"

	"github.com/househero/backend/internal/domain/trust"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTrustScoreRepository implements trust.Repository using GORM
type GormTrustScoreRepository struct {
	db *gorm.DB
}

// NewGormTrustScoreRepository creates a new GormTrustScoreRepository
func NewGormTrustScoreRepository(db *gorm.DB) *GormTrustScoreRepository {
	return &GormTrustScoreRepository{db: db}
}

// FindByProviderID returns the stored score, or nil when none was computed yet
func (r *GormTrustScoreRepository) FindByProviderID(ctx context.Context, providerID int64) (*trust.Score, error) {
	var model models.TrustScoreModel
	if err := r.db.WithContext(ctx).First(&model, "provider_id = ?", providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts the score or overwrites the provider's existing row
func (r *GormTrustScoreRepository) Upsert(ctx context.Context, score *trust.Score) error {
	var model models.TrustScoreModel
	model.FromDomain(score)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}
