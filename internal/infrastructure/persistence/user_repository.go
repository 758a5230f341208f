package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a user and copies the generated ID back
func (r *GormUserRepository) Create(ctx context.Context, u *identity.User) error {
	var model models.UserModel
	model.FromDomain(u)
	model.Email = strings.ToLower(strings.TrimSpace(model.Email))
	if model.Role == "" {
		model.Role = identity.RoleCustomer
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	u.ID = model.ID
	u.Email = model.Email
	u.Role = model.Role
	u.CreatedAt = model.CreatedAt
	return nil
}

// GormProviderProfileRepository implements identity.ProviderProfileRepository using GORM
type GormProviderProfileRepository struct {
	db *gorm.DB
}

// NewGormProviderProfileRepository creates a new GormProviderProfileRepository
func NewGormProviderProfileRepository(db *gorm.DB) *GormProviderProfileRepository {
	return &GormProviderProfileRepository{db: db}
}

// FindByProviderID finds the profile of a provider
func (r *GormProviderProfileRepository) FindByProviderID(ctx context.Context, providerID int64) (*identity.ProviderProfile, error) {
	var model models.ProviderProfileModel
	if err := r.db.WithContext(ctx).First(&model, "provider_id = ?", providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormReviewRepository implements trust.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// RatingsForProvider returns every rating left for the provider
func (r *GormReviewRepository) RatingsForProvider(ctx context.Context, providerID int64) ([]int, error) {
	ratings := make([]int, 0)
	err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("provider_id = ?", providerID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
