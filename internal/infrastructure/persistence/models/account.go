package models

import (
	"github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/domain/trust"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string        `gorm:"type:varchar(200)"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'customer'"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		Role:         identity.RoleOrDefault(string(m.Role)),
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.CreatedAt = u.CreatedAt
	m.Email = u.Email
	m.Name = u.Name
	m.Role = u.Role
	m.PasswordHash = u.PasswordHash
}

// ProviderProfileModel holds a provider's verification state.
type ProviderProfileModel struct {
	BaseModel
	ProviderID         int64                    `gorm:"not null;uniqueIndex"`
	VerificationStatus trust.VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (ProviderProfileModel) TableName() string {
	return "provider_profiles"
}

// ToDomain converts the persistence model to a domain ProviderProfile.
func (m *ProviderProfileModel) ToDomain() *identity.ProviderProfile {
	return &identity.ProviderProfile{
		ProviderID:         m.ProviderID,
		VerificationStatus: m.VerificationStatus,
	}
}

// ReviewModel is a customer's rating of a provider. Only the rating is read
// by this service.
type ReviewModel struct {
	BaseModel
	ProviderID int64  `gorm:"not null;index"`
	JobID      int64  `gorm:"index"`
	Rating     int    `gorm:"not null"`
	Comment    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}
