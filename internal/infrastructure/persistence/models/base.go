package models

import "time"

// BaseModel provides the serial primary key and timestamps shared by all tables
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All returns every model in dependency order, for AutoMigrate in tests and
// sqlite development databases.
func All() []any {
	return []any{
		&UserModel{},
		&ProviderProfileModel{},
		&ServiceRequestModel{},
		&PaymentModel{},
		&PricingItemModel{},
		&ReviewModel{},
		&TrustScoreModel{},
		&AuditLogModel{},
	}
}
