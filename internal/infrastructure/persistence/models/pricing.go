package models

import (
	"github.com/househero/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// PricingItemModel is the persistence model for a catalogue row.
type PricingItemModel struct {
	BaseModel
	ServiceCategory        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_pricing_category_type,priority:1"`
	ServiceType            string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_pricing_category_type,priority:2"`
	ItemDescription        string          `gorm:"type:text"`
	ProviderBasePrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerDisplayPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ColorSurchargeProvider decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ColorSurchargeCustomer decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsWhiteApplicable      bool            `gorm:"not null;default:false"`
	CommissionPercentage   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:10"`
}

// TableName returns the table name for GORM
func (PricingItemModel) TableName() string {
	return "service_pricing"
}

// ToDomain converts the persistence model to a domain pricing Item.
func (m *PricingItemModel) ToDomain() pricing.Item {
	return pricing.Item{
		ID:                     m.ID,
		ServiceCategory:        m.ServiceCategory,
		ServiceType:            m.ServiceType,
		ItemDescription:        m.ItemDescription,
		ProviderBasePrice:      m.ProviderBasePrice,
		CustomerDisplayPrice:   m.CustomerDisplayPrice,
		ColorSurchargeProvider: m.ColorSurchargeProvider,
		ColorSurchargeCustomer: m.ColorSurchargeCustomer,
		IsWhiteApplicable:      m.IsWhiteApplicable,
		CommissionPercentage:   m.CommissionPercentage,
	}
}

// FromDomain populates the persistence model from a domain pricing Item.
func (m *PricingItemModel) FromDomain(i *pricing.Item) {
	m.ID = i.ID
	m.ServiceCategory = i.ServiceCategory
	m.ServiceType = i.ServiceType
	m.ItemDescription = i.ItemDescription
	m.ProviderBasePrice = i.ProviderBasePrice
	m.CustomerDisplayPrice = i.CustomerDisplayPrice
	m.ColorSurchargeProvider = i.ColorSurchargeProvider
	m.ColorSurchargeCustomer = i.ColorSurchargeCustomer
	m.IsWhiteApplicable = i.IsWhiteApplicable
	m.CommissionPercentage = i.CommissionPercentage
	if m.CommissionPercentage.IsZero() {
		m.CommissionPercentage = pricing.DefaultCommissionPercentage
	}
}
