package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultCommissionPercentage is applied to catalogue rows that do not set one
var DefaultCommissionPercentage = decimal.NewFromInt(10)

// Item is one priced service line in the catalogue
type Item struct {
	ID                     int64           `json:"id"`
	ServiceCategory        string          `json:"serviceCategory"`
	ServiceType            string          `json:"serviceType"`
	ItemDescription        string          `json:"itemDescription"`
	ProviderBasePrice      decimal.Decimal `json:"providerBasePrice"`
	CustomerDisplayPrice   decimal.Decimal `json:"customerDisplayPrice"`
	ColorSurchargeProvider decimal.Decimal `json:"colorSurchargeProvider"`
	ColorSurchargeCustomer decimal.Decimal `json:"colorSurchargeCustomer"`
	IsWhiteApplicable      bool            `json:"isWhiteApplicable"`
	CommissionPercentage   decimal.Decimal `json:"commissionPercentage"`
}

// CustomerPrice returns the price a customer pays for quantity units,
// adding the colour surcharge for white items where it applies.
func (i Item) CustomerPrice(quantity int, white bool) decimal.Decimal {
	unit := i.CustomerDisplayPrice
	if white && i.IsWhiteApplicable {
		unit = unit.Add(i.ColorSurchargeCustomer)
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// ProviderPrice returns what the provider earns for quantity units
func (i Item) ProviderPrice(quantity int, white bool) decimal.Decimal {
	unit := i.ProviderBasePrice
	if white && i.IsWhiteApplicable {
		unit = unit.Add(i.ColorSurchargeProvider)
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// Repository defines the interface for pricing catalogue persistence
type Repository interface {
	// Categories returns the distinct categories sorted ascending
	Categories(ctx context.Context) ([]string, error)

	// FindByCategory returns a category's items ordered by customer display price ascending
	FindByCategory(ctx context.Context, category string) ([]Item, error)

	// ExistsByCategoryAndType reports whether a (category, type) pair is already stored
	ExistsByCategoryAndType(ctx context.Context, category, serviceType string) (bool, error)

	// Create inserts a new item
	Create(ctx context.Context, item *Item) error

	// Count returns the number of catalogue rows
	Count(ctx context.Context) (int64, error)
}
