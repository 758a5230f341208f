// Package seed loads the default price list shipped with the binary.
package seed

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/househero/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed pricing.yaml
var defaultPricing string

type priceList struct {
	CommissionPercentage float64    `yaml:"commission_percentage"`
	Categories           []category `yaml:"categories"`
}

type category struct {
	Name  string      `yaml:"name"`
	Items []priceLine `yaml:"items"`
}

type priceLine struct {
	Type                    string  `yaml:"type"`
	Description             string  `yaml:"description"`
	ProviderPrice           float64 `yaml:"provider_price"`
	CustomerPrice           float64 `yaml:"customer_price"`
	ColourSurchargeProvider float64 `yaml:"colour_surcharge_provider"`
	ColourSurchargeCustomer float64 `yaml:"colour_surcharge_customer"`
	WhiteApplicable         bool    `yaml:"white_applicable"`
}

// DefaultPricing returns the embedded price list
func DefaultPricing() ([]pricing.Item, error) {
	return ParsePricing(strings.NewReader(defaultPricing))
}

// ParsePricing decodes a YAML price list. The description defaults to the
// service type and the commission to the list-wide value.
func ParsePricing(r io.Reader) ([]pricing.Item, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var list priceList
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("decode price list: %w", err)
	}

	commission := pricing.DefaultCommissionPercentage
	if list.CommissionPercentage > 0 {
		commission = money(list.CommissionPercentage)
	}

	seen := make(map[string]bool)
	var items []pricing.Item
	for _, c := range list.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("price list has a category without a name")
		}
		for _, line := range c.Items {
			if strings.TrimSpace(line.Type) == "" {
				return nil, fmt.Errorf("category %q has an item without a type", c.Name)
			}
			key := c.Name + "\x00" + line.Type
			if seen[key] {
				return nil, fmt.Errorf("duplicate price for %s / %s", c.Name, line.Type)
			}
			seen[key] = true
			if line.CustomerPrice < line.ProviderPrice {
				return nil, fmt.Errorf("%s / %s: customer price is below provider price", c.Name, line.Type)
			}

			desc := line.Description
			if desc == "" {
				desc = line.Type
			}
			items = append(items, pricing.Item{
				ServiceCategory:        c.Name,
				ServiceType:            line.Type,
				ItemDescription:        desc,
				ProviderBasePrice:      money(line.ProviderPrice),
				CustomerDisplayPrice:   money(line.CustomerPrice),
				ColorSurchargeProvider: money(line.ColourSurchargeProvider),
				ColorSurchargeCustomer: money(line.ColourSurchargeCustomer),
				IsWhiteApplicable:      line.WhiteApplicable,
				CommissionPercentage:   commission,
			})
		}
	}
	return items, nil
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
