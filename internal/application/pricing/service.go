// Package pricing serves the service price catalogue through a read-through cache.
package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/househero/backend/internal/domain/pricing"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/cache"
	"github.com/househero/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "pricing:"
	keyCategories = keyPrefix + "categories"
	keyItems      = keyPrefix + "items:"
)

// ErrCategoryRequired is returned when items are requested without a category
var ErrCategoryRequired = shared.NewDomainError(shared.ErrInvalidInput.Code, "Category is required")

// Service reads the pricing catalogue. The database is the source of truth;
// cache failures are logged and fall through to it.
type Service struct {
	repo   pricing.Repository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a new pricing service. A nil cache disables caching.
func NewService(repo pricing.Repository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl, logger: logger}
}

// Categories returns the distinct service categories, sorted ascending
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if s.lookup(ctx, keyCategories, &categories) {
		return categories, nil
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	s.store(ctx, keyCategories, categories)
	return categories, nil
}

// ByCategory returns the items of one category ordered by customer price ascending
func (s *Service) ByCategory(ctx context.Context, category string) ([]pricing.Item, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrCategoryRequired
	}

	var items []pricing.Item
	if s.lookup(ctx, keyItems+category, &items) {
		return items, nil
	}

	items, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("load pricing for %s: %w", category, err)
	}
	if items == nil {
		items = []pricing.Item{}
	}
	logger.FromContextOr(ctx, s.logger).Debug("Pricing items loaded",
		zap.String("category", category), zap.Int("count", len(items)))
	s.store(ctx, keyItems+category, items)
	return items, nil
}

// QuoteLine is one priced line of a quote
type QuoteLine struct {
	servicerequest.SelectedItem
	ItemID        int64           `json:"itemId"`
	CustomerPrice decimal.Decimal `json:"customerPrice"`
	ProviderPrice decimal.Decimal `json:"providerPrice"`
}

// Quote totals a booking the way a service request stores them
type Quote struct {
	Lines         []QuoteLine     `json:"lines"`
	CustomerTotal decimal.Decimal `json:"customerTotal"`
	ProviderTotal decimal.Decimal `json:"providerTotal"`
	Commission    decimal.Decimal `json:"commission"`
}

// Quote prices the selected items against the catalogue. Unknown
// (category, type) pairs and non-positive quantities are rejected.
func (s *Service) Quote(ctx context.Context, selected []servicerequest.SelectedItem) (*Quote, error) {
	if len(selected) == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "At least one item must be selected")
	}

	byCategory := make(map[string]map[string]pricing.Item)
	q := &Quote{Lines: make([]QuoteLine, 0, len(selected))}
	for _, sel := range selected {
		if sel.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
				fmt.Sprintf("Quantity for %s must be positive", sel.Type))
		}
		catalogue, ok := byCategory[sel.Category]
		if !ok {
			items, err := s.ByCategory(ctx, sel.Category)
			if err != nil {
				return nil, err
			}
			catalogue = make(map[string]pricing.Item, len(items))
			for _, it := range items {
				catalogue[it.ServiceType] = it
			}
			byCategory[sel.Category] = catalogue
		}
		item, ok := catalogue[sel.Type]
		if !ok {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
				fmt.Sprintf("Unknown service %s / %s", sel.Category, sel.Type))
		}
		line := QuoteLine{
			SelectedItem:  sel,
			ItemID:        item.ID,
			CustomerPrice: item.CustomerPrice(sel.Quantity, sel.IsWhite),
			ProviderPrice: item.ProviderPrice(sel.Quantity, sel.IsWhite),
		}
		q.Lines = append(q.Lines, line)
		q.CustomerTotal = q.CustomerTotal.Add(line.CustomerPrice)
		q.ProviderTotal = q.ProviderTotal.Add(line.ProviderPrice)
	}
	q.Commission = q.CustomerTotal.Sub(q.ProviderTotal)
	return q, nil
}

// Seed inserts catalogue items whose (category, type) pair is missing and
// returns how many were created. The cache is cleared when anything changed.
func (s *Service) Seed(ctx context.Context, items []pricing.Item) (int, error) {
	created := 0
	for i := range items {
		item := items[i]
		exists, err := s.repo.ExistsByCategoryAndType(ctx, item.ServiceCategory, item.ServiceType)
		if err != nil {
			return created, fmt.Errorf("check %s / %s: %w", item.ServiceCategory, item.ServiceType, err)
		}
		if exists {
			continue
		}
		if item.CommissionPercentage.IsZero() {
			item.CommissionPercentage = pricing.DefaultCommissionPercentage
		}
		if err := s.repo.Create(ctx, &item); err != nil {
			return created, fmt.Errorf("create %s / %s: %w", item.ServiceCategory, item.ServiceType, err)
		}
		created++
	}
	if created > 0 {
		s.Invalidate(ctx)
	}
	return created, nil
}

// Invalidate drops every cached pricing entry
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, keyPrefix); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Failed to invalidate pricing cache", zap.Error(err))
	}
}

func (s *Service) lookup(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Pricing cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Pricing cache write failed", zap.String("key", key), zap.Error(err))
	}
}
