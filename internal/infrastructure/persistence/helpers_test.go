package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory sqlite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createTestRequest(t *testing.T, db *gorm.DB, mutate func(*servicerequest.ServiceRequest)) *servicerequest.ServiceRequest {
	t.Helper()

	req := &servicerequest.ServiceRequest{
		CustomerName:  "Thandi Mokoena",
		CustomerEmail: "thandi@example.com",
		CustomerPhone: "+27 82 555 0101",
		PreferredDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		PreferredTime: "09:00",
		SelectedItems: []servicerequest.SelectedItem{
			{Category: "Cleaning", Type: "Standard Clean", Quantity: 1},
		},
		CustomerTotal: decimal.NewFromInt(550),
		ProviderTotal: decimal.NewFromInt(495),
		Commission:    decimal.NewFromInt(55),
		Status:        servicerequest.StatusAssigned,
		Priority:      "normal",
		ProviderEmail: "sipho@example.com",
	}
	if mutate != nil {
		mutate(req)
	}
	require.NoError(t, NewGormServiceRequestRepository(db).Create(context.Background(), req))
	return req
}

func createTestPayment(t *testing.T, db *gorm.DB, jobID int64, status payment.Status) *payment.Payment {
	t.Helper()

	p, err := payment.NewPayment(jobID, payment.MethodEFT, decimal.NewFromInt(550), decimal.Zero)
	require.NoError(t, err)
	p.Status = status
	require.NoError(t, NewGormPaymentRepository(db).Create(context.Background(), p))
	return p
}

func int64Ptr(v int64) *int64 {
	return &v
}
