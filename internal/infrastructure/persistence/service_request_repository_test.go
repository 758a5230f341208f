package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormServiceRequestRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormServiceRequestRepository(db)
	ctx := context.Background()

	req := createTestRequest(t, db, func(r *servicerequest.ServiceRequest) {
		r.SelectedItems = append(r.SelectedItems, servicerequest.SelectedItem{
			Category: "Painting", Type: "Interior Wall", Quantity: 3, IsWhite: true,
		})
	})
	require.NotZero(t, req.RequestID)

	found, err := repo.FindByID(ctx, req.RequestID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "thandi@example.com", found.CustomerEmail)
	assert.Equal(t, req.SelectedItems, found.SelectedItems)
	assert.True(t, found.CustomerTotal.Equal(req.CustomerTotal))

	missing, err := repo.FindByID(ctx, 424242)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormServiceRequestRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormServiceRequestRepository(db)
	ctx := context.Background()

	req := createTestRequest(t, db, nil)
	require.NoError(t, db.Model(&models.ServiceRequestModel{}).
		Where("request_id = ?", req.RequestID).
		Update("audit_log", `[{"action":"login"}]`).Error)

	require.NoError(t, req.ConfirmCompletion(servicerequest.PartyCustomer))
	require.NoError(t, req.ConfirmCompletion(servicerequest.PartyProvider))
	req.Complete(time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, req))

	found, err := repo.FindByID(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, servicerequest.StatusCompleted, found.Status)
	assert.True(t, found.BothConfirmed())
	require.NotNil(t, found.CompletedAt)

	var row models.ServiceRequestModel
	require.NoError(t, db.First(&row, "request_id = ?", req.RequestID).Error)
	assert.Equal(t, `[{"action":"login"}]`, row.AuditLog, "Save must not clobber the audit trail")

	ghost := *req
	ghost.RequestID = 999
	assert.ErrorIs(t, repo.Save(ctx, &ghost), shared.ErrNotFound)
}

func TestGormServiceRequestRepository_Flags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormServiceRequestRepository(db)
	ctx := context.Background()

	req := createTestRequest(t, db, nil)

	require.NoError(t, repo.MarkProviderPaid(ctx, req.RequestID))
	require.NoError(t, repo.MarkCustomerPaid(ctx, req.RequestID))

	found, err := repo.FindByID(ctx, req.RequestID)
	require.NoError(t, err)
	assert.True(t, found.ProviderPaymentMade)
	assert.True(t, found.CustomerPaymentReceived)

	assert.ErrorIs(t, repo.MarkProviderPaid(ctx, 31337), shared.ErrNotFound)
}

func TestGormServiceRequestRepository_FindByProvider(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormServiceRequestRepository(db)
	ctx := context.Background()

	provider := int64(7)
	assign := func(status servicerequest.Status) func(*servicerequest.ServiceRequest) {
		return func(r *servicerequest.ServiceRequest) {
			r.AssignedProviderID = &provider
			r.Status = status
		}
	}
	createTestRequest(t, db, assign(servicerequest.StatusCompleted))
	createTestRequest(t, db, assign(servicerequest.StatusCancelled))
	createTestRequest(t, db, assign(servicerequest.StatusPending))
	createTestRequest(t, db, nil)

	jobs, err := repo.FindByProvider(ctx, provider, servicerequest.TrustStatuses)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, servicerequest.StatusCompleted, jobs[0].Status)
	assert.Equal(t, servicerequest.StatusCancelled, jobs[1].Status)

	all, err := repo.FindByProvider(ctx, provider, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
