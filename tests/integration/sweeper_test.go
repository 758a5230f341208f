package integration

import (
	"context"
	"testing"
	"time"

	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/infrastructure/config"
	"github.com/househero/backend/internal/infrastructure/persistence"
	"github.com/househero/backend/internal/infrastructure/scheduler"
	"github.com/househero/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestReleaseSweeper_Integration releases escrow left behind on completed
// jobs and leaves every other payment alone.
func TestReleaseSweeper_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := NewTestServer(t)
	ctx := context.Background()
	paymentRepo := persistence.NewGormPaymentRepository(s.DB.DB)

	newPayment := func(jobStatus servicerequest.Status, paymentStatus payment.Status) (*servicerequest.ServiceRequest, *payment.Payment) {
		job := s.CreateRequest(t, "thandi@example.com", nil)
		if jobStatus != job.Status {
			job.Status = jobStatus
			require.NoError(t, s.Requests.Save(ctx, job))
		}
		p, err := payment.NewPayment(job.RequestID, payment.MethodEFT, decimal.NewFromInt(550), decimal.Zero)
		require.NoError(t, err)
		p.Status = paymentStatus
		require.NoError(t, paymentRepo.Create(ctx, p))
		return job, p
	}

	stuckJob, stuck := newPayment(servicerequest.StatusCompleted, payment.StatusInEscrow)
	_, open := newPayment(servicerequest.StatusInProgress, payment.StatusInEscrow)
	_, pending := newPayment(servicerequest.StatusCompleted, payment.StatusPending)

	backlog, err := paymentRepo.FindEscrowedForCompletedJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, backlog, 1)
	assert.Equal(t, stuck.ID, backlog[0].ID)

	sweeper, err := scheduler.NewReleaseSweeper(config.SchedulerConfig{
		Interval:          20 * time.Millisecond,
		BatchSize:         10,
		MaxConcurrentJobs: 2,
		JobTimeout:        5 * time.Second,
	}, paymentRepo, s.Payments, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, sweeper.Start(ctx))
	testutil.RequireEventually(t, func() bool {
		p, err := paymentRepo.FindByID(ctx, stuck.ID)
		return err == nil && p != nil && p.Status == payment.StatusReleased
	}, 10*time.Second, 50*time.Millisecond, "stuck escrow was not released")

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, sweeper.Stop(stopCtx))

	job, err := s.Requests.FindByID(ctx, stuckJob.RequestID)
	require.NoError(t, err)
	assert.True(t, job.ProviderPaymentMade)

	for _, id := range []int64{open.ID, pending.ID} {
		p, err := paymentRepo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.NotEqual(t, payment.StatusReleased, p.Status)
	}
}
