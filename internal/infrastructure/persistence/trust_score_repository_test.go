package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/househero/backend/internal/domain/trust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTrustScoreRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTrustScoreRepository(db)
	ctx := context.Background()

	none, err := repo.FindByProviderID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, none)

	score := trust.ComputeScore(7, trust.Stats{})
	score.UpdatedAt = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &score))

	updated := trust.ComputeScore(7, trust.Stats{TotalJobs: 1, CompletedJobs: 1, OnTimeCompletions: 1})
	updated.UpdatedAt = score.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, &updated))

	found, err := repo.FindByProviderID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 1, found.TotalJobs)
	assert.InDelta(t, updated.TrustScore, found.TrustScore, 1e-9)

	var rows int64
	require.NoError(t, db.Table("trust_scores").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
