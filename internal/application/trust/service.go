package trust

import (
	"context"
	"fmt"
	"time"

	"github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/domain/trust"
	"go.uber.org/zap"
)

// ErrInvalidProvider is returned for a non-positive provider id
var ErrInvalidProvider = shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid provider ID")

// Service computes and stores provider trust scores
type Service struct {
	scores   trust.Repository
	reviews  trust.ReviewRepository
	requests servicerequest.Repository
	profiles identity.ProviderProfileRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new trust score service
func NewService(
	scores trust.Repository,
	reviews trust.ReviewRepository,
	requests servicerequest.Repository,
	profiles identity.ProviderProfileRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		scores:   scores,
		reviews:  reviews,
		requests: requests,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// Compute gathers the provider's job history, ratings and verification state
// and derives the score without storing it
func (s *Service) Compute(ctx context.Context, providerID int64) (trust.Score, error) {
	jobs, err := s.requests.FindByProvider(ctx, providerID, servicerequest.TrustStatuses)
	if err != nil {
		return trust.Score{}, fmt.Errorf("load jobs for provider %d: %w", providerID, err)
	}
	ratings, err := s.reviews.RatingsForProvider(ctx, providerID)
	if err != nil {
		return trust.Score{}, fmt.Errorf("load ratings for provider %d: %w", providerID, err)
	}
	profile, err := s.profiles.FindByProviderID(ctx, providerID)
	if err != nil {
		return trust.Score{}, fmt.Errorf("load profile for provider %d: %w", providerID, err)
	}

	stats := trust.Stats{TotalJobs: len(jobs), Ratings: ratings}
	for i := range jobs {
		switch jobs[i].Status {
		case servicerequest.StatusCompleted:
			stats.CompletedJobs++
			if jobs[i].CompletedOnTime() {
				stats.OnTimeCompletions++
			}
		case servicerequest.StatusCancelled:
			stats.CancelledJobs++
		}
	}
	if profile != nil {
		stats.VerificationStatus = profile.VerificationStatus
	}

	score := trust.ComputeScore(providerID, stats)
	score.UpdatedAt = s.now().UTC()
	return score, nil
}

// Refresh recomputes and stores the provider's score
func (s *Service) Refresh(ctx context.Context, providerID int64) (*trust.Score, error) {
	if providerID <= 0 {
		return nil, ErrInvalidProvider
	}
	score, err := s.Compute(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if err := s.scores.Upsert(ctx, &score); err != nil {
		return nil, fmt.Errorf("store trust score for provider %d: %w", providerID, err)
	}
	s.logger.Debug("Trust score updated",
		zap.Int64("provider_id", providerID),
		zap.Float64("trust_score", score.TrustScore),
		zap.Int("total_jobs", score.TotalJobs))
	return &score, nil
}

// Get returns the stored score, computing it first when none exists
func (s *Service) Get(ctx context.Context, providerID int64) (*trust.Score, error) {
	if providerID <= 0 {
		return nil, ErrInvalidProvider
	}
	score, err := s.scores.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if score != nil {
		return score, nil
	}
	return s.Refresh(ctx, providerID)
}

// OnJobCompleted refreshes the score of the provider assigned to requestID.
// Jobs without a provider are ignored.
func (s *Service) OnJobCompleted(ctx context.Context, requestID int64) error {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("find request %d: %w", requestID, err)
	}
	if req == nil || req.AssignedProviderID == nil {
		return nil
	}
	_, err = s.Refresh(ctx, *req.AssignedProviderID)
	return err
}
