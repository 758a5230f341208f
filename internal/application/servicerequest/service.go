// Package servicerequest handles the job lifecycle steps customers and
// providers trigger themselves.
package servicerequest

import (
	"context"
	"fmt"
	"time"

	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrRequestNotFound is returned for an unknown request id
var ErrRequestNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Service request not found")

// PaymentReleaser releases the escrowed payment of a job
type PaymentReleaser interface {
	AutoReleaseForJob(ctx context.Context, jobID int64) error
}

// TrustUpdater refreshes the trust score of a job's provider
type TrustUpdater interface {
	OnJobCompleted(ctx context.Context, requestID int64) error
}

// ConfirmResult is the outcome of a completion confirmation
type ConfirmResult struct {
	ConfirmedBy   servicerequest.Party
	BothConfirmed bool
	OneConfirmed  bool
	Status        servicerequest.Status
	CanRate       bool
}

// Service handles service request operations
type Service struct {
	requests servicerequest.Repository
	payments PaymentReleaser
	trust    TrustUpdater
	audit    auditapp.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new service request service
func NewService(
	requests servicerequest.Repository,
	payments PaymentReleaser,
	trust TrustUpdater,
	recorder auditapp.Recorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		requests: requests,
		payments: payments,
		trust:    trust,
		audit:    recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns one request
func (s *Service) Get(ctx context.Context, requestID int64) (*servicerequest.ServiceRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// ConfirmCompletion records the caller's confirmation that the job is done.
// Once both sides confirmed the job is completed, its escrowed payment is
// released and the provider's trust score refreshed. Failures of those two
// follow-ups are logged only.
func (s *Service) ConfirmCompletion(ctx context.Context, actor auditapp.Actor, requestID int64) (*ConfirmResult, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	party, err := req.PartyFor(actor.Email)
	if err != nil {
		return nil, err
	}
	if err := req.ConfirmCompletion(party); err != nil {
		return nil, err
	}

	both := req.BothConfirmed()
	completed := both && req.Complete(s.now().UTC())

	if err := s.requests.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("save request %d: %w", requestID, err)
	}

	if completed {
		s.afterCompletion(ctx, req)
	}

	result := &ConfirmResult{
		ConfirmedBy:   party,
		BothConfirmed: both,
		OneConfirmed:  req.OneConfirmed(),
		Status:        req.Status,
		CanRate:       req.OneConfirmed(),
	}

	s.audit.Log(ctx, actor, audit.ActionCompletionConfirmed, audit.ResourceServiceRequest, &req.RequestID, map[string]any{
		"confirmedBy":   string(party),
		"bothConfirmed": both,
		"status":        string(req.Status),
	})
	return result, nil
}

func (s *Service) afterCompletion(ctx context.Context, req *servicerequest.ServiceRequest) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.Int64("request_id", req.RequestID))

	if err := s.payments.AutoReleaseForJob(ctx, req.RequestID); err != nil {
		log.Error("Failed to auto-release payment on completion", zap.Error(err))
	}
	if req.AssignedProviderID != nil {
		if err := s.trust.OnJobCompleted(ctx, req.RequestID); err != nil {
			log.Error("Failed to update trust score on completion", zap.Error(err))
		}
	}
}
