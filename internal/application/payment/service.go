// Package payment coordinates the escrow lifecycle of payments and keeps the
// linked service request flags in step.
package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProofStorage stores proof-of-payment uploads
type ProofStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// Metrics receives payment transitions. Implemented by telemetry.PaymentMetrics.
type Metrics interface {
	RecordTransition(ctx context.Context, from, to payment.Status, automatic bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordTransition(context.Context, payment.Status, payment.Status, bool) {}

// Errors returned to handlers
var (
	ErrPaymentNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Payment not found")
	ErrRequestNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Service request not found")
	ErrMethodRequired  = shared.NewDomainError(shared.ErrInvalidInput.Code, "Payment method is required")
	ErrInvalidDeposit  = shared.NewDomainError(shared.ErrInvalidInput.Code, "Deposit amount must be a non-negative number")
)

// Service handles payment operations
type Service struct {
	payments payment.Repository
	requests servicerequest.Repository
	storage  ProofStorage
	audit    auditapp.Recorder
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures optional collaborators of Service
type Option func(*Service)

// WithMetrics records payment transitions
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService creates a new payment service
func NewService(
	payments payment.Repository,
	requests servicerequest.Repository,
	storage ProofStorage,
	recorder auditapp.Recorder,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		payments: payments,
		requests: requests,
		storage:  storage,
		audit:    recorder,
		metrics:  noopMetrics{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// AutoRelease releases an escrowed payment to the provider on behalf of the
// system. A missing payment, or one that is not in escrow, is a silent no-op.
//
// The payment update and the service request flag are two separate writes.
// If the second one fails, including a missing request, the error is
// returned and the payment stays released.
func (s *Service) AutoRelease(ctx context.Context, paymentID int64) error {
	log := s.log(ctx).With(zap.Int64("payment_id", paymentID))

	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		log.Error("Auto-release payment error", zap.Error(err))
		return fmt.Errorf("find payment %d: %w", paymentID, err)
	}
	if p == nil || !p.IsInEscrow() {
		return nil
	}

	from := p.Status
	if err := p.Release(payment.ReleasedBySystem, false, s.now().UTC()); err != nil {
		return nil
	}
	if err := s.payments.Save(ctx, p); err != nil {
		log.Error("Auto-release payment error", zap.Error(err))
		return fmt.Errorf("release payment %d: %w", paymentID, err)
	}
	s.metrics.RecordTransition(ctx, from, p.Status, true)

	if err := s.requests.MarkProviderPaid(ctx, p.JobID); err != nil {
		log.Error("Auto-release payment error", zap.Int64("job_id", p.JobID), zap.Error(err))
		return fmt.Errorf("mark provider paid for request %d: %w", p.JobID, err)
	}

	log.Info("Payment auto-released", zap.Int64("job_id", p.JobID))
	s.audit.Log(ctx, auditapp.SystemActor(), audit.ActionPaymentAutoReleased, audit.ResourcePayment, &p.ID,
		map[string]any{"jobId": p.JobID, "amount": p.Amount.String()})
	return nil
}

// AutoReleaseForJob releases the escrowed payment of a job, if there is one
func (s *Service) AutoReleaseForJob(ctx context.Context, jobID int64) error {
	p, err := s.payments.FindInEscrowByJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("find escrowed payment for request %d: %w", jobID, err)
	}
	if p == nil {
		return nil
	}
	return s.AutoRelease(ctx, p.ID)
}

// List returns payments matching the filters, newest first
func (s *Service) List(ctx context.Context, in ListInput) ([]payment.Payment, error) {
	filter := payment.Filter{
		Filter:     shared.Filter{Page: in.Page, PageSize: in.PageSize, OrderBy: in.OrderBy, OrderDir: in.OrderDir},
		JobID:      in.JobID,
		CustomerID: in.CustomerID,
		ProviderID: in.ProviderID,
	}
	if in.Status != "" {
		status := payment.Status(in.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid payment status: "+in.Status)
		}
		filter.Status = &status
	}
	return s.payments.FindAll(ctx, filter)
}

// Get returns one payment
func (s *Service) Get(ctx context.Context, id int64) (*payment.Payment, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// Verify confirms a pending payment and moves it into escrow
func (s *Service) Verify(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if err := p.Verify(actor.IsAdmin(), s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment %d: %w", id, err)
	}
	s.metrics.RecordTransition(ctx, from, p.Status, false)

	if err := s.requests.MarkCustomerPaid(ctx, p.JobID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("mark customer paid for request %d: %w", p.JobID, err)
	}

	s.audit.Log(ctx, actor, audit.ActionPaymentVerified, audit.ResourcePayment, &p.ID, map[string]any{
		"jobId":          p.JobID,
		"amount":         p.Amount.String(),
		"previousStatus": string(from),
		"newStatus":      string(p.Status),
	})
	return p, nil
}

// Release pays an escrowed payment out to the provider, recording the admin as releaser
func (s *Service) Release(ctx context.Context, actor auditapp.Actor, id int64) (*payment.Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if err := p.Release(actor.Email, actor.IsAdmin(), s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment %d: %w", id, err)
	}
	s.metrics.RecordTransition(ctx, from, p.Status, false)

	if err := s.requests.MarkProviderPaid(ctx, p.JobID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("mark provider paid for request %d: %w", p.JobID, err)
	}

	s.audit.Log(ctx, actor, audit.ActionPaymentReleased, audit.ResourcePayment, &p.ID, map[string]any{
		"jobId":  p.JobID,
		"amount": p.Amount.String(),
	})
	return p, nil
}

// Refund returns the funds to the customer and cancels the job. A non-empty
// reason is appended to the job's admin notes.
func (s *Service) Refund(ctx context.Context, actor auditapp.Actor, id int64, reason string) (*payment.Payment, error) {
	reason = SanitizeText(reason)

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if err := p.Refund(actor.Email, reason, actor.IsAdmin(), s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment %d: %w", id, err)
	}
	s.metrics.RecordTransition(ctx, from, p.Status, false)

	req, err := s.requests.FindByID(ctx, p.JobID)
	if err != nil {
		return nil, fmt.Errorf("find request %d: %w", p.JobID, err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	req.Cancel()
	if reason != "" {
		req.AppendAdminNote(servicerequest.NoteRefundReason, reason)
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("cancel request %d: %w", p.JobID, err)
	}

	logged := reason
	if logged == "" {
		logged = "No reason provided"
	}
	s.audit.Log(ctx, actor, audit.ActionPaymentRefunded, audit.ResourcePayment, &p.ID, map[string]any{
		"jobId":  p.JobID,
		"amount": p.Amount.String(),
		"reason": logged,
	})
	return p, nil
}

// Submit records a customer's payment for a service request. EFT proofs are
// uploaded to object storage and referenced from the admin notes; card
// payments are marked as received straight away. A pending payment row is
// created for admin verification.
func (s *Service) Submit(ctx context.Context, actor auditapp.Actor, in SubmitInput) (*SubmitResult, error) {
	method := payment.Method(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		return nil, ErrMethodRequired
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Payment method must be eft or credit_card")
	}
	deposit, err := parseAmount(strings.TrimSpace(in.DepositAmount))
	if err != nil || deposit.IsNegative() {
		return nil, ErrInvalidDeposit
	}

	req, err := s.requests.FindByID(ctx, in.RequestID)
	if err != nil {
		return nil, fmt.Errorf("find request %d: %w", in.RequestID, err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}

	var proofKey string
	if method == payment.MethodEFT && in.Proof != nil {
		proofKey = ProofKey(in.RequestID, s.now(), in.Proof.Filename)
		contentType := in.Proof.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.storage.Upload(ctx, proofKey, in.Proof.Body, in.Proof.Size, contentType); err != nil {
			s.log(ctx).Error("File upload error", zap.String("key", proofKey), zap.Error(err))
			return nil, fmt.Errorf("upload proof of payment: %w", err)
		}
	}

	req.PaymentMethod = string(method)
	req.CustomerPaymentReceived = method == payment.MethodCreditCard
	if proofKey != "" {
		req.AppendAdminNote(servicerequest.NoteEFTProof, proofKey)
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("update request %d: %w", in.RequestID, err)
	}

	p, err := payment.NewPayment(req.RequestID, method, req.CustomerTotal, deposit)
	if err != nil {
		return nil, err
	}
	p.ProviderID = req.AssignedProviderID
	p.CustomerID = actor.UserID
	p.ProofOfPaymentURL = proofKey
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment for request %d: %w", in.RequestID, err)
	}

	s.audit.Log(ctx, actor, audit.ActionPaymentSubmitted, audit.ResourceServiceRequest, &req.RequestID, map[string]any{
		"paymentId":     p.ID,
		"paymentMethod": string(method),
		"depositAmount": deposit.String(),
		"hasProof":      proofKey != "",
	})

	return &SubmitResult{
		Payment:                 p,
		RequestID:               req.RequestID,
		PaymentMethod:           req.PaymentMethod,
		CustomerPaymentReceived: req.CustomerPaymentReceived,
		Status:                  req.Status,
		ProofKey:                proofKey,
	}, nil
}

// ProofURL returns a short-lived download link for a payment's proof document
func (s *Service) ProofURL(ctx context.Context, id int64, expiresIn time.Duration) (string, time.Time, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if p.ProofOfPaymentURL == "" {
		return "", time.Time{}, shared.NewDomainError(shared.ErrNotFound.Code, "Payment has no proof of payment")
	}
	return s.storage.GenerateDownloadURL(ctx, p.ProofOfPaymentURL, expiresIn)
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ProofKey builds the object key of an uploaded proof:
// payments/<requestId>_<unix-ms>_<sanitized filename>
func ProofKey(requestID int64, at time.Time, filename string) string {
	return fmt.Sprintf("payments/%d_%d_%s", requestID, at.UnixMilli(), unsafeFilename.ReplaceAllString(filename, "_"))
}

// SanitizeText trims s and strips angle brackets
func SanitizeText(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(s))
}
