package payment

import (
	"strings"
	"time"

	"github.com/househero/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReleasedBySystem is the actor tag recorded when a payment is released automatically
const ReleasedBySystem = "system"

// Payment is the escrow record for a service request.
// JobID references ServiceRequest.RequestID.
type Payment struct {
	ID                int64           `json:"id"`
	JobID             int64           `json:"jobId"`
	CustomerID        *int64          `json:"customerId,omitempty"`
	ProviderID        *int64          `json:"providerId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	DepositAmount     decimal.Decimal `json:"depositAmount"`
	PaymentMethod     Method          `json:"paymentMethod"`
	Status            Status          `json:"status"`
	ProofOfPaymentURL string          `json:"proofOfPaymentUrl,omitempty"`
	CustomerPaidAt    *time.Time      `json:"customerPaidAt,omitempty"`
	ReleasedAt        *time.Time      `json:"releasedAt,omitempty"`
	ReleasedBy        string          `json:"releasedBy,omitempty"`
	RefundReason      string          `json:"refundReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// NewPayment creates a pending payment for a service request
func NewPayment(jobID int64, method Method, amount, deposit decimal.Decimal) (*Payment, error) {
	if jobID <= 0 {
		return nil, shared.NewDomainError("INVALID_JOB", "Payment must reference a service request")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be eft or credit_card")
	}
	if amount.IsNegative() || deposit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amounts cannot be negative")
	}
	return &Payment{
		JobID:         jobID,
		Amount:        amount,
		DepositAmount: deposit,
		PaymentMethod: method,
		Status:        StatusPending,
	}, nil
}

// IsInEscrow reports whether the payment currently holds funds in escrow
func (p *Payment) IsInEscrow() bool {
	return p.Status == StatusInEscrow
}

// Verify moves a pending payment into escrow. Admin only.
func (p *Payment) Verify(isAdmin bool, now time.Time) error {
	if err := ValidateTransition(p.Status, StatusInEscrow, isAdmin); err != nil {
		return err
	}
	p.Status = StatusInEscrow
	p.CustomerPaidAt = &now
	return nil
}

// Release pays out an escrowed payment. actor is the admin email or ReleasedBySystem.
func (p *Payment) Release(actor string, isAdmin bool, now time.Time) error {
	if err := ValidateTransition(p.Status, StatusReleased, isAdmin); err != nil {
		return err
	}
	if strings.TrimSpace(actor) == "" {
		return shared.NewDomainError("INVALID_ACTOR", "Release actor cannot be empty")
	}
	p.Status = StatusReleased
	p.ReleasedAt = &now
	p.ReleasedBy = actor
	return nil
}

// Refund returns the funds to the customer. Admin only.
func (p *Payment) Refund(actor, reason string, isAdmin bool, now time.Time) error {
	if err := ValidateTransition(p.Status, StatusRefunded, isAdmin); err != nil {
		return err
	}
	p.Status = StatusRefunded
	p.ReleasedAt = &now
	p.ReleasedBy = actor
	p.RefundReason = reason
	return nil
}
