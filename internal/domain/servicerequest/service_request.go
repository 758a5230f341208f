package servicerequest

import (
	"strings"
	"time"

	"github.com/househero/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a service request (a "job")
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CountsTowardTrust reports whether jobs in this status feed the provider trust score
func (s Status) CountsTowardTrust() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusInProgress, StatusAssigned:
		return true
	}
	return false
}

// TrustStatuses lists the statuses counted by trust score computation
var TrustStatuses = []Status{StatusCompleted, StatusCancelled, StatusInProgress, StatusAssigned}

// Party identifies which side of a job is acting
type Party string

const (
	PartyCustomer Party = "customer"
	PartyProvider Party = "provider"
)

// Admin note labels appended to AdminNotes
const (
	NoteEFTProof     = "EFT Payment Proof"
	NoteRefundReason = "Refund Reason"
)

// SelectedItem is one priced line a customer picked while booking
type SelectedItem struct {
	Category string `json:"category"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	IsWhite  bool   `json:"is_white"`
}

// ServiceRequest is a booked job
type ServiceRequest struct {
	RequestID       int64          `json:"requestId"`
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	CustomerPhone   string         `json:"customerPhone"`
	CustomerAddress string         `json:"customerAddress"`
	PreferredDate   time.Time      `json:"preferredDate"`
	PreferredTime   string         `json:"preferredTime"`
	SelectedItems   []SelectedItem `json:"selectedItems"`

	CustomerTotal decimal.Decimal `json:"customerTotal"`
	ProviderTotal decimal.Decimal `json:"providerTotal"`
	Commission    decimal.Decimal `json:"commission"`

	Status             Status `json:"status"`
	Priority           string `json:"priority"`
	AssignedProviderID *int64 `json:"assignedProviderId,omitempty"`
	ProviderEmail      string `json:"providerEmail,omitempty"`

	PaymentMethod           string `json:"paymentMethod,omitempty"`
	CustomerPaymentReceived bool   `json:"customerPaymentReceived"`
	ProviderPaymentMade     bool   `json:"providerPaymentMade"`
	CommissionCollected     bool   `json:"commissionCollected"`

	CustomerConfirmedCompletion bool `json:"customerConfirmedCompletion"`
	ProviderConfirmedCompletion bool `json:"providerConfirmedCompletion"`

	AdminNotes  string     `json:"adminNotes,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ErrAlreadyConfirmed is returned when a party confirms completion twice
var ErrAlreadyConfirmed = shared.NewDomainError("ALREADY_CONFIRMED", "You have already confirmed completion for this job")

// ErrNotParticipant is returned when the caller is neither the customer nor the provider
var ErrNotParticipant = shared.NewDomainError(shared.ErrForbidden.Code, "Unauthorized: You can only confirm your own jobs")

// PartyFor resolves which side of the job an email belongs to. The customer
// match wins when both emails are the same.
func (r *ServiceRequest) PartyFor(email string) (Party, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrNotParticipant
	}
	if strings.EqualFold(r.CustomerEmail, email) {
		return PartyCustomer, nil
	}
	if r.ProviderEmail != "" && strings.EqualFold(r.ProviderEmail, email) {
		return PartyProvider, nil
	}
	return "", ErrNotParticipant
}

// ConfirmCompletion records one party's confirmation
func (r *ServiceRequest) ConfirmCompletion(party Party) error {
	switch party {
	case PartyCustomer:
		if r.CustomerConfirmedCompletion {
			return ErrAlreadyConfirmed
		}
		r.CustomerConfirmedCompletion = true
	case PartyProvider:
		if r.ProviderConfirmedCompletion {
			return ErrAlreadyConfirmed
		}
		r.ProviderConfirmedCompletion = true
	default:
		return ErrNotParticipant
	}
	return nil
}

// BothConfirmed reports whether customer and provider have both confirmed
func (r *ServiceRequest) BothConfirmed() bool {
	return r.CustomerConfirmedCompletion && r.ProviderConfirmedCompletion
}

// OneConfirmed reports whether at least one party confirmed; rating opens at that point
func (r *ServiceRequest) OneConfirmed() bool {
	return r.CustomerConfirmedCompletion || r.ProviderConfirmedCompletion
}

// Complete marks the job completed. Returns false when it already was.
func (r *ServiceRequest) Complete(now time.Time) bool {
	if r.Status == StatusCompleted {
		return false
	}
	r.Status = StatusCompleted
	r.CompletedAt = &now
	return true
}

// Cancel marks the job cancelled
func (r *ServiceRequest) Cancel() {
	r.Status = StatusCancelled
}

// AppendAdminNote adds a "[label]: text" line to the admin notes
func (r *ServiceRequest) AppendAdminNote(label, text string) {
	line := "[" + label + "]: " + text
	if r.AdminNotes == "" {
		r.AdminNotes = line
		return
	}
	r.AdminNotes = r.AdminNotes + "\n" + line
}

// CompletedOnTime reports whether the job finished on or before its preferred date
func (r *ServiceRequest) CompletedOnTime() bool {
	if r.Status != StatusCompleted || r.CompletedAt == nil {
		return false
	}
	return !r.CompletedAt.After(r.PreferredDate)
}
