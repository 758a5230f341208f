package payment

import (
	"context"

	"github.com/househero/backend/internal/domain/shared"
)

// Filter defines filtering options for payment queries
type Filter struct {
	shared.Filter
	JobID      *int64
	Status     *Status
	CustomerID *int64
	ProviderID *int64
}

// Repository defines the interface for payment persistence
type Repository interface {
	// FindByID returns nil, nil when the payment does not exist
	FindByID(ctx context.Context, id int64) (*Payment, error)

	// FindInEscrowByJob returns the escrowed payment for a job, or nil, nil
	FindInEscrowByJob(ctx context.Context, jobID int64) (*Payment, error)

	// FindAll lists payments newest first
	FindAll(ctx context.Context, filter Filter) ([]Payment, error)

	// FindEscrowedForCompletedJobs lists escrowed payments whose job is already completed
	FindEscrowedForCompletedJobs(ctx context.Context, limit int) ([]Payment, error)

	// Create inserts a new payment and assigns its ID
	Create(ctx context.Context, p *Payment) error

	// Save writes the mutable fields of an existing payment
	Save(ctx context.Context, p *Payment) error
}
