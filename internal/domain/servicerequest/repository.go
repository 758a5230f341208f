package servicerequest

import "context"

// Repository defines the interface for service request persistence
type Repository interface {
	// FindByID returns nil, nil when the request does not exist
	FindByID(ctx context.Context, requestID int64) (*ServiceRequest, error)

	// FindByProvider lists the provider's jobs in any of the given statuses
	FindByProvider(ctx context.Context, providerID int64, statuses []Status) ([]ServiceRequest, error)

	// Create inserts a new request and assigns its ID
	Create(ctx context.Context, r *ServiceRequest) error

	// Save writes the mutable fields of an existing request
	Save(ctx context.Context, r *ServiceRequest) error

	// MarkProviderPaid sets providerPaymentMade on the request
	MarkProviderPaid(ctx context.Context, requestID int64) error

	// MarkCustomerPaid sets customerPaymentReceived on the request
	MarkCustomerPaid(ctx context.Context, requestID int64) error
}
