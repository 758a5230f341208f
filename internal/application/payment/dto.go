package payment

import (
	"io"

	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/shopspring/decimal"
)

// ProofFile is an uploaded proof-of-payment document
type ProofFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitInput contains the fields of a payment submission form
type SubmitInput struct {
	RequestID     int64
	PaymentMethod string
	DepositAmount string
	Proof         *ProofFile
}

// SubmitResult is returned after a submission was recorded
type SubmitResult struct {
	Payment                 *payment.Payment
	RequestID               int64
	PaymentMethod           string
	CustomerPaymentReceived bool
	Status                  servicerequest.Status
	ProofKey                string
}

// ListInput contains the optional filters of a payment listing
type ListInput struct {
	JobID      *int64
	Status     string
	CustomerID *int64
	ProviderID *int64
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
