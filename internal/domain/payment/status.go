package payment

// Status represents the lifecycle state of a payment
type Status string

const (
	// StatusPending indicates the payment was submitted and awaits verification
	StatusPending Status = "pending"
	// StatusInEscrow indicates funds were verified and are held until the job completes
	StatusInEscrow Status = "in_escrow"
	// StatusReleased indicates funds were paid out to the provider
	StatusReleased Status = "released"
	// StatusRefunded indicates funds were returned to the customer
	StatusRefunded Status = "refunded"
)

// AllStatuses lists every payment status
var AllStatuses = []Status{StatusPending, StatusInEscrow, StatusReleased, StatusRefunded}

// IsValid checks if the status is a valid payment status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInEscrow, StatusReleased, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true when no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusReleased || s == StatusRefunded
}

// Method is the way a customer paid for a service request
type Method string

const (
	MethodEFT        Method = "eft"
	MethodCreditCard Method = "credit_card"
)

// IsValid checks if the method is supported
func (m Method) IsValid() bool {
	return m == MethodEFT || m == MethodCreditCard
}

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}
