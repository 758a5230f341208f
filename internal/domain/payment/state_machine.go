package payment

import (
	"fmt"

	"github.com/househero/backend/internal/domain/shared"
)

// Transition describes one edge of the payment state machine
type Transition struct {
	From          Status
	To            Status
	Allowed       bool
	RequiresAdmin bool
	Description   string
}

var transitions = []Transition{
	{
		From:          StatusPending,
		To:            StatusInEscrow,
		Allowed:       true,
		RequiresAdmin: true,
		Description:   "Admin verifies payment and moves to escrow",
	},
	{
		From:          StatusPending,
		To:            StatusRefunded,
		Allowed:       true,
		RequiresAdmin: true,
		Description:   "Payment rejected, refunded immediately",
	},
	{
		From:          StatusInEscrow,
		To:            StatusReleased,
		Allowed:       true,
		RequiresAdmin: false,
		Description:   "Payment released to provider (auto or manual)",
	},
	{
		From:          StatusInEscrow,
		To:            StatusRefunded,
		Allowed:       true,
		RequiresAdmin: true,
		Description:   "Dispute resolved or cancellation, refunded to customer",
	},
}

// ErrAdminRequired is returned when a non-admin attempts an admin-only transition
var ErrAdminRequired = shared.NewDomainError("ADMIN_REQUIRED", "This transition requires admin privileges")

// CanTransition looks up the edge from -> to. Unknown edges come back with
// Allowed=false and a description naming both states.
func CanTransition(from, to Status) Transition {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t
		}
	}
	return Transition{
		From:        from,
		To:          to,
		Allowed:     false,
		Description: fmt.Sprintf("Invalid transition from %s to %s", from, to),
	}
}

// ValidNextStates returns the states reachable from current
func ValidNextStates(current Status) []Status {
	next := make([]Status, 0, 2)
	for _, t := range transitions {
		if t.From == current {
			next = append(next, t.To)
		}
	}
	return next
}

// ValidateTransition checks that current -> next exists and that the actor may take it
func ValidateTransition(current, next Status, isAdmin bool) error {
	t := CanTransition(current, next)
	if !t.Allowed {
		return shared.NewDomainError(shared.ErrInvalidState.Code, t.Description)
	}
	if t.RequiresAdmin && !isAdmin {
		return ErrAdminRequired
	}
	return nil
}
