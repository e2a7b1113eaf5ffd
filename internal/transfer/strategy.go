// Package transfer executes inter-account money movements. Each strategy
// encodes the exact multi-step protocol one (source-provider,
// target-provider) class requires; the router selects the strategy from the
// runtime provider kinds of the two accounts.
package transfer

import (
	"context"

	"github.com/shopspring/decimal"

	"banker/pkg/domain"
)

// Strategy drives one provider-specific transfer protocol. Handle may only be
// invoked with accounts whose providers match the strategy's declared
// applicability; strategies verify this first and fail fast before issuing
// any provider call.
type Strategy interface {
	Handle(ctx context.Context, source, target *domain.BankAccount, amount decimal.Decimal, note string) (*Outcome, error)
}

// OutcomeState distinguishes a completed movement from a provider-side
// rejection.
type OutcomeState string

const (
	OutcomeCompleted OutcomeState = "completed"
	OutcomeRejected  OutcomeState = "rejected"
)

// Outcome is the result of a transfer protocol. A rejection means the
// provider processed the request and declined it without a transport error;
// it is a valid non-error result callers must handle explicitly.
type Outcome struct {
	State       OutcomeState        `json:"state"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

func (o *Outcome) Rejected() bool {
	return o.State == OutcomeRejected
}

func completed(tx *domain.Transaction) *Outcome {
	return &Outcome{State: OutcomeCompleted, Transaction: tx}
}

func rejected() *Outcome {
	return &Outcome{State: OutcomeRejected}
}
