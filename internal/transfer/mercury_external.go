package transfer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"banker/internal/provider/mercury"
	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
)

// MercuryExternal handles transfers leaving mercury: resolve the target
// account number to a mercury recipient, then submit a single payment
// initiation with a derived idempotency key. Mercury has no inbound-transfer
// capability, so mercury-to-mercury is refused.
type MercuryExternal struct {
	logger logger.Logger
}

func NewMercuryExternal(log logger.Logger) *MercuryExternal {
	return &MercuryExternal{logger: log}
}

func (s *MercuryExternal) Handle(ctx context.Context, source, target *domain.BankAccount, amount decimal.Decimal, note string) (*Outcome, error) {
	client, ok := source.Provider.(*mercury.Client)
	if !ok {
		return nil, fmt.Errorf("%w: mercury external transfer requires a mercury source account", errs.ErrStrategyMisapplied)
	}
	if target.Provider.Kind() == domain.ProviderMercury {
		return nil, fmt.Errorf("%w: %s->%s", errs.ErrRouteNotSupported, domain.ProviderMercury, domain.ProviderMercury)
	}

	if target.Number == "" {
		return nil, fmt.Errorf("%w: target account %s has no account number", errs.ErrRecipientNotFound, target.ID)
	}

	s.logger.Info("Executing mercury external transfer", map[string]interface{}{
		"target_provider": string(target.Provider.Kind()),
	})

	recipient, err := client.FindRecipient(domain.RecipientQuery{Number: &target.Number})
	if err != nil {
		return nil, err
	}

	transactionID := TransactionID(note)
	s.logger.Debug("Derived transaction id", map[string]interface{}{"transaction_id": transactionID})

	payment, err := client.CreatePayment(ctx, source.ID, recipient.ID, amount, transactionID, note)
	if err != nil {
		return nil, err
	}
	if payment.Rejected() {
		return rejected(), nil
	}

	return completed(&domain.Transaction{
		ID:             payment.ID,
		SourceAmount:   amount,
		SourceCurrency: source.Currency,
		TargetAmount:   amount,
		TargetCurrency: source.Currency,
		FeeAmount:      decimal.Zero,
		FeeCurrency:    source.Currency,
	}), nil
}
