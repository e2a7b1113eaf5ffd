package transfer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"banker/internal/provider/wise"
	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
)

// WiseInternal handles transfers where both accounts live at wise. The
// protocol depends on whether the two accounts share a profile and a
// currency:
//
//   - same profile, same currency: one direct balance movement, no quote;
//   - same profile, different currency: balance quote, then quote-based
//     conversion;
//   - different profiles, same currency: balance quote, transfer between the
//     two recipients, then funding;
//   - different profiles, different currencies: rejected up front —
//     cross-profile conversion is unsupported.
type WiseInternal struct {
	logger logger.Logger
}

func NewWiseInternal(log logger.Logger) *WiseInternal {
	return &WiseInternal{logger: log}
}

func (s *WiseInternal) Handle(ctx context.Context, source, target *domain.BankAccount, amount decimal.Decimal, note string) (*Outcome, error) {
	client, ok := source.Provider.(*wise.Client)
	if !ok || target.Provider.Kind() != domain.ProviderWise {
		return nil, fmt.Errorf("%w: wise internal transfer requires wise accounts on both sides", errs.ErrStrategyMisapplied)
	}

	sourceDetails, ok := source.Details.(wise.AccountDetails)
	if !ok {
		return nil, fmt.Errorf("%w: source account %s carries no wise details", errs.ErrStrategyMisapplied, source.ID)
	}
	targetDetails, ok := target.Details.(wise.AccountDetails)
	if !ok {
		return nil, fmt.Errorf("%w: target account %s carries no wise details", errs.ErrStrategyMisapplied, target.ID)
	}

	sameProfile := sourceDetails.ProfileID == targetDetails.ProfileID
	sameCurrency := source.Currency == target.Currency

	s.logger.Info("Executing wise internal transfer", map[string]interface{}{
		"same_profile":  sameProfile,
		"same_currency": sameCurrency,
	})

	switch {
	case sameProfile && sameCurrency:
		return s.moveBalance(ctx, client, source, target, sourceDetails, targetDetails, amount, note)
	case sameProfile:
		return s.convertBalance(ctx, client, source, target, sourceDetails, amount, note)
	case sameCurrency:
		return s.transferBetweenProfiles(ctx, client, source, target, sourceDetails, targetDetails, amount, note)
	default:
		return nil, fmt.Errorf("%w: %s (%s) -> %s (%s)",
			errs.ErrCrossProfileConversion, source.ID, source.Currency, target.ID, target.Currency)
	}
}

func (s *WiseInternal) moveBalance(ctx context.Context, client *wise.Client, source, target *domain.BankAccount, sourceDetails, targetDetails wise.AccountDetails, amount decimal.Decimal, note string) (*Outcome, error) {
	movement, err := client.MoveBalance(ctx, sourceDetails.ProfileID, sourceDetails.BalanceID, targetDetails.BalanceID, amount, source.Currency, TransactionID(note))
	if err != nil {
		return nil, err
	}
	if movement.Rejected() {
		return rejected(), nil
	}

	return completed(&domain.Transaction{
		ID:             strconv.FormatInt(movement.ID, 10),
		SourceAmount:   amount,
		SourceCurrency: source.Currency,
		TargetAmount:   amount,
		TargetCurrency: target.Currency,
		FeeAmount:      decimal.Zero,
		FeeCurrency:    source.Currency,
	}), nil
}

func (s *WiseInternal) convertBalance(ctx context.Context, client *wise.Client, source, target *domain.BankAccount, sourceDetails wise.AccountDetails, amount decimal.Decimal, note string) (*Outcome, error) {
	quote, err := client.CreateBalanceQuote(ctx, sourceDetails.ProfileID, amount, source.Currency, target.Currency)
	if err != nil {
		return nil, err
	}

	movement, err := client.ConvertBalance(ctx, sourceDetails.ProfileID, quote.ID, TransactionID(note))
	if err != nil {
		return nil, err
	}
	if movement.Rejected() {
		return rejected(), nil
	}

	return completed(&domain.Transaction{
		ID:             strconv.FormatInt(movement.ID, 10),
		SourceAmount:   quote.SourceAmount,
		SourceCurrency: quote.SourceCurrency,
		TargetAmount:   quote.TargetAmount,
		TargetCurrency: quote.TargetCurrency,
		FeeAmount:      quote.Fee,
		FeeCurrency:    quote.FeeCurrency,
	}), nil
}

func (s *WiseInternal) transferBetweenProfiles(ctx context.Context, client *wise.Client, source, target *domain.BankAccount, sourceDetails, targetDetails wise.AccountDetails, amount decimal.Decimal, note string) (*Outcome, error) {
	if sourceDetails.RecipientID == 0 {
		return nil, fmt.Errorf("wise recipient id missing for source account %s", source.ID)
	}
	if targetDetails.RecipientID == 0 {
		return nil, fmt.Errorf("wise recipient id missing for target account %s", target.ID)
	}

	// The quote only fixes the source-side amount; no conversion happens on a
	// same-currency transfer.
	quote, err := client.CreateBalanceQuote(ctx, sourceDetails.ProfileID, amount, source.Currency, target.Currency)
	if err != nil {
		return nil, err
	}

	transferID, err := client.CreateTransfer(ctx, sourceDetails.RecipientID, targetDetails.RecipientID, quote.ID, TransactionID(note), note)
	if err != nil {
		return nil, err
	}

	status, err := client.FundTransfer(ctx, sourceDetails.ProfileID, transferID)
	if err != nil {
		return nil, err
	}
	if status == "REJECTED" {
		return rejected(), nil
	}

	return completed(&domain.Transaction{
		ID:             strconv.FormatInt(transferID, 10),
		SourceAmount:   quote.SourceAmount,
		SourceCurrency: quote.SourceCurrency,
		TargetAmount:   quote.TargetAmount,
		TargetCurrency: quote.TargetCurrency,
		FeeAmount:      quote.Fee,
		FeeCurrency:    quote.FeeCurrency,
	}), nil
}
