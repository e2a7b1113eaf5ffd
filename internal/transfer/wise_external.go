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

// WiseExternal handles transfers leaving wise for an account at any other
// provider: resolve the target account number to a wise recipient, quote
// against that recipient, register the transfer, fund it.
type WiseExternal struct {
	logger logger.Logger
}

func NewWiseExternal(log logger.Logger) *WiseExternal {
	return &WiseExternal{logger: log}
}

func (s *WiseExternal) Handle(ctx context.Context, source, target *domain.BankAccount, amount decimal.Decimal, note string) (*Outcome, error) {
	client, ok := source.Provider.(*wise.Client)
	if !ok {
		return nil, fmt.Errorf("%w: wise external transfer requires a wise source account", errs.ErrStrategyMisapplied)
	}
	if target.Provider.Kind() == domain.ProviderWise {
		return nil, fmt.Errorf("%w: wise external transfer cannot target a wise account", errs.ErrStrategyMisapplied)
	}

	sourceDetails, ok := source.Details.(wise.AccountDetails)
	if !ok {
		return nil, fmt.Errorf("%w: source account %s carries no wise details", errs.ErrStrategyMisapplied, source.ID)
	}

	if target.Number == "" {
		return nil, fmt.Errorf("%w: target account %s has no account number", errs.ErrRecipientNotFound, target.ID)
	}

	s.logger.Info("Executing wise external transfer", map[string]interface{}{
		"target_provider": string(target.Provider.Kind()),
	})

	recipient, err := client.FindRecipient(domain.RecipientQuery{Number: &target.Number})
	if err != nil {
		return nil, err
	}
	recipientDetails, ok := recipient.Details.(wise.RecipientDetails)
	if !ok {
		return nil, fmt.Errorf("wise recipient %s carries no wise details", recipient.ID)
	}

	quote, err := client.CreateBankQuote(ctx, sourceDetails.ProfileID, amount, source.Currency, target.Currency, recipientDetails.RecipientID)
	if err != nil {
		return nil, err
	}

	transferID, err := client.CreateTransfer(ctx, 0, recipientDetails.RecipientID, quote.ID, TransactionID(note), note)
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
