package domain

import (
	"context"

	"github.com/shopspring/decimal"

	errs "banker/pkg/errors"
)

// Provider is one authenticated session with a banking provider. Adapters
// fetch and normalize the full account and recipient lists on construction
// and cache them for the life of the instance; a fresh adapter is required to
// observe provider-side changes.
type Provider interface {
	Kind() ProviderKind
	Accounts() []*BankAccount
	Recipients() []*Recipient
	FindAccount(query AccountQuery) (*BankAccount, error)
	FindRecipient(query RecipientQuery) (*Recipient, error)

	// ConversionRate returns the exchange rate from one currency to another.
	// The rate for a currency onto itself is always 1, without a provider
	// call. Providers without a rate-quoting capability return
	// errors.ErrRateNotSupported.
	ConversionRate(ctx context.Context, from, to Currency) (decimal.Decimal, error)
}

// Details carries the provider-specific fields a transfer needs later
// (profile id, recipient id, balance id) as a tagged payload. Each adapter
// supplies its own implementation; strategies type-assert the variant they
// require.
type Details interface {
	ProviderKind() ProviderKind
}

// BankAccount is the canonical projection of one provider account. Immutable
// after construction.
type BankAccount struct {
	ID          string          `json:"id"`
	Provider    Provider        `json:"-"`
	Number      string          `json:"number,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Currency    Currency        `json:"currency"`
	AccountType AccountType     `json:"account_type"`
	ProfileType ProfileType     `json:"profile_type"`
	Name        string          `json:"name,omitempty"`
	Details     Details         `json:"-"`
}

// BalanceIn converts the account balance into the given currency using the
// owning provider's conversion rate. Fails when the balance was never fetched
// or the provider cannot supply a rate for the pair.
func (a *BankAccount) BalanceIn(ctx context.Context, currency Currency) (decimal.Decimal, error) {
	if a.Balance == nil {
		return decimal.Zero, errs.ErrBalanceUnknown
	}

	rate, err := a.Provider.ConversionRate(ctx, a.Currency, currency)
	if err != nil {
		return decimal.Zero, err
	}

	return a.Balance.Mul(rate), nil
}

// Recipient is a payee registered with a provider. Recipients are looked up,
// never created, by this system.
type Recipient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	BankName string  `json:"bank_name,omitempty"`
	Number   string  `json:"number"`
	Details  Details `json:"-"`
}
