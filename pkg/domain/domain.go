// Package domain defines the canonical banking model shared by every provider
// adapter: currencies, account classifications, bank accounts, recipients, and
// completed transactions.
package domain

import (
	"fmt"
	"strings"
)

// Currency represents an ISO 4217 currency code.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// ParseCurrency maps a provider-reported currency code onto a modeled
// Currency. Codes this system does not model yield an error; callers decide
// whether that is fatal (adapters skip such balances).
func ParseCurrency(code string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case EUR:
		return EUR, nil
	case USD:
		return USD, nil
	}
	return "", fmt.Errorf("unknown currency code %q", code)
}

// ProfileType classifies the account-holder entity at a provider.
type ProfileType string

const (
	ProfilePersonal ProfileType = "personal"
	ProfileBusiness ProfileType = "business"
)

// ParseProfileType maps a provider-reported profile type onto a ProfileType.
func ParseProfileType(value string) (ProfileType, error) {
	switch ProfileType(strings.ToLower(strings.TrimSpace(value))) {
	case ProfilePersonal:
		return ProfilePersonal, nil
	case ProfileBusiness:
		return ProfileBusiness, nil
	}
	return "", fmt.Errorf("unknown profile type %q", value)
}

// AccountType classifies account liquidity and purpose.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSaving   AccountType = "saving"
)

// ProviderKind identifies a banking provider for strategy dispatch. Dispatch
// keys on this enumeration rather than on concrete adapter types.
type ProviderKind string

const (
	ProviderMercury ProviderKind = "mercury"
	ProviderWise    ProviderKind = "wise"
)
