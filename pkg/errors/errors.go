// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Lookup errors
var (
	ErrAccountNotFound   = errors.New("bank account not found")
	ErrAccountAmbiguous  = errors.New("bank account criteria matched more than one account")
	ErrRecipientNotFound = errors.New("recipient not found")
)

// Routing errors
var (
	ErrRouteNotSupported      = errors.New("no transfer strategy for the given provider combination")
	ErrStrategyMisapplied     = errors.New("transfer strategy invoked with mismatched provider types")
	ErrCrossProfileConversion = errors.New("cannot convert currencies between different profiles")
)

// Conversion errors
var (
	ErrRateNotAvailable    = errors.New("exchange rate not available")
	ErrRateNotSupported    = errors.New("provider does not support exchange rate queries")
	ErrBalanceUnknown      = errors.New("account balance has not been fetched")
	ErrNoFreePaymentOption = errors.New("no free payment option available for same-currency quote")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
