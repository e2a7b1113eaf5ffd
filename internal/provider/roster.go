// Package provider holds the behaviour shared by every banking provider
// adapter: the cached account/recipient roster and the per-instance
// conversion-rate memo.
package provider

import (
	"fmt"

	"banker/pkg/domain"
	errs "banker/pkg/errors"
)

// Roster caches the normalized account and recipient lists an adapter fetched
// at construction time. Adapters embed it; the slices are set once and never
// mutated afterwards.
type Roster struct {
	accounts   []*domain.BankAccount
	recipients []*domain.Recipient
}

func (r *Roster) SetAccounts(accounts []*domain.BankAccount) {
	r.accounts = accounts
}

func (r *Roster) SetRecipients(recipients []*domain.Recipient) {
	r.recipients = recipients
}

func (r *Roster) Accounts() []*domain.BankAccount {
	return r.accounts
}

func (r *Roster) Recipients() []*domain.Recipient {
	return r.recipients
}

// FindAccount returns the unique account matching the query. Zero matches
// yield ErrAccountNotFound, more than one ErrAccountAmbiguous.
func (r *Roster) FindAccount(query domain.AccountQuery) (*domain.BankAccount, error) {
	var found *domain.BankAccount

	for _, account := range r.accounts {
		if !query.Matches(account) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %s", errs.ErrAccountAmbiguous, query)
		}
		found = account
	}

	if found == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrAccountNotFound, query)
	}

	return found, nil
}

// FindRecipient returns the first recipient matching the query, or
// ErrRecipientNotFound.
func (r *Roster) FindRecipient(query domain.RecipientQuery) (*domain.Recipient, error) {
	for _, recipient := range r.recipients {
		if query.Matches(recipient) {
			return recipient, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrRecipientNotFound, query)
}
