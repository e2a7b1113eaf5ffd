package domain

import "strings"

// AccountQuery selects bank accounts by field equality. Nil fields match any
// value; callers must supply criteria selective enough to identify a single
// account (e.g. the external account number).
type AccountQuery struct {
	ID          *string
	Number      *string
	Name        *string
	Currency    *Currency
	AccountType *AccountType
	ProfileType *ProfileType
}

// Matches reports whether the account satisfies every set criterion.
func (q AccountQuery) Matches(a *BankAccount) bool {
	if q.ID != nil && a.ID != *q.ID {
		return false
	}
	if q.Number != nil && a.Number != *q.Number {
		return false
	}
	if q.Name != nil && a.Name != *q.Name {
		return false
	}
	if q.Currency != nil && a.Currency != *q.Currency {
		return false
	}
	if q.AccountType != nil && a.AccountType != *q.AccountType {
		return false
	}
	if q.ProfileType != nil && a.ProfileType != *q.ProfileType {
		return false
	}
	return true
}

func (q AccountQuery) String() string {
	var parts []string
	appendPart := func(name, value string) {
		parts = append(parts, name+"="+value)
	}
	if q.ID != nil {
		appendPart("id", *q.ID)
	}
	if q.Number != nil {
		appendPart("number", *q.Number)
	}
	if q.Name != nil {
		appendPart("name", *q.Name)
	}
	if q.Currency != nil {
		appendPart("currency", string(*q.Currency))
	}
	if q.AccountType != nil {
		appendPart("account_type", string(*q.AccountType))
	}
	if q.ProfileType != nil {
		appendPart("profile_type", string(*q.ProfileType))
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, ", ")
}

// RecipientQuery selects recipients by field equality. Nil fields match any
// value.
type RecipientQuery struct {
	ID       *string
	Number   *string
	Name     *string
	BankName *string
}

// Matches reports whether the recipient satisfies every set criterion.
func (q RecipientQuery) Matches(r *Recipient) bool {
	if q.ID != nil && r.ID != *q.ID {
		return false
	}
	if q.Number != nil && r.Number != *q.Number {
		return false
	}
	if q.Name != nil && r.Name != *q.Name {
		return false
	}
	if q.BankName != nil && r.BankName != *q.BankName {
		return false
	}
	return true
}

func (q RecipientQuery) String() string {
	var parts []string
	if q.ID != nil {
		parts = append(parts, "id="+*q.ID)
	}
	if q.Number != nil {
		parts = append(parts, "number="+*q.Number)
	}
	if q.Name != nil {
		parts = append(parts, "name="+*q.Name)
	}
	if q.BankName != nil {
		parts = append(parts, "bank_name="+*q.BankName)
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, ", ")
}
