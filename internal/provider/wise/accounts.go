package wise

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"banker/pkg/domain"
)

// AccountDetails is the provider-tagged payload carried on every wise bank
// account: the identifiers later transfer steps need but the canonical model
// does not represent as first-class fields.
type AccountDetails struct {
	ProfileID   int64
	AccountID   int64
	RecipientID int64
	BalanceID   int64
}

func (AccountDetails) ProviderKind() domain.ProviderKind {
	return domain.ProviderWise
}

// RecipientDetails tags a wise recipient with its numeric identifiers.
type RecipientDetails struct {
	RecipientID int64
	ProfileID   int64
}

func (RecipientDetails) ProviderKind() domain.ProviderKind {
	return domain.ProviderWise
}

type profileRecord struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type amountRecord struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// balanceRecord is the profile-level balance listing. Type distinguishes
// STANDARD (checking) from SAVINGS balances.
type balanceRecord struct {
	ID       int64        `json:"id"`
	Currency string       `json:"currency"`
	Amount   amountRecord `json:"amount"`
	Type     string       `json:"type"`
	Name     string       `json:"name"`
}

type bankDetailsRecord struct {
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
}

// accountBalanceRecord is the balance sub-record nested in a borderless
// account; bank routing details live here, not on the profile-level balance.
type accountBalanceRecord struct {
	ID          int64              `json:"id"`
	BankDetails *bankDetailsRecord `json:"bankDetails"`
}

type accountRecord struct {
	ID          int64                  `json:"id"`
	ProfileID   int64                  `json:"profileId"`
	RecipientID int64                  `json:"recipientId"`
	Balances    []accountBalanceRecord `json:"balances"`
}

var balanceTypes = map[string]domain.AccountType{
	"STANDARD": domain.AccountChecking,
	"SAVINGS":  domain.AccountSaving,
}

// buildAccounts projects the joined profile/balance/account records into
// canonical bank accounts. Account-level and balance-level records are joined
// by balance id: recipient linkage lives on the account record while routing
// details live on its balance sub-record. Balances in currencies or types
// this system does not model are skipped, not fatal.
func (c *Client) buildAccounts(profiles []profileRecord, balances map[int64][]balanceRecord, accounts map[int64][]accountRecord) ([]*domain.BankAccount, error) {
	var bankAccounts []*domain.BankAccount

	for _, profile := range profiles {
		profileType, err := domain.ParseProfileType(profile.Type)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts[profile.ID] {
			subByBalanceID := make(map[int64]accountBalanceRecord, len(account.Balances))
			for _, sub := range account.Balances {
				subByBalanceID[sub.ID] = sub
			}

			for _, balance := range balances[profile.ID] {
				currency, err := domain.ParseCurrency(balance.Currency)
				if err != nil {
					c.logger.Debug("Skipping balance in unmodeled currency", map[string]interface{}{
						"balance_id": balance.ID,
						"currency":   balance.Currency,
					})
					continue
				}

				accountType, ok := balanceTypes[balance.Type]
				if !ok {
					c.logger.Debug("Skipping balance with unmapped type", map[string]interface{}{
						"balance_id": balance.ID,
						"type":       balance.Type,
					})
					continue
				}

				var number string
				if sub, ok := subByBalanceID[balance.ID]; ok && sub.BankDetails != nil {
					number = strings.ReplaceAll(sub.BankDetails.AccountNumber, " ", "")
				}

				amount := balance.Amount.Value.RoundBank(2)
				bankAccounts = append(bankAccounts, &domain.BankAccount{
					ID:          strconv.FormatInt(balance.ID, 10),
					Provider:    c,
					Number:      number,
					Balance:     &amount,
					Currency:    currency,
					AccountType: accountType,
					ProfileType: profileType,
					Name:        balance.Name,
					Details: AccountDetails{
						ProfileID:   profile.ID,
						AccountID:   account.ID,
						RecipientID: account.RecipientID,
						BalanceID:   balance.ID,
					},
				})
			}
		}
	}

	return bankAccounts, nil
}
