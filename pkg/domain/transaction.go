package domain

import "github.com/shopspring/decimal"

// Transaction is the result of a completed money movement. Source and target
// currency differ only when a conversion occurred; the fee is denominated in
// one of the two currencies involved.
type Transaction struct {
	ID             string          `json:"id"`
	SourceAmount   decimal.Decimal `json:"source_amount"`
	SourceCurrency Currency        `json:"source_currency"`
	TargetAmount   decimal.Decimal `json:"target_amount"`
	TargetCurrency Currency        `json:"target_currency"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	FeeCurrency    Currency        `json:"fee_currency"`
}
