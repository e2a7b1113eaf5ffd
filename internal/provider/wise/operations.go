package wise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"banker/internal/transport"
	"banker/pkg/domain"
	errs "banker/pkg/errors"
)

// Quote is a time-bounded price/fee commitment issued by wise for a
// prospective conversion or transfer.
type Quote struct {
	ID             string
	SourceAmount   decimal.Decimal
	SourceCurrency domain.Currency
	TargetAmount   decimal.Decimal
	TargetCurrency domain.Currency
	Fee            decimal.Decimal
	FeeCurrency    domain.Currency
	Rate           decimal.Decimal
}

type paymentOption struct {
	Disabled      bool            `json:"disabled"`
	FeePercentage decimal.Decimal `json:"feePercentage"`
	SourceAmount  decimal.Decimal `json:"sourceAmount"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	Fee           struct {
		Total    decimal.Decimal `json:"total"`
		Currency string          `json:"currency"`
	} `json:"fee"`
}

type quoteResponse struct {
	ID             string          `json:"id"`
	Rate           decimal.Decimal `json:"rate"`
	SourceCurrency string          `json:"sourceCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	PaymentOptions []paymentOption `json:"paymentOptions"`
}

// feeFreeThreshold tolerates sub-cent rounding noise in provider fee totals.
var feeFreeThreshold = decimal.NewFromFloat(0.005)

// CreateBalanceQuote requests a quote for moving money between the holder's
// own balances. A same-currency quote is only usable when wise offers at
// least one enabled zero-fee payment option; callers requesting an explicit
// cross-currency conversion opted into fees and proceed regardless.
func (c *Client) CreateBalanceQuote(ctx context.Context, profileID int64, amount decimal.Decimal, source, target domain.Currency) (*Quote, error) {
	payload := map[string]interface{}{
		"sourceAmount":   amount.String(),
		"sourceCurrency": source,
		"targetCurrency": target,
		"payOut":         "BALANCE",
		"preferredPayIn": "BALANCE",
		"paymentMetadata": map[string]string{
			"transferNature": "MOVING_MONEY_BETWEEN_OWN_ACCOUNTS",
		},
	}

	return c.createQuote(ctx, profileID, payload, source == target)
}

// CreateBankQuote requests a quote for paying an external recipient. Fees are
// expected on external transfers; no zero-fee guard applies.
func (c *Client) CreateBankQuote(ctx context.Context, profileID int64, amount decimal.Decimal, source, target domain.Currency, recipientID int64) (*Quote, error) {
	payload := map[string]interface{}{
		"sourceAmount":   amount.String(),
		"sourceCurrency": source,
		"targetCurrency": target,
		"targetAccount":  recipientID,
		"payOut":         "BANK_TRANSFER",
		"preferredPayIn": "BALANCE",
	}

	return c.createQuote(ctx, profileID, payload, false)
}

func (c *Client) createQuote(ctx context.Context, profileID int64, payload map[string]interface{}, requireFree bool) (*Quote, error) {
	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/v3/profiles/%d/quotes", c.baseURL, profileID),
		Header: c.header(),
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	var enabled, free []paymentOption
	for _, option := range resp.PaymentOptions {
		if option.Disabled {
			continue
		}
		enabled = append(enabled, option)
		if option.Fee.Total.LessThan(feeFreeThreshold) {
			free = append(free, option)
		}
	}

	c.logger.Debug("Quote payment options", map[string]interface{}{
		"quote_id": resp.ID,
		"total":    len(resp.PaymentOptions),
		"enabled":  len(enabled),
		"free":     len(free),
	})

	if len(enabled) == 0 {
		return nil, fmt.Errorf("quote %s has no enabled payment options", resp.ID)
	}

	chosen := enabled[0]
	if len(free) > 0 {
		chosen = free[0]
	} else {
		lowest := enabled[0]
		for _, option := range enabled[1:] {
			if option.Fee.Total.LessThan(lowest.Fee.Total) {
				lowest = option
			}
		}
		chosen = lowest
		c.logger.Debug("No free payment option", map[string]interface{}{
			"quote_id":        resp.ID,
			"lowest_fee_rate": lowest.FeePercentage.String(),
		})
		if requireFree {
			return nil, fmt.Errorf("%w: quote %s", errs.ErrNoFreePaymentOption, resp.ID)
		}
	}

	sourceCurrency, err := domain.ParseCurrency(resp.SourceCurrency)
	if err != nil {
		return nil, err
	}
	targetCurrency, err := domain.ParseCurrency(resp.TargetCurrency)
	if err != nil {
		return nil, err
	}
	feeCurrency := sourceCurrency
	if chosen.Fee.Currency != "" {
		if parsed, err := domain.ParseCurrency(chosen.Fee.Currency); err == nil {
			feeCurrency = parsed
		}
	}

	return &Quote{
		ID:             resp.ID,
		SourceAmount:   chosen.SourceAmount,
		SourceCurrency: sourceCurrency,
		TargetAmount:   chosen.TargetAmount,
		TargetCurrency: targetCurrency,
		Fee:            chosen.Fee.Total,
		FeeCurrency:    feeCurrency,
		Rate:           resp.Rate,
	}, nil
}

// CreateTransfer registers a transfer against a quote. transactionID is the
// caller-supplied idempotency key; wise deduplicates retries carrying the
// same id. sourceRecipientID may be zero for external transfers, where wise
// infers the source from the quote.
func (c *Client) CreateTransfer(ctx context.Context, sourceRecipientID, targetRecipientID int64, quoteID, transactionID, note string) (int64, error) {
	details := map[string]interface{}{
		"transferPurpose": "verification.transfers.purpose.pay.bills",
		"sourceOfFunds":   "verification.source.of.funds.other",
	}
	if note != "" {
		details["reference"] = note
	}

	payload := map[string]interface{}{
		"targetAccount":         targetRecipientID,
		"quoteUuid":             quoteID,
		"customerTransactionId": transactionID,
		"details":               details,
	}
	if sourceRecipientID != 0 {
		payload["sourceAccount"] = sourceRecipientID
	}

	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/v1/transfers",
		Header: c.header(),
		Body:   payload,
	})
	if err != nil {
		return 0, err
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode transfer response: %w", err)
	}

	return resp.ID, nil
}

// FundTransfer executes a registered transfer against the profile balance.
// A conflict status means the transfer was already funded by a previous
// attempt with the same idempotency key and counts as completed.
func (c *Client) FundTransfer(ctx context.Context, profileID, transferID int64) (string, error) {
	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/v3/profiles/%d/transfers/%d/payments", c.baseURL, profileID, transferID),
		Header: c.header(),
		Body:   map[string]string{"type": "BALANCE"},
		Accept: []int{http.StatusOK, http.StatusCreated, http.StatusConflict},
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Status == "" {
		// Conflict responses carry no status body; the transfer is funded.
		return "COMPLETED", nil
	}

	return resp.Status, nil
}

// Movement is the provider-reported result of a balance movement.
type Movement struct {
	ID           int64        `json:"id"`
	State        string       `json:"state"`
	SourceAmount amountRecord `json:"sourceAmount"`
	TargetAmount amountRecord `json:"targetAmount"`
}

// Rejected reports whether wise declined the movement without a transport
// error.
func (m *Movement) Rejected() bool {
	return m.State == "REJECTED"
}

// MoveBalance moves money directly between two same-currency balances of one
// profile. No quote is involved. idempotenceKey deduplicates retries.
func (c *Client) MoveBalance(ctx context.Context, profileID, sourceBalanceID, targetBalanceID int64, amount decimal.Decimal, currency domain.Currency, idempotenceKey string) (*Movement, error) {
	payload := map[string]interface{}{
		"amount": map[string]interface{}{
			"value":    amount.String(),
			"currency": currency,
		},
		"sourceBalanceId": sourceBalanceID,
		"targetBalanceId": targetBalanceID,
	}

	return c.balanceMovement(ctx, profileID, payload, idempotenceKey)
}

// ConvertBalance converts money between two balances of one profile using a
// previously created quote.
func (c *Client) ConvertBalance(ctx context.Context, profileID int64, quoteID, idempotenceKey string) (*Movement, error) {
	payload := map[string]interface{}{
		"quoteId": quoteID,
	}

	return c.balanceMovement(ctx, profileID, payload, idempotenceKey)
}

func (c *Client) balanceMovement(ctx context.Context, profileID int64, payload map[string]interface{}, idempotenceKey string) (*Movement, error) {
	header := c.header()
	header.Set("X-idempotence-uuid", idempotenceKey)

	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/v2/profiles/%d/balance-movements", c.baseURL, profileID),
		Header: header,
		Body:   payload,
		Accept: []int{http.StatusOK, http.StatusCreated, http.StatusConflict},
	})
	if err != nil {
		return nil, err
	}

	var movement Movement
	if err := json.Unmarshal(raw, &movement); err != nil {
		return nil, fmt.Errorf("failed to decode balance movement response: %w", err)
	}
	if movement.State == "" {
		// Conflict replays carry no state; the movement already happened.
		movement.State = "COMPLETED"
	}

	return &movement, nil
}
