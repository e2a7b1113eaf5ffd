// Package mercury adapts the Mercury business-banking API onto the canonical
// domain model. Mercury exposes a single flat account list per API key, one
// implicitly-business profile, and USD balances only.
package mercury

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"banker/internal/provider"
	"banker/internal/transport"
	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
)

const DefaultBaseURL = "https://api.mercury.com/api/v1"

var accountKinds = map[string]domain.AccountType{
	"checking": domain.AccountChecking,
	"savings":  domain.AccountSaving,
	"saving":   domain.AccountSaving,
}

// Client owns one authenticated Mercury session. Construction eagerly
// fetches and normalizes the full account and recipient lists.
type Client struct {
	provider.Roster

	apiKey  string
	baseURL string
	caller  transport.Caller
	logger  logger.Logger
}

func New(ctx context.Context, apiKey, baseURL string, caller transport.Caller, log logger.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		caller:  caller,
		logger:  log,
	}

	if err := c.fetchAccounts(ctx); err != nil {
		return nil, errs.Wrap(err, "mercury: failed to fetch accounts")
	}
	if err := c.fetchRecipients(ctx); err != nil {
		return nil, errs.Wrap(err, "mercury: failed to fetch recipients")
	}

	return c, nil
}

func (c *Client) Kind() domain.ProviderKind {
	return domain.ProviderMercury
}

// ConversionRate returns 1 for a currency onto itself; Mercury has no
// rate-quoting capability for anything else.
func (c *Client) ConversionRate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	return decimal.Zero, fmt.Errorf("%w: mercury %s->%s", errs.ErrRateNotSupported, from, to)
}

func (c *Client) header() http.Header {
	token := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":"))
	header := http.Header{}
	header.Set("Authorization", "Basic "+token)
	header.Set("Accept", "application/json")
	return header
}

type accountRecord struct {
	ID               string          `json:"id"`
	AccountNumber    string          `json:"accountNumber"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Kind             string          `json:"kind"`
	Status           string          `json:"status"`
	Nickname         string          `json:"nickname"`
}

func (c *Client) fetchAccounts(ctx context.Context) error {
	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/accounts",
		Header: c.header(),
	})
	if err != nil {
		return err
	}

	var payload struct {
		Accounts []accountRecord `json:"accounts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to decode accounts response: %w", err)
	}

	accounts := make([]*domain.BankAccount, 0, len(payload.Accounts))
	for _, record := range payload.Accounts {
		if record.Status == "archived" {
			continue
		}

		accountType, ok := accountKinds[record.Kind]
		if !ok {
			c.logger.Warn("Skipping account with unmapped kind", map[string]interface{}{
				"account_id": record.ID,
				"kind":       record.Kind,
			})
			continue
		}

		balance := record.AvailableBalance.RoundBank(2)
		accounts = append(accounts, &domain.BankAccount{
			ID:          record.ID,
			Provider:    c,
			Number:      record.AccountNumber,
			Balance:     &balance,
			Currency:    domain.USD,
			AccountType: accountType,
			ProfileType: domain.ProfileBusiness,
			Name:        trimNickname(record.Nickname),
		})
	}

	c.SetAccounts(accounts)
	c.logger.Debug("Fetched mercury accounts", map[string]interface{}{"count": len(accounts)})
	return nil
}

// trimNickname drops the parenthesised suffix Mercury appends to nicknames.
func trimNickname(nickname string) string {
	name, _, _ := strings.Cut(nickname, "(")
	return strings.TrimSpace(name)
}

type recipientRecord struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Nickname              string `json:"nickname"`
	Status                string `json:"status"`
	ElectronicRoutingInfo *struct {
		AccountNumber string `json:"accountNumber"`
		BankName      string `json:"bankName"`
	} `json:"electronicRoutingInfo"`
}

func (c *Client) fetchRecipients(ctx context.Context) error {
	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/recipients",
		Header: c.header(),
	})
	if err != nil {
		return err
	}

	var payload struct {
		Recipients []recipientRecord `json:"recipients"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to decode recipients response: %w", err)
	}

	recipients := make([]*domain.Recipient, 0, len(payload.Recipients))
	for _, record := range payload.Recipients {
		if record.Status != "active" || record.ElectronicRoutingInfo == nil {
			continue
		}

		name := record.Name
		if record.Nickname != "" {
			name = name + " - " + record.Nickname
		}

		recipients = append(recipients, &domain.Recipient{
			ID:       record.ID,
			Name:     name,
			BankName: record.ElectronicRoutingInfo.BankName,
			Number:   record.ElectronicRoutingInfo.AccountNumber,
		})
	}

	c.SetRecipients(recipients)
	c.logger.Debug("Fetched mercury recipients", map[string]interface{}{"count": len(recipients)})
	return nil
}

// Payment is the provider-reported result of a payment initiation.
type Payment struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

// Rejected reports whether Mercury processed the request but declined to move
// the money. This is a valid non-error outcome.
func (p *Payment) Rejected() bool {
	switch p.Status {
	case "failed", "rejected", "cancelled":
		return true
	}
	return false
}

// CreatePayment submits a single ACH payment initiation against a Mercury
// account. transactionID is passed as the idempotency key, so retries with
// the same id are deduplicated provider-side.
func (c *Client) CreatePayment(ctx context.Context, accountID, recipientID string, amount decimal.Decimal, transactionID, note string) (*Payment, error) {
	payload := map[string]interface{}{
		"recipientId":    recipientID,
		"amount":         amount.String(),
		"paymentMethod":  "ach",
		"idempotencyKey": transactionID,
	}
	if note != "" {
		payload["note"] = note
	}

	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/account/%s/transactions", c.baseURL, accountID),
		Header: c.header(),
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}

	c.logger.Debug("Mercury payment created", map[string]interface{}{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})

	return &payment, nil
}
