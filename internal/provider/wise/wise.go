// Package wise adapts the Wise multi-currency platform onto the canonical
// domain model. A Wise API key spans multiple profiles, each holding
// borderless accounts with one balance per currency; the adapter joins
// account-level and balance-level records before projection and exposes the
// sub-operations (quotes, transfers, funding, balance movements) the
// multi-step transfer protocols need.
package wise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"banker/internal/provider"
	"banker/internal/transport"
	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
)

const DefaultBaseURL = "https://api.transferwise.com"

// Client owns one authenticated Wise session. Construction eagerly fetches
// profiles, balances, accounts, and recipients, and caches the normalized
// projections for the adapter's lifetime.
type Client struct {
	provider.Roster

	apiToken string
	baseURL  string
	caller   transport.Caller
	logger   logger.Logger
	rates    *provider.RateMemo
}

func New(ctx context.Context, apiToken, baseURL string, caller transport.Caller, log logger.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiToken: apiToken,
		baseURL:  baseURL,
		caller:   caller,
		logger:   log,
		rates:    provider.NewRateMemo(),
	}

	if err := c.fetchAccounts(ctx); err != nil {
		return nil, errs.Wrap(err, "wise: failed to fetch accounts")
	}
	if err := c.fetchRecipients(ctx); err != nil {
		return nil, errs.Wrap(err, "wise: failed to fetch recipients")
	}

	return c, nil
}

func (c *Client) Kind() domain.ProviderKind {
	return domain.ProviderWise
}

func (c *Client) header() http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiToken)
	header.Set("Content-Type", "application/json")
	return header
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	raw, err := c.caller.Call(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + path,
		Header: c.header(),
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) fetchAccounts(ctx context.Context) error {
	var profiles []profileRecord
	if err := c.get(ctx, "/v2/profiles", &profiles); err != nil {
		return err
	}

	balances := make(map[int64][]balanceRecord, len(profiles))
	accounts := make(map[int64][]accountRecord, len(profiles))
	for _, p := range profiles {
		var profileBalances []balanceRecord
		path := fmt.Sprintf("/v4/profiles/%d/balances?types=STANDARD,SAVINGS", p.ID)
		if err := c.get(ctx, path, &profileBalances); err != nil {
			return err
		}
		balances[p.ID] = profileBalances

		var profileAccounts []accountRecord
		path = fmt.Sprintf("/v1/borderless-accounts?profileId=%d", p.ID)
		if err := c.get(ctx, path, &profileAccounts); err != nil {
			return err
		}
		accounts[p.ID] = profileAccounts
	}

	projected, err := c.buildAccounts(profiles, balances, accounts)
	if err != nil {
		return err
	}

	c.SetAccounts(projected)
	c.logger.Debug("Fetched wise accounts", map[string]interface{}{
		"profiles": len(profiles),
		"accounts": len(projected),
	})
	return nil
}

type recipientRecord struct {
	ID                int64  `json:"id"`
	Profile           int64  `json:"profile"`
	AccountHolderName string `json:"accountHolderName"`
	Currency          string `json:"currency"`
	Active            bool   `json:"active"`
	Details           struct {
		AccountNumber string `json:"accountNumber"`
		BankName      string `json:"bankName"`
	} `json:"details"`
}

func (c *Client) fetchRecipients(ctx context.Context) error {
	var records []recipientRecord
	if err := c.get(ctx, "/v1/accounts", &records); err != nil {
		return err
	}

	recipients := make([]*domain.Recipient, 0, len(records))
	for _, record := range records {
		if !record.Active || record.Details.AccountNumber == "" {
			continue
		}

		recipients = append(recipients, &domain.Recipient{
			ID:       fmt.Sprintf("%d", record.ID),
			Name:     record.AccountHolderName,
			BankName: record.Details.BankName,
			Number:   record.Details.AccountNumber,
			Details: RecipientDetails{
				RecipientID: record.ID,
				ProfileID:   record.Profile,
			},
		})
	}

	c.SetRecipients(recipients)
	c.logger.Debug("Fetched wise recipients", map[string]interface{}{"count": len(recipients)})
	return nil
}

// ConversionRate returns the live mid-market rate for the pair, memoized for
// the life of the adapter. The rate for a currency onto itself is always 1
// without a provider call.
func (c *Client) ConversionRate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	return c.rates.Lookup(ctx, from, to, func(ctx context.Context) (decimal.Decimal, error) {
		var records []struct {
			Rate decimal.Decimal `json:"rate"`
		}
		path := fmt.Sprintf("/v1/rates?source=%s&target=%s", from, to)
		if err := c.get(ctx, path, &records); err != nil {
			return decimal.Zero, err
		}
		if len(records) == 0 {
			return decimal.Zero, fmt.Errorf("%w: wise %s->%s", errs.ErrRateNotAvailable, from, to)
		}
		return records[0].Rate, nil
	})
}
