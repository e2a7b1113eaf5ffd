package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"banker/internal/provider/mercury"
	"banker/internal/provider/wise"
	"banker/internal/transport"
	"banker/pkg/domain"
	"banker/pkg/logger"
)

const (
	wiseBaseURL    = "https://wise.test"
	mercuryBaseURL = "https://mercury.test"
)

type stubCaller struct {
	responses map[string]string
	calls     []transport.Request
}

func (s *stubCaller) Call(ctx context.Context, req transport.Request) (json.RawMessage, error) {
	s.calls = append(s.calls, req)
	body, ok := s.responses[req.Method+" "+req.URL]
	if !ok {
		return nil, fmt.Errorf("unexpected call: %s %s", req.Method, req.URL)
	}
	return json.RawMessage(body), nil
}

// Two profiles: business profile 1 holds EUR/USD checking plus an EUR savings
// balance, personal profile 2 holds a single EUR balance.
func newWiseClient(t *testing.T) (*wise.Client, *stubCaller) {
	t.Helper()

	caller := &stubCaller{responses: map[string]string{
		"GET " + wiseBaseURL + "/v2/profiles": `[
			{"id": 1, "type": "BUSINESS"},
			{"id": 2, "type": "PERSONAL"}
		]`,
		"GET " + wiseBaseURL + "/v4/profiles/1/balances?types=STANDARD,SAVINGS": `[
			{"id": 11, "currency": "EUR", "amount": {"value": 100.5, "currency": "EUR"}, "type": "STANDARD", "name": "EUR checking"},
			{"id": 12, "currency": "USD", "amount": {"value": 50, "currency": "USD"}, "type": "STANDARD", "name": "USD checking"},
			{"id": 13, "currency": "EUR", "amount": {"value": 20, "currency": "EUR"}, "type": "SAVINGS", "name": "EUR savings"}
		]`,
		"GET " + wiseBaseURL + "/v1/borderless-accounts?profileId=1": `[
			{"id": 101, "profileId": 1, "recipientId": 501, "balances": [
				{"id": 11, "bankDetails": {"accountNumber": "DE89 3704 0044", "bankName": "Wise Europe"}},
				{"id": 12, "bankDetails": {"accountNumber": "123456789", "bankName": "Wise US"}},
				{"id": 13}
			]}
		]`,
		"GET " + wiseBaseURL + "/v4/profiles/2/balances?types=STANDARD,SAVINGS": `[
			{"id": 21, "currency": "EUR", "amount": {"value": 10, "currency": "EUR"}, "type": "STANDARD", "name": "Personal EUR"}
		]`,
		"GET " + wiseBaseURL + "/v1/borderless-accounts?profileId=2": `[
			{"id": 201, "profileId": 2, "recipientId": 502, "balances": [
				{"id": 21, "bankDetails": {"accountNumber": "FR00 1111 2222", "bankName": "Wise Europe"}}
			]}
		]`,
		"GET " + wiseBaseURL + "/v1/accounts": `[
			{"id": 9001, "profile": 1, "accountHolderName": "Mercury Operating", "currency": "USD", "active": true, "details": {"accountNumber": "987654", "bankName": "Chase"}}
		]`,
	}}

	client, err := wise.New(context.Background(), "token", wiseBaseURL, caller, logger.NewNop())
	require.NoError(t, err)
	return client, caller
}

func newMercuryClient(t *testing.T) (*mercury.Client, *stubCaller) {
	t.Helper()

	caller := &stubCaller{responses: map[string]string{
		"GET " + mercuryBaseURL + "/accounts": `{
			"accounts": [
				{"id": "a1", "accountNumber": "987654", "availableBalance": 1500, "kind": "checking", "status": "active", "nickname": "Operating"}
			]
		}`,
		"GET " + mercuryBaseURL + "/recipients": `{
			"recipients": [
				{"id": "r1", "name": "Wise Europe", "nickname": "EUR", "status": "active", "electronicRoutingInfo": {"accountNumber": "DE8937040044", "bankName": "Wise Europe"}}
			]
		}`,
	}}

	client, err := mercury.New(context.Background(), "api-key", mercuryBaseURL, caller, logger.NewNop())
	require.NoError(t, err)
	return client, caller
}

func accountByID(t *testing.T, provider domain.Provider, id string) *domain.BankAccount {
	t.Helper()

	for _, account := range provider.Accounts() {
		if account.ID == id {
			return account
		}
	}
	t.Fatalf("no account with id %s", id)
	return nil
}

const wiseFreeQuote = `{
	"id": "q-free",
	"rate": 1,
	"sourceCurrency": "EUR",
	"targetCurrency": "EUR",
	"paymentOptions": [
		{"disabled": false, "feePercentage": 0, "sourceAmount": 10, "targetAmount": 10, "fee": {"total": 0, "currency": "EUR"}}
	]
}`

const wiseConversionQuote = `{
	"id": "q-conv",
	"rate": 1.08,
	"sourceCurrency": "EUR",
	"targetCurrency": "USD",
	"paymentOptions": [
		{"disabled": false, "feePercentage": 0.0021, "sourceAmount": 10, "targetAmount": 10.78, "fee": {"total": 0.02, "currency": "EUR"}}
	]
}`
