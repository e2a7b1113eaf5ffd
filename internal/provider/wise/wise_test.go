package wise

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banker/internal/transport"
	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
)

const testBaseURL = "https://wise.test"

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

const profilesResponse = `[
	{"id": 1, "type": "BUSINESS"},
	{"id": 2, "type": "PERSONAL"}
]`

const profile1Balances = `[
	{"id": 11, "currency": "EUR", "amount": {"value": 100.5, "currency": "EUR"}, "type": "STANDARD", "name": "EUR checking"},
	{"id": 12, "currency": "USD", "amount": {"value": 50, "currency": "USD"}, "type": "STANDARD", "name": "USD checking"},
	{"id": 13, "currency": "EUR", "amount": {"value": 20, "currency": "EUR"}, "type": "SAVINGS", "name": "EUR savings"},
	{"id": 14, "currency": "GBP", "amount": {"value": 7, "currency": "GBP"}, "type": "STANDARD", "name": "GBP checking"}
]`

const profile1Accounts = `[
	{"id": 101, "profileId": 1, "recipientId": 501, "balances": [
		{"id": 11, "bankDetails": {"accountNumber": "DE89 3704 0044", "bankName": "Wise Europe"}},
		{"id": 12, "bankDetails": {"accountNumber": "123456789", "bankName": "Wise US"}},
		{"id": 13}
	]}
]`

const profile2Balances = `[
	{"id": 21, "currency": "EUR", "amount": {"value": 10, "currency": "EUR"}, "type": "STANDARD", "name": "Personal EUR"}
]`

const profile2Accounts = `[
	{"id": 201, "profileId": 2, "recipientId": 502, "balances": [
		{"id": 21, "bankDetails": {"accountNumber": "FR00 1111 2222", "bankName": "Wise Europe"}}
	]}
]`

const recipientsResponse = `[
	{"id": 9001, "profile": 1, "accountHolderName": "Acme Supplier", "currency": "USD", "active": true, "details": {"accountNumber": "987654321", "bankName": "Chase"}},
	{"id": 9002, "profile": 1, "accountHolderName": "Gone Vendor", "currency": "USD", "active": false, "details": {"accountNumber": "111111", "bankName": "Citi"}},
	{"id": 9003, "profile": 1, "accountHolderName": "Email Only", "currency": "USD", "active": true, "details": {}}
]`

func newTestClient(t *testing.T) (*Client, *stubCaller) {
	t.Helper()

	caller := &stubCaller{responses: map[string]string{
		"GET " + testBaseURL + "/v2/profiles":                                   profilesResponse,
		"GET " + testBaseURL + "/v4/profiles/1/balances?types=STANDARD,SAVINGS": profile1Balances,
		"GET " + testBaseURL + "/v1/borderless-accounts?profileId=1":            profile1Accounts,
		"GET " + testBaseURL + "/v4/profiles/2/balances?types=STANDARD,SAVINGS": profile2Balances,
		"GET " + testBaseURL + "/v1/borderless-accounts?profileId=2":            profile2Accounts,
		"GET " + testBaseURL + "/v1/accounts":                                   recipientsResponse,
	}}

	client, err := New(context.Background(), "token", testBaseURL, caller, logger.NewNop())
	require.NoError(t, err)
	return client, caller
}

func TestFetchAccountsJoinsBalances(t *testing.T) {
	client, _ := newTestClient(t)

	accounts := client.Accounts()
	require.Len(t, accounts, 4, "GBP balance is skipped, the rest project")

	byID := make(map[string]*domain.BankAccount)
	for _, a := range accounts {
		byID[a.ID] = a
	}

	eur := byID["11"]
	require.NotNil(t, eur)
	assert.Equal(t, "DE8937040044", eur.Number, "account number is de-spaced")
	assert.Equal(t, domain.EUR, eur.Currency)
	assert.Equal(t, domain.AccountChecking, eur.AccountType)
	assert.Equal(t, domain.ProfileBusiness, eur.ProfileType)

	details, ok := eur.Details.(AccountDetails)
	require.True(t, ok)
	assert.Equal(t, int64(1), details.ProfileID)
	assert.Equal(t, int64(101), details.AccountID)
	assert.Equal(t, int64(501), details.RecipientID)
	assert.Equal(t, int64(11), details.BalanceID)

	saving := byID["13"]
	require.NotNil(t, saving)
	assert.Equal(t, domain.AccountSaving, saving.AccountType)
	assert.Empty(t, saving.Number, "no bank details on the savings sub-record")

	personal := byID["21"]
	require.NotNil(t, personal)
	assert.Equal(t, domain.ProfilePersonal, personal.ProfileType)
}

func TestBuildAccountsMinimal(t *testing.T) {
	client := &Client{logger: logger.NewNop()}

	profiles := []profileRecord{{ID: 1, Type: "PERSONAL"}}
	balances := map[int64][]balanceRecord{
		1: {{
			ID:       2,
			Currency: "USD",
			Amount:   amountRecord{Value: decimal.NewFromFloat(1.23), Currency: "USD"},
			Type:     "STANDARD",
			Name:     "Account 2",
		}},
	}
	accounts := map[int64][]accountRecord{
		1: {{
			ID:          3,
			ProfileID:   1,
			RecipientID: 4,
			Balances: []accountBalanceRecord{{
				ID:          2,
				BankDetails: &bankDetailsRecord{AccountNumber: "6", BankName: "Wise US Inc"},
			}},
		}},
	}

	projected, err := client.buildAccounts(profiles, balances, accounts)
	require.NoError(t, err)
	require.Len(t, projected, 1)

	account := projected[0]
	assert.Equal(t, "2", account.ID)
	assert.Equal(t, "6", account.Number)
	require.NotNil(t, account.Balance)
	assert.Equal(t, "1.23", account.Balance.String())
	assert.Equal(t, domain.USD, account.Currency)
	assert.Equal(t, domain.AccountChecking, account.AccountType)
	assert.Equal(t, domain.ProfilePersonal, account.ProfileType)
	assert.Equal(t, "Account 2", account.Name)
}

func TestFetchRecipientsFilters(t *testing.T) {
	client, _ := newTestClient(t)

	recipients := client.Recipients()
	require.Len(t, recipients, 1, "inactive and unroutable recipients are dropped")
	assert.Equal(t, "9001", recipients[0].ID)
	assert.Equal(t, "987654321", recipients[0].Number)

	details, ok := recipients[0].Details.(RecipientDetails)
	require.True(t, ok)
	assert.Equal(t, int64(9001), details.RecipientID)
}

func TestConversionRateMemoized(t *testing.T) {
	client, caller := newTestClient(t)
	caller.responses["GET "+testBaseURL+"/v1/rates?source=EUR&target=USD"] = `[{"rate": 1.08}]`
	baseline := len(caller.calls)

	for i := 0; i < 2; i++ {
		rate, err := client.ConversionRate(context.Background(), domain.EUR, domain.USD)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromFloat(1.08)))
	}

	assert.Len(t, caller.calls, baseline+1, "rate fetched once per pair")

	rate, err := client.ConversionRate(context.Background(), domain.EUR, domain.EUR)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	assert.Len(t, caller.calls, baseline+1, "same-currency rate requires no call")
}

func TestConversionRateUnavailable(t *testing.T) {
	client, caller := newTestClient(t)
	caller.responses["GET "+testBaseURL+"/v1/rates?source=USD&target=EUR"] = `[]`

	_, err := client.ConversionRate(context.Background(), domain.USD, domain.EUR)
	assert.ErrorIs(t, err, errs.ErrRateNotAvailable)
}

const quoteWithFreeOption = `{
	"id": "q1",
	"rate": 1,
	"sourceCurrency": "EUR",
	"targetCurrency": "EUR",
	"paymentOptions": [
		{"disabled": true, "feePercentage": 0, "sourceAmount": 10, "targetAmount": 10, "fee": {"total": 0, "currency": "EUR"}},
		{"disabled": false, "feePercentage": 0, "sourceAmount": 10, "targetAmount": 10, "fee": {"total": 0, "currency": "EUR"}}
	]
}`

const quoteWithoutFreeOption = `{
	"id": "q2",
	"rate": 1.08,
	"sourceCurrency": "EUR",
	"targetCurrency": "USD",
	"paymentOptions": [
		{"disabled": false, "feePercentage": 0.0047, "sourceAmount": 10, "targetAmount": 10.75, "fee": {"total": 0.05, "currency": "EUR"}},
		{"disabled": false, "feePercentage": 0.0021, "sourceAmount": 10, "targetAmount": 10.78, "fee": {"total": 0.02, "currency": "EUR"}}
	]
}`

func TestCreateBalanceQuoteSameCurrencyRequiresFreeOption(t *testing.T) {
	client, caller := newTestClient(t)
	quoteURL := "POST " + testBaseURL + "/v3/profiles/1/quotes"

	caller.responses[quoteURL] = quoteWithFreeOption
	quote, err := client.CreateBalanceQuote(context.Background(), 1, decimal.NewFromInt(10), domain.EUR, domain.EUR)
	require.NoError(t, err)
	assert.Equal(t, "q1", quote.ID)
	assert.True(t, quote.Fee.IsZero())

	// Same-currency quote with only paid options is unusable.
	noFree := `{
		"id": "q3",
		"rate": 1,
		"sourceCurrency": "EUR",
		"targetCurrency": "EUR",
		"paymentOptions": [
			{"disabled": false, "feePercentage": 0.003, "sourceAmount": 10, "targetAmount": 10, "fee": {"total": 0.03, "currency": "EUR"}}
		]
	}`
	caller.responses[quoteURL] = noFree
	_, err = client.CreateBalanceQuote(context.Background(), 1, decimal.NewFromInt(10), domain.EUR, domain.EUR)
	assert.ErrorIs(t, err, errs.ErrNoFreePaymentOption)
}

func TestCreateBalanceQuoteCrossCurrencyAllowsFees(t *testing.T) {
	client, caller := newTestClient(t)
	caller.responses["POST "+testBaseURL+"/v3/profiles/1/quotes"] = quoteWithoutFreeOption

	quote, err := client.CreateBalanceQuote(context.Background(), 1, decimal.NewFromInt(10), domain.EUR, domain.USD)
	require.NoError(t, err)
	assert.Equal(t, "q2", quote.ID)
	assert.Equal(t, "0.02", quote.Fee.String(), "lowest-fee enabled option is chosen")
	assert.Equal(t, domain.USD, quote.TargetCurrency)

	last := caller.calls[len(caller.calls)-1]
	body, ok := last.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, domain.USD, body["targetCurrency"])
	assert.Equal(t, "BALANCE", body["payOut"])
}

func TestFundTransferConflictCountsAsCompleted(t *testing.T) {
	client, caller := newTestClient(t)
	caller.responses["POST "+testBaseURL+"/v3/profiles/1/transfers/777/payments"] = `{"error": "already funded"}`

	status, err := client.FundTransfer(context.Background(), 1, 777)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", status)
}
