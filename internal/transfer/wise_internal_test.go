package transfer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
)

func TestWiseInternalSameProfileSameCurrency(t *testing.T) {
	client, caller := newWiseClient(t)
	caller.responses["POST "+wiseBaseURL+"/v2/profiles/1/balance-movements"] = `{"id": 900, "state": "COMPLETED"}`
	baseline := len(caller.calls)

	source := accountByID(t, client, "11")
	target := accountByID(t, client, "13")

	outcome, err := NewWiseInternal(logger.NewNop()).Handle(context.Background(), source, target, decimal.NewFromInt(10), "savings top-up")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome.State)

	require.Len(t, caller.calls, baseline+1, "one direct movement, no quote")
	movement := caller.calls[baseline]
	assert.Equal(t, wiseBaseURL+"/v2/profiles/1/balance-movements", movement.URL)
	assert.NotEmpty(t, movement.Header.Get("X-idempotence-uuid"))

	body, ok := movement.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(11), body["sourceBalanceId"])
	assert.Equal(t, int64(13), body["targetBalanceId"])

	require.NotNil(t, outcome.Transaction)
	assert.Equal(t, "900", outcome.Transaction.ID)
	assert.True(t, outcome.Transaction.FeeAmount.IsZero())
	assert.Equal(t, domain.EUR, outcome.Transaction.TargetCurrency)
}

func TestWiseInternalSameProfileConversion(t *testing.T) {
	client, caller := newWiseClient(t)
	caller.responses["POST "+wiseBaseURL+"/v3/profiles/1/quotes"] = wiseConversionQuote
	caller.responses["POST "+wiseBaseURL+"/v2/profiles/1/balance-movements"] = `{"id": 901, "state": "COMPLETED"}`
	baseline := len(caller.calls)

	source := accountByID(t, client, "11") // EUR
	target := accountByID(t, client, "12") // USD

	outcome, err := NewWiseInternal(logger.NewNop()).Handle(context.Background(), source, target, decimal.NewFromInt(10), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome.State)

	require.Len(t, caller.calls, baseline+2)
	quote := caller.calls[baseline]
	assert.Equal(t, wiseBaseURL+"/v3/profiles/1/quotes", quote.URL, "quote precedes the movement")
	quoteBody, ok := quote.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, domain.USD, quoteBody["targetCurrency"], "quote targets the destination account currency")

	movementBody, ok := caller.calls[baseline+1].Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "q-conv", movementBody["quoteId"])

	require.NotNil(t, outcome.Transaction)
	assert.Equal(t, "901", outcome.Transaction.ID)
	assert.Equal(t, domain.EUR, outcome.Transaction.SourceCurrency)
	assert.Equal(t, domain.USD, outcome.Transaction.TargetCurrency)
	assert.Equal(t, "10.78", outcome.Transaction.TargetAmount.String())
	assert.Equal(t, "0.02", outcome.Transaction.FeeAmount.String())
}

func TestWiseInternalBetweenProfiles(t *testing.T) {
	client, caller := newWiseClient(t)
	caller.responses["POST "+wiseBaseURL+"/v3/profiles/1/quotes"] = wiseFreeQuote
	caller.responses["POST "+wiseBaseURL+"/v1/transfers"] = `{"id": 777}`
	caller.responses["POST "+wiseBaseURL+"/v3/profiles/1/transfers/777/payments"] = `{"status": "outgoing_payment_sent"}`
	baseline := len(caller.calls)

	source := accountByID(t, client, "11") // profile 1, EUR
	target := accountByID(t, client, "21") // profile 2, EUR

	outcome, err := NewWiseInternal(logger.NewNop()).Handle(context.Background(), source, target, decimal.NewFromInt(10), "profile move")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome.State)

	require.Len(t, caller.calls, baseline+3, "quote, transfer, funding")
	transferBody, ok := caller.calls[baseline+1].Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(501), transferBody["sourceAccount"])
	assert.Equal(t, int64(502), transferBody["targetAccount"])
	assert.Equal(t, "q-free", transferBody["quoteUuid"])

	require.NotNil(t, outcome.Transaction)
	assert.Equal(t, "777", outcome.Transaction.ID)
}

func TestWiseInternalCrossProfileConversionRejected(t *testing.T) {
	client, caller := newWiseClient(t)
	baseline := len(caller.calls)

	source := accountByID(t, client, "12") // profile 1, USD
	target := accountByID(t, client, "21") // profile 2, EUR

	_, err := NewWiseInternal(logger.NewNop()).Handle(context.Background(), source, target, decimal.NewFromInt(10), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCrossProfileConversion)
	assert.Len(t, caller.calls, baseline, "refused before any provider call")
}

func TestWiseInternalMisapplied(t *testing.T) {
	mercuryClient, mercuryCaller := newMercuryClient(t)
	wiseClient, _ := newWiseClient(t)
	baseline := len(mercuryCaller.calls)

	source := accountByID(t, mercuryClient, "a1")
	target := accountByID(t, wiseClient, "11")

	_, err := NewWiseInternal(logger.NewNop()).Handle(context.Background(), source, target, decimal.NewFromInt(10), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStrategyMisapplied)
	assert.Len(t, mercuryCaller.calls, baseline)
}

func TestWiseInternalRejectedMovement(t *testing.T) {
	client, caller := newWiseClient(t)
	caller.responses["POST "+wiseBaseURL+"/v2/profiles/1/balance-movements"] = `{"id": 902, "state": "REJECTED"}`

	source := accountByID(t, client, "11")
	target := accountByID(t, client, "13")

	outcome, err := NewWiseInternal(logger.NewNop()).Handle(context.Background(), source, target, decimal.NewFromInt(10), "")
	require.NoError(t, err)
	assert.True(t, outcome.Rejected())
	assert.Nil(t, outcome.Transaction)
}
