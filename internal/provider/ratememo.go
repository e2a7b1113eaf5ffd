package provider

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"banker/pkg/domain"
)

// RateMemo memoizes conversion rates per adapter instance, keyed by the
// ordered currency pair. Entries never expire; adapters are expected to live
// for a single process run.
type RateMemo struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

func NewRateMemo() *RateMemo {
	return &RateMemo{
		rates: make(map[string]decimal.Decimal),
	}
}

// Lookup returns the memoized rate for from->to, invoking fetch on the first
// request for a pair. The rate for a currency onto itself is always 1 and
// never triggers a fetch.
func (m *RateMemo) Lookup(ctx context.Context, from, to domain.Currency, fetch func(context.Context) (decimal.Decimal, error)) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := string(from) + "-" + string(to)

	m.mu.RLock()
	rate, ok := m.rates[key]
	m.mu.RUnlock()
	if ok {
		return rate, nil
	}

	rate, err := fetch(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	m.mu.Lock()
	m.rates[key] = rate
	m.mu.Unlock()

	return rate, nil
}
