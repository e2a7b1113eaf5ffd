package transfer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
)

// Pair keys the exact-match strategy table.
type Pair struct {
	Source domain.ProviderKind
	Target domain.ProviderKind
}

// Router selects the transfer strategy for a requested transfer. An exact
// (source, target) match wins over a source-only fallback; with neither the
// transfer fails naming the unsupported pair.
type Router struct {
	exact      map[Pair]Strategy
	fromSource map[domain.ProviderKind]Strategy
	logger     logger.Logger
}

// NewRouter wires the default strategy tables.
func NewRouter(log logger.Logger) *Router {
	r := &Router{
		exact:      make(map[Pair]Strategy),
		fromSource: make(map[domain.ProviderKind]Strategy),
		logger:     log,
	}

	r.RegisterPair(domain.ProviderWise, domain.ProviderWise, NewWiseInternal(log))
	r.RegisterSource(domain.ProviderWise, NewWiseExternal(log))
	r.RegisterSource(domain.ProviderMercury, NewMercuryExternal(log))

	return r
}

// RegisterPair installs a strategy for an exact (source, target) pair.
func (r *Router) RegisterPair(source, target domain.ProviderKind, strategy Strategy) {
	r.exact[Pair{Source: source, Target: target}] = strategy
}

// RegisterSource installs a fallback strategy for any transfer leaving the
// given provider.
func (r *Router) RegisterSource(source domain.ProviderKind, strategy Strategy) {
	r.fromSource[source] = strategy
}

// Transfer resolves the strategy for the two accounts and runs it. The
// amount is quantized to the currency minor unit here, immediately before
// strategy invocation, so every provider receives a canonically rounded
// amount.
func (r *Router) Transfer(ctx context.Context, source, target *domain.BankAccount, amount decimal.Decimal, note string) (*Outcome, error) {
	sourceKind := source.Provider.Kind()
	targetKind := target.Provider.Kind()

	strategy, ok := r.exact[Pair{Source: sourceKind, Target: targetKind}]
	if !ok {
		strategy, ok = r.fromSource[sourceKind]
	}
	if !ok || strategy == nil {
		return nil, fmt.Errorf("%w: %s->%s", errs.ErrRouteNotSupported, sourceKind, targetKind)
	}

	amount = amount.RoundBank(2)

	r.logger.Info("Dispatching transfer", map[string]interface{}{
		"source_provider": string(sourceKind),
		"target_provider": string(targetKind),
		"amount":          amount.String(),
		"currency":        string(source.Currency),
	})

	return strategy.Handle(ctx, source, target, amount, note)
}
