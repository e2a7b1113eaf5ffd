// Command banker lists normalized provider accounts or executes one transfer
// between two accounts identified by their external account numbers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"banker/internal/provider/mercury"
	"banker/internal/provider/wise"
	"banker/internal/transfer"
	"banker/internal/transport"
	"banker/pkg/config"
	"banker/pkg/domain"
	"banker/pkg/logger"
)

func main() {
	var (
		from     = flag.String("from", "", "source account number")
		to       = flag.String("to", "", "target account number")
		amount   = flag.String("amount", "", "amount to transfer, e.g. 12.34")
		note     = flag.String("note", "", "transfer note; also seeds the idempotency key")
		balances = flag.String("in", "", "show balances converted to this currency, e.g. EUR")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.New("banker")

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	ctx := context.Background()
	caller := transport.NewClient(cfg.HTTP.Timeout, log)

	var providers []domain.Provider
	if cfg.Mercury.APIKey != "" {
		client, err := mercury.New(ctx, cfg.Mercury.APIKey, cfg.Mercury.BaseURL, caller, log)
		if err != nil {
			log.Fatal("Failed to initialize mercury", map[string]interface{}{"error": err.Error()})
		}
		providers = append(providers, client)
	}
	if cfg.Wise.APIToken != "" {
		client, err := wise.New(ctx, cfg.Wise.APIToken, cfg.Wise.BaseURL, caller, log)
		if err != nil {
			log.Fatal("Failed to initialize wise", map[string]interface{}{"error": err.Error()})
		}
		providers = append(providers, client)
	}

	if *from != "" || *to != "" || *amount != "" {
		runTransfer(ctx, providers, log, *from, *to, *amount, *note)
		return
	}

	listAccounts(ctx, providers, *balances)
}

func listAccounts(ctx context.Context, providers []domain.Provider, inCurrency string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tNUMBER\tNAME\tTYPE\tPROFILE\tCURRENCY\tBALANCE")

	for _, p := range providers {
		for _, a := range p.Accounts() {
			balance := "-"
			if inCurrency != "" {
				currency, err := domain.ParseCurrency(inCurrency)
				if err == nil {
					if converted, err := a.BalanceIn(ctx, currency); err == nil {
						balance = converted.StringFixed(2) + " " + string(currency)
					}
				}
			} else if a.Balance != nil {
				balance = a.Balance.StringFixed(2) + " " + string(a.Currency)
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.Kind(), a.Number, a.Name, a.AccountType, a.ProfileType, a.Currency, balance)
		}
	}

	w.Flush()
}

func runTransfer(ctx context.Context, providers []domain.Provider, log logger.Logger, from, to, amount, note string) {
	if from == "" || to == "" || amount == "" {
		log.Fatal("Transfer requires -from, -to, and -amount", nil)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		log.Fatal("Invalid amount", map[string]interface{}{"amount": amount})
	}

	source := findAccount(providers, from)
	if source == nil {
		log.Fatal("Source account not found", map[string]interface{}{"number": from})
	}
	target := findAccount(providers, to)
	if target == nil {
		log.Fatal("Target account not found", map[string]interface{}{"number": to})
	}

	router := transfer.NewRouter(log)
	outcome, err := router.Transfer(ctx, source, target, value, note)
	if err != nil {
		log.Fatal("Transfer failed", map[string]interface{}{"error": err.Error()})
	}

	if outcome.Rejected() {
		fmt.Println("transfer rejected by provider")
		return
	}

	tx := outcome.Transaction
	fmt.Printf("transfer %s completed: %s %s -> %s %s (fee %s %s)\n",
		tx.ID, tx.SourceAmount, tx.SourceCurrency, tx.TargetAmount, tx.TargetCurrency,
		tx.FeeAmount, tx.FeeCurrency)
}

func findAccount(providers []domain.Provider, number string) *domain.BankAccount {
	for _, p := range providers {
		if account, err := p.FindAccount(domain.AccountQuery{Number: &number}); err == nil {
			return account
		}
	}
	return nil
}
