// Package handler provides the HTTP surface of the banker daemon. Handlers
// consume the core programmatically; none of the transfer logic lives here.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"banker/internal/transfer"
	"banker/pkg/domain"
	errs "banker/pkg/errors"
	"banker/pkg/logger"
	"banker/pkg/validator"
)

// BankHandler serves accounts, rates, and transfer initiation.
type BankHandler struct {
	providers []domain.Provider
	router    *transfer.Router
	validator *validator.Validator
	logger    logger.Logger
}

func NewBankHandler(providers []domain.Provider, router *transfer.Router, val *validator.Validator, log logger.Logger) *BankHandler {
	return &BankHandler{
		providers: providers,
		router:    router,
		validator: val,
		logger:    log,
	}
}

type accountResponse struct {
	Provider    string  `json:"provider"`
	ID          string  `json:"id"`
	Number      string  `json:"number,omitempty"`
	Name        string  `json:"name,omitempty"`
	Currency    string  `json:"currency"`
	AccountType string  `json:"account_type"`
	ProfileType string  `json:"profile_type"`
	Balance     *string `json:"balance,omitempty"`
}

// ListAccounts returns the normalized accounts of every configured provider.
func (h *BankHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	var accounts []accountResponse
	for _, p := range h.providers {
		for _, a := range p.Accounts() {
			resp := accountResponse{
				Provider:    string(p.Kind()),
				ID:          a.ID,
				Number:      a.Number,
				Name:        a.Name,
				Currency:    string(a.Currency),
				AccountType: string(a.AccountType),
				ProfileType: string(a.ProfileType),
			}
			if a.Balance != nil {
				s := a.Balance.String()
				resp.Balance = &s
			}
			accounts = append(accounts, resp)
		}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// ListRecipients returns the registered recipients of every configured
// provider.
func (h *BankHandler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients := make(map[string][]*domain.Recipient)
	for _, p := range h.providers {
		recipients[string(p.Kind())] = p.Recipients()
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"recipients": recipients})
}

// GetRate returns a conversion rate using query parameters (?from=...&to=...).
// The first provider able to quote the pair answers.
func (h *BankHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := domain.ParseCurrency(strings.TrimSpace(q.Get("from")))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid 'from' currency")
		return
	}
	to, err := domain.ParseCurrency(strings.TrimSpace(q.Get("to")))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid 'to' currency")
		return
	}

	for _, p := range h.providers {
		rate, err := p.ConversionRate(r.Context(), from, to)
		if err != nil {
			continue
		}
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"from":     from,
			"to":       to,
			"rate":     rate.String(),
			"provider": p.Kind(),
		})
		return
	}

	h.respondError(w, http.StatusNotFound, "Rate not available")
}

type transferRequest struct {
	SourceNumber string `json:"source_number" validate:"required"`
	TargetNumber string `json:"target_number" validate:"required"`
	Amount       string `json:"amount" validate:"required,amount"`
	Note         string `json:"note"`
}

// CreateTransfer initiates a transfer between two accounts identified by
// their external account numbers. A provider-side rejection is returned as a
// distinct outcome, not an error.
func (h *BankHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "Request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	source, err := h.findAccount(req.SourceNumber)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Source account not found")
		return
	}
	target, err := h.findAccount(req.TargetNumber)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Target account not found")
		return
	}

	outcome, err := h.router.Transfer(r.Context(), source, target, amount, req.Note)
	if err != nil {
		h.logger.Error("Transfer failed", map[string]interface{}{"error": err.Error()})
		h.respondError(w, transferStatus(err), err.Error())
		return
	}

	status := http.StatusCreated
	if outcome.Rejected() {
		status = http.StatusOK
	}
	h.respondJSON(w, status, outcome)
}

func transferStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrRouteNotSupported),
		errors.Is(err, errs.ErrCrossProfileConversion),
		errors.Is(err, errs.ErrNoFreePaymentOption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrAccountNotFound),
		errors.Is(err, errs.ErrRecipientNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (h *BankHandler) findAccount(number string) (*domain.BankAccount, error) {
	for _, p := range h.providers {
		account, err := p.FindAccount(domain.AccountQuery{Number: &number})
		if err == nil {
			return account, nil
		}
	}
	return nil, errs.ErrAccountNotFound
}

func (h *BankHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (h *BankHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
