// Package transport performs the HTTP request/response cycle for provider
// calls. The contract with the core is deliberately narrow: given a verb,
// URL, headers, and optional JSON body, return the decoded JSON payload or a
// typed transport error. Retry policy, if any, belongs here, never in the
// core.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"banker/pkg/logger"
)

// Request describes one outbound provider call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   interface{}

	// Accept lists the status codes treated as success. Empty means 200/201.
	// Strategies that tolerate a conflict status as "already processed" add
	// 409 explicitly.
	Accept []int
}

// Error is a non-success provider response. The raw body is retained for
// diagnostics.
type Error struct {
	Status int
	Body   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider call failed with status %d: %s", e.Status, e.Body)
}

// IsStatus reports whether err is a transport error with the given status.
func IsStatus(err error, status int) bool {
	var te *Error
	return errors.As(err, &te) && te.Status == status
}

// Caller issues provider calls. Adapters depend on this interface so tests
// can substitute canned responses.
type Caller interface {
	Call(ctx context.Context, req Request) (json.RawMessage, error)
}

// Client is the production Caller on top of net/http.
type Client struct {
	http   *http.Client
	logger logger.Logger
}

func NewClient(timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

func (c *Client) Call(ctx context.Context, req Request) (json.RawMessage, error) {
	var reqBody io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if !accepted(resp.StatusCode, req.Accept) {
		c.logger.Debug("Provider call rejected", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
			"status": resp.StatusCode,
		})
		return nil, &Error{Status: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}

func accepted(status int, accept []int) bool {
	if len(accept) == 0 {
		return status == http.StatusOK || status == http.StatusCreated
	}
	for _, s := range accept {
		if status == s {
			return true
		}
	}
	return false
}
