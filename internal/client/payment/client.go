// Package payment provides a client for the Webpay-style card payment gateway.
// The gateway is a stateless pass-through from this system's perspective:
// no local transaction record is kept.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ferrors "github.com/ferremas/backend/internal/errors"
	"github.com/sony/gobreaker/v2"
)

const transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

// Transaction is the gateway's answer to an initiated payment: a token
// identifying the transaction and the URL the customer is redirected to.
type Transaction struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Result is the gateway's answer to a confirmed payment.
type Result struct {
	Status            string `json:"status"`
	BuyOrder          string `json:"buy_order"`
	SessionID         string `json:"session_id"`
	Amount            int64  `json:"amount"`
	AuthorizationCode string `json:"authorization_code"`
}

// Config carries the gateway endpoint and merchant credentials.
type Config struct {
	BaseURL      string
	CommerceCode string
	APIKey       string
	ReturnURL    string
	Timeout      time.Duration
}

// Client talks to the payment gateway over HTTP, behind a circuit breaker.
type Client struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewClient creates a payment gateway client.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
			Name:    "payment-gateway",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Create initiates a transaction for the given order, session and amount.
// Returns ErrPaymentUnavailable when the gateway cannot be reached or
// rejects the request.
func (c *Client) Create(ctx context.Context, buyOrder, sessionID string, amount int64) (*Transaction, error) {
	body := map[string]any{
		"buy_order":  buyOrder,
		"session_id": sessionID,
		"amount":     amount,
		"return_url": c.cfg.ReturnURL,
	}
	raw, err := c.do(ctx, http.MethodPost, transactionsPath, body)
	if err != nil {
		return nil, err
	}
	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("%w: failed to decode create response: %w", ferrors.ErrPaymentUnavailable, err)
	}
	return &tx, nil
}

// Commit confirms a transaction by its token and returns the final status.
func (c *Client) Commit(ctx context.Context, token string) (*Result, error) {
	raw, err := c.do(ctx, http.MethodPut, transactionsPath+"/"+token, nil)
	if err != nil {
		return nil, err
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode commit response: %w", ferrors.ErrPaymentUnavailable, err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	raw, err := c.breaker.Execute(func() (json.RawMessage, error) {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Tbk-Api-Key-Id", c.cfg.CommerceCode)
		req.Header.Set("Tbk-Api-Key-Secret", c.cfg.APIKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ferrors.ErrPaymentUnavailable, err)
	}
	return raw, nil
}
