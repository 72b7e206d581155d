// Package rates provides a client for the central bank exchange rate source.
package rates

import (
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

// usdSeries is the central bank series for the observed USD exchange rate.
const usdSeries = "F073.TCO.PRE.Z.D"

// Quote is a single observation of the USD to CLP exchange rate.
type Quote struct {
	Series     string  `json:"series"`
	Value      float64 `json:"value"`
	ObservedAt string  `json:"observed_at"`
}

// Conversion is the result of converting a USD amount at the latest quote.
type Conversion struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Rate      float64 `json:"rate"`
	Converted float64 `json:"converted"`
}

// Client fetches exchange rates over HTTP. Calls go through a circuit
// breaker so a failing upstream does not tie up request handlers; there is
// no retry logic, a failed call is the caller's problem.
type Client struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Quote]
}

// NewClient creates a rates client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*Quote](gobreaker.Settings{
			Name:    "rates-source",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Latest returns the most recent observed USD to CLP quote.
// Returns ErrRateUnavailable when the source cannot be reached, answers with
// a non-200 status, or the breaker is open.
func (c *Client) Latest(ctx context.Context) (*Quote, error) {
	quote, err := c.breaker.Execute(func() (*Quote, error) {
		return c.fetchLatest(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ferrors.ErrRateUnavailable, err)
	}
	return quote, nil
}

// Convert converts a USD amount to CLP at the latest observed quote.
func (c *Client) Convert(ctx context.Context, amount float64) (*Conversion, error) {
	quote, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return &Conversion{
		From:      "USD",
		To:        "CLP",
		Amount:    amount,
		Rate:      quote.Value,
		Converted: amount * quote.Value,
	}, nil
}

func (c *Client) fetchLatest(ctx context.Context) (*Quote, error) {
	url := fmt.Sprintf("%s/observations/latest?series=%s", c.baseURL, usdSeries)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if quote.Value <= 0 {
		return nil, fmt.Errorf("rate source returned non-positive rate: %f", quote.Value)
	}
	return &quote, nil
}
