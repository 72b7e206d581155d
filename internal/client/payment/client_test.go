package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ferrors "github.com/ferremas/backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:      srv.URL,
		CommerceCode: "597055555532",
		APIKey:       "test-api-key",
		ReturnURL:    "https://shop.example.com/payments/return",
		Timeout:      2 * time.Second,
	})
	return client, srv
}

func Test_Create_Success(t *testing.T) {
	var gotReq *http.Request
	var gotBody map[string]any
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"token":"tok-123","url":"https://webpay.example.com/init"}`))
	})
	defer srv.Close()

	tx, err := client.Create(context.Background(), "order-1", "session-1", 19900)

	require.NoError(t, err)
	assert.Equal(t, "tok-123", tx.Token)
	assert.Equal(t, "https://webpay.example.com/init", tx.URL)

	assert.Equal(t, http.MethodPost, gotReq.Method)
	assert.Equal(t, "/rswebpaytransaction/api/webpay/v1.2/transactions", gotReq.URL.Path)
	assert.Equal(t, "597055555532", gotReq.Header.Get("Tbk-Api-Key-Id"))
	assert.Equal(t, "test-api-key", gotReq.Header.Get("Tbk-Api-Key-Secret"))

	assert.Equal(t, "order-1", gotBody["buy_order"])
	assert.Equal(t, "session-1", gotBody["session_id"])
	assert.Equal(t, float64(19900), gotBody["amount"])
	assert.Equal(t, "https://shop.example.com/payments/return", gotBody["return_url"])
}

func Test_Commit_Success(t *testing.T) {
	var gotReq *http.Request
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		_, _ = w.Write([]byte(`{"status":"AUTHORIZED","buy_order":"order-1","session_id":"session-1","amount":19900,"authorization_code":"1213"}`))
	})
	defer srv.Close()

	result, err := client.Commit(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotReq.Method)
	assert.Equal(t, "/rswebpaytransaction/api/webpay/v1.2/transactions/tok-123", gotReq.URL.Path)
	assert.Equal(t, "AUTHORIZED", result.Status)
	assert.Equal(t, int64(19900), result.Amount)
	assert.Equal(t, "1213", result.AuthorizationCode)
}

func Test_Create_GatewayError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer srv.Close()

	_, err := client.Create(context.Background(), "order-1", "session-1", 100)

	assert.ErrorIs(t, err, ferrors.ErrPaymentUnavailable)
}

func Test_Commit_GatewayError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := client.Commit(context.Background(), "tok-123")

	assert.ErrorIs(t, err, ferrors.ErrPaymentUnavailable)
}

func Test_Create_MalformedResponse(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	defer srv.Close()

	_, err := client.Create(context.Background(), "order-1", "session-1", 100)

	assert.ErrorIs(t, err, ferrors.ErrPaymentUnavailable)
}

func Test_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int
	client, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	for range 5 {
		_, err := client.Create(context.Background(), "order-1", "session-1", 100)
		assert.ErrorIs(t, err, ferrors.ErrPaymentUnavailable)
	}
	assert.Equal(t, 5, calls)

	_, err := client.Commit(context.Background(), "tok-123")
	assert.ErrorIs(t, err, ferrors.ErrPaymentUnavailable)
	assert.Equal(t, 5, calls)
}
