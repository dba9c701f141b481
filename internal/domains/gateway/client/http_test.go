package client_test

import (
	"context"
	"courtpay/infras/otel/mocks"
	"courtpay/internal/domains/gateway/client"
	"courtpay/internal/domains/gateway/model"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.HandlerFunc, timeout time.Duration) client.Gateway {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return client.NewHTTPGateway(
		client.HTTPConfig{Name: "mercadopago", BaseURL: server.URL + "/", Timeout: timeout},
		model.Credentials{AccessToken: "APP_USR-token", Environment: model.EnvironmentSandbox},
		mocks.NewOtel(),
	)
}

func TestHTTPGateway_FetchPayment(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/123456", r.URL.Path)
		assert.Equal(t, "Bearer APP_USR-token", r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `{
			"id": 123456,
			"status": "approved",
			"status_detail": "accredited",
			"transaction_amount": 150.5,
			"date_approved": "2024-06-15T10:02:03.000-03:00",
			"external_reference": "b1",
			"payment_method_id": "pix",
			"refunds": [{"id": 99, "amount": 20, "status": "approved"}]
		}`)
	}, time.Second)

	got, err := gateway.FetchPayment(context.Background(), "123456")
	require.NoError(t, err)

	assert.Equal(t, "mercadopago", gateway.Name())
	assert.Equal(t, "123456", got.ID)
	assert.True(t, got.IsApproved())
	assert.Equal(t, "150.5", got.TransactionAmount.String())
	assert.Equal(t, "b1", got.ExternalReference)
	assert.Equal(t, "pix", got.PaymentMethod)
	require.NotNil(t, got.DateApproved)
	assert.Equal(t, time.Date(2024, 6, 15, 13, 2, 3, 0, time.UTC), got.DateApproved.UTC())
	require.Len(t, got.Refunds, 1)
	assert.Equal(t, "99", got.Refunds[0].ID)
}

func TestHTTPGateway_FetchPaymentErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		delay    time.Duration
		sentinel error
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Payment not found","error":"not_found"}`, sentinel: model.ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, sentinel: model.ErrTransient},
		{name: "timeout", status: http.StatusOK, body: `{}`, delay: 200 * time.Millisecond, sentinel: model.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(tt.delay)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, 50*time.Millisecond)

			_, err := gateway.FetchPayment(context.Background(), "1")

			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestHTTPGateway_Refund(t *testing.T) {
	t.Run("partial refund sends amount and idempotency key", func(t *testing.T) {
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/payments/123/refunds", r.URL.Path)
			assert.Equal(t, "idem-1", r.Header.Get("X-Idempotency-Key"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "25.5", body["amount"])

			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id": 777, "payment_id": 123, "amount": 25.5, "status": "approved"}`)
		}, time.Second)

		amount := decimal.RequireFromString("25.5")

		got, err := gateway.Refund(context.Background(), "123", &amount, "idem-1")
		require.NoError(t, err)

		assert.Equal(t, model.RefundOutcome{ID: "777", PaymentID: "123", Amount: amount, Status: "approved"}, got)
	})

	t.Run("full refund sends empty body", func(t *testing.T) {
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{}`, string(raw))

			_, _ = io.WriteString(w, `{"id": "r-1", "status": "approved", "amount": 10}`)
		}, time.Second)

		got, err := gateway.Refund(context.Background(), "123", nil, "")
		require.NoError(t, err)

		assert.Equal(t, "r-1", got.ID)
		assert.Equal(t, "123", got.PaymentID)
	})

	t.Run("provider message is classified", func(t *testing.T) {
		gateway := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"bad_request","cause":[{"code":2085,"description":"Payment already refunded"}]}`)
		}, time.Second)

		_, err := gateway.Refund(context.Background(), "123", nil, "")

		assert.ErrorIs(t, err, model.ErrAlreadyRefunded)
		assert.Equal(t, model.KindAlreadyRefunded, model.KindOf(err))
	})
}
