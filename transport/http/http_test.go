package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtpay/config"
	"courtpay/infras/jwt"
	"courtpay/infras/otel/mocks"
	paymentMocks "courtpay/internal/domains/payment/mocks"
	reconMocks "courtpay/internal/domains/reconciliation/mocks"
	"courtpay/internal/domains/reconciliation/model/dto"
	refundMocks "courtpay/internal/domains/refund/mocks"
	tenantMocks "courtpay/internal/domains/tenant/mocks"
	"courtpay/internal/handlers/payment"
	"courtpay/internal/handlers/refund"
	"courtpay/internal/handlers/tenant"
	"courtpay/internal/handlers/webhook"
	"courtpay/permissions"
	cacheMocks "courtpay/shared/cache/mocks"
	transport "courtpay/transport/http"
	"courtpay/transport/http/middleware"
	"courtpay/transport/http/router"
)

func newServer(t *testing.T) (*transport.HTTP, *reconMocks.MockEngine, *reconMocks.MockArchiver) {
	t.Helper()

	ctrl := gomock.NewController(t)
	engine := reconMocks.NewMockEngine(ctrl)
	archiver := reconMocks.NewMockArchiver(ctrl)
	redisCache := cacheMocks.NewMockRedisCache(ctrl)
	ot := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "test-secret"

	handlers := router.DomainHandlers{
		Webhook: webhook.New(engine, archiver, reconMocks.NewMockVerifier(ctrl), cfg, ot),
		Refund:  refund.New(refundMocks.NewMockRefund(ctrl), redisCache, cfg, ot),
		Payment: payment.New(paymentMocks.NewMockLedger(ctrl), ot),
		Tenant:  tenant.New(tenantMocks.NewMockPaymentSettings(ctrl), ot),
	}

	r := router.New(
		handlers,
		middleware.NewAppMiddleware(ot, cfg, redisCache),
		middleware.NewAuthRoleMiddleware(jwt.New(cfg), ot, permissions.Get(), cfg),
	)

	return transport.New(cfg, r), engine, archiver
}

func TestHTTP_Health(t *testing.T) {
	server, _, _ := newServer(t)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, transport.ServerStateReady, server.State())
}

func TestHTTP_WebhookSkipsAuth(t *testing.T) {
	server, engine, archiver := newServer(t)

	archived := make(chan struct{})
	archiver.EXPECT().Archive(gomock.Any(), "t-1", gomock.Any()).Do(func(context.Context, string, []byte) { close(archived) })
	engine.EXPECT().Reconcile(gomock.Any(), "t-1", gomock.Any()).Return(dto.Result{Processed: true, BookingID: "b-1"})

	body := `{"type":"payment","data":{"id":1}}`
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/webhooks/payments/t-1", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, recorder.Code)
	<-archived
}

func TestHTTP_AdminRoutesRequireAuth(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodDelete, path: "/v1/tenants/t-1/payment-cache"},
		{method: http.MethodGet, path: "/v1/bookings/b-1/payments"},
		{method: http.MethodPost, path: "/v1/bookings/b-1/refunds"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			server, _, _ := newServer(t)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}
