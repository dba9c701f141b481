package tenant_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtpay/infras/otel/mocks"
	tenantMocks "courtpay/internal/domains/tenant/mocks"
	"courtpay/internal/domains/tenant/model/dto"
	"courtpay/internal/handlers/tenant"
	"courtpay/shared/failure"
)

func newRouter(svc *tenantMocks.MockPaymentSettings) *chi.Mux {
	handler := tenant.New(svc, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return router
}

func TestHandler_UpdatePaymentCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := tenantMocks.NewMockPaymentSettings(ctrl)
	router := newRouter(svc)

	svc.EXPECT().UpdatePaymentCredentials(gomock.Any(), "t-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req dto.UpdatePaymentCredentialsRequest) (dto.PaymentSettingsResponse, error) {
			require.NotNil(t, req.AccessToken)
			assert.Equal(t, "APP_USR-rotated", *req.AccessToken)
			require.NotNil(t, req.Environment)
			assert.Equal(t, "production", *req.Environment)

			return dto.PaymentSettingsResponse{TenantID: "t-1", PaymentEnabled: true, Environment: "production", HasAccessToken: true}, nil
		})

	body := `{"access_token":"APP_USR-rotated","environment":"production"}`
	request := httptest.NewRequest(http.MethodPut, "/tenants/t-1/payment-credentials", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"has_access_token":true`)
	assert.NotContains(t, recorder.Body.String(), "APP_USR")
}

func TestHandler_UpdatePaymentCredentials_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
	}{
		{name: "unknown environment", body: `{"environment":"staging"}`, wantCode: http.StatusBadRequest},
		{name: "short token", body: `{"access_token":"abc"}`, wantCode: http.StatusBadRequest},
		{name: "not json", body: `access_token=abc`, wantCode: http.StatusBadRequest},
		{name: "tenant not found", body: `{"payment_enabled":false}`, svcErr: failure.NotFound("tenant t-1 not found"), wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := tenantMocks.NewMockPaymentSettings(ctrl)
			router := newRouter(svc)

			if tt.svcErr != nil {
				svc.EXPECT().UpdatePaymentCredentials(gomock.Any(), "t-1", gomock.Any()).Return(dto.PaymentSettingsResponse{}, tt.svcErr)
			}

			request := httptest.NewRequest(http.MethodPut, "/tenants/t-1/payment-credentials", strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}

func TestHandler_InvalidatePaymentCache(t *testing.T) {
	tests := []struct {
		name     string
		svcErr   error
		wantCode int
	}{
		{name: "invalidated", wantCode: http.StatusOK},
		{name: "failure", svcErr: errors.New("redis down"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := tenantMocks.NewMockPaymentSettings(ctrl)
			router := newRouter(svc)

			svc.EXPECT().InvalidateCache(gomock.Any(), "t-1").Return(tt.svcErr)

			request := httptest.NewRequest(http.MethodDelete, "/tenants/t-1/payment-cache", nil)
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}
