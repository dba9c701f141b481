package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtpay/config"
	"courtpay/infras/jwt"
	"courtpay/infras/otel/mocks"
	"courtpay/permissions"
	"courtpay/shared/constant"
	"courtpay/transport/http/middleware"
)

const (
	testSecret = "test-secret"
	testAPIKey = "internal-key"
)

func token(t *testing.T, role string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.Claims{
		UserID:  "u1",
		Role:    role,
		TokenID: "tok-1",
		Type:    jwt.AccessToken,
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  gojwt.NewNumericDate(now),
		},
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.AccessSecret = testSecret
	cfg.App.APIKey = testAPIKey

	perms := permissions.Get()
	require.NotNil(t, perms)

	authRole := middleware.NewAuthRoleMiddleware(jwt.New(cfg), mocks.NewOtel(), perms, cfg)

	ok := func(writer http.ResponseWriter, request *http.Request) {
		user, _ := request.Context().Value(constant.ContextKeyUserID).(string)
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte(user))
	}

	router := chi.NewRouter()
	router.Route("/v1", func(v1 chi.Router) {
		v1.Group(func(admin chi.Router) {
			admin.Use(authRole.APIKey, authRole.Auth, authRole.RBAC)

			admin.Route("/bookings/{id}/refunds", func(group chi.Router) {
				group.Post("/", ok)
			})
			admin.Route("/tenants/{id}", func(group chi.Router) {
				group.Put("/payment-credentials", ok)
			})
		})
	})

	return router
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		header   map[string]string
		wantCode int
		wantUser string
	}{
		{
			name:     "operator may refund",
			method:   http.MethodPost,
			path:     "/v1/bookings/b-1/refunds",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token(t, constant.RoleOperator)},
			wantCode: http.StatusOK,
			wantUser: "u1",
		},
		{
			name:     "operator may not rotate credentials",
			method:   http.MethodPut,
			path:     "/v1/tenants/t-1/payment-credentials",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token(t, constant.RoleOperator)},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "admin may rotate credentials",
			method:   http.MethodPut,
			path:     "/v1/tenants/t-1/payment-credentials",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token(t, constant.RoleAdmin)},
			wantCode: http.StatusOK,
			wantUser: "u1",
		},
		{
			name:     "missing token",
			method:   http.MethodPost,
			path:     "/v1/bookings/b-1/refunds",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "bad scheme",
			method:   http.MethodPost,
			path:     "/v1/bookings/b-1/refunds",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Basic abc"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "token without role",
			method:   http.MethodPost,
			path:     "/v1/bookings/b-1/refunds",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token(t, "")},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "internal api key",
			method:   http.MethodPut,
			path:     "/v1/tenants/t-1/payment-credentials",
			header:   map[string]string{constant.RequestHeaderAPIKey: testAPIKey},
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong api key",
			method:   http.MethodPut,
			path:     "/v1/tenants/t-1/payment-credentials",
			header:   map[string]string{constant.RequestHeaderAPIKey: "guess"},
			wantCode: http.StatusForbidden,
		},
	}

	router := newRouter(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, nil)
			for key, value := range tt.header {
				request.Header.Set(key, value)
			}

			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)

			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, recorder.Body.String())
			}
		})
	}
}
