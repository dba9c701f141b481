package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtpay/config"
	"courtpay/infras/otel/mocks"
	credentialMocks "courtpay/internal/domains/credential/mocks"
	credential "courtpay/internal/domains/credential/service"
	"courtpay/internal/domains/gateway/client"
	"courtpay/internal/domains/gateway/model"
	"courtpay/internal/domains/gateway/service"
)

type builtGateway struct {
	client.Gateway
	creds model.Credentials
}

func recordingBuilder(built *[]model.Credentials) service.Builder {
	return func(creds model.Credentials) client.Gateway {
		*built = append(*built, creds)

		return &builtGateway{Gateway: client.NewStandIn(), creds: creds}
	}
}

func TestFactory_GetProvider(t *testing.T) {
	global := &builtGateway{Gateway: client.NewStandIn(), creds: model.Credentials{AccessToken: "global"}}
	standIn := client.NewStandIn()

	tests := []struct {
		name        string
		global      client.Gateway
		resolveErr  error
		wantGateway func(got client.Gateway) bool
		wantErr     error
	}{
		{
			name: "tenant credentials build a dedicated gateway",
			wantGateway: func(got client.Gateway) bool {
				b, ok := got.(*builtGateway)

				return ok && b.creds.AccessToken == "tenant-token"
			},
		},
		{
			name:        "inactive tenant gets stand-in even with global configured",
			global:      global,
			resolveErr:  fmt.Errorf("tenant t1: %w", credential.ErrTenantInactive),
			wantGateway: func(got client.Gateway) bool { return got == standIn },
		},
		{
			name:        "disabled provider gets stand-in",
			global:      global,
			resolveErr:  credential.ErrProviderDisabled,
			wantGateway: func(got client.Gateway) bool { return got == standIn },
		},
		{
			name:        "missing credentials fall back to global",
			global:      global,
			resolveErr:  credential.ErrCredentialsMissing,
			wantGateway: func(got client.Gateway) bool { return got == global },
		},
		{
			name:        "missing credentials without global fall back to stand-in",
			resolveErr:  credential.ErrCredentialsMissing,
			wantGateway: func(got client.Gateway) bool { return got == standIn },
		},
		{
			name:       "decryption failure is an error",
			global:     global,
			resolveErr: credential.ErrDecryptionFailed,
			wantErr:    credential.ErrDecryptionFailed,
		},
		{
			name:       "storage failure is an error",
			global:     global,
			resolveErr: errors.New("connection refused"),
			wantErr:    errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			resolver := credentialMocks.NewMockResolver(ctrl)

			var built []model.Credentials

			factory := service.NewWithBuilder(resolver, time.Minute, recordingBuilder(&built), tt.global, standIn, mocks.NewOtel())

			resolver.EXPECT().Resolve(gomock.Any(), "t1").
				Return(model.Credentials{AccessToken: "tenant-token"}, tt.resolveErr).
				Times(1)

			got, err := factory.GetProvider(context.Background(), "t1")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.wantGateway(got))

			again, err := factory.GetProvider(context.Background(), "t1")
			require.NoError(t, err)
			assert.Same(t, got, again)
		})
	}
}

func TestFactory_EmptyTenantUsesGlobal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	global := client.NewStandIn()
	standIn := client.NewStandIn()

	withGlobal := service.NewWithBuilder(credentialMocks.NewMockResolver(ctrl), time.Minute, nil, global, standIn, mocks.NewOtel())
	withoutGlobal := service.NewWithBuilder(credentialMocks.NewMockResolver(ctrl), time.Minute, nil, nil, standIn, mocks.NewOtel())

	got, err := withGlobal.GetProvider(context.Background(), "")
	require.NoError(t, err)
	assert.Same(t, global, got)

	got, err = withoutGlobal.GetProvider(context.Background(), "")
	require.NoError(t, err)
	assert.Same(t, standIn, got)
}

func TestFactory_Invalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	resolver := credentialMocks.NewMockResolver(ctrl)

	var built []model.Credentials

	factory := service.NewWithBuilder(resolver, time.Minute, recordingBuilder(&built), nil, client.NewStandIn(), mocks.NewOtel())

	gomock.InOrder(
		resolver.EXPECT().Resolve(gomock.Any(), "t1").Return(model.Credentials{AccessToken: "old"}, nil),
		resolver.EXPECT().Invalidate("t1"),
		resolver.EXPECT().Resolve(gomock.Any(), "t1").Return(model.Credentials{AccessToken: "new"}, nil),
	)

	_, err := factory.GetProvider(context.Background(), "t1")
	require.NoError(t, err)

	factory.Invalidate("t1")

	_, err = factory.GetProvider(context.Background(), "t1")
	require.NoError(t, err)

	require.Len(t, built, 2)
	assert.Equal(t, "new", built[1].AccessToken)
}

func TestHTTPBuilder(t *testing.T) {
	cfg := &config.Config{}
	cfg.Payment.Provider.Name = "mercadopago"
	cfg.Payment.Provider.SandboxBaseURL = "https://sandbox.example"
	cfg.Payment.Provider.ProductionBaseURL = "https://api.example"

	gateway := service.HTTPBuilder(cfg, mocks.NewOtel())(model.Credentials{Environment: model.EnvironmentProduction})

	assert.Equal(t, "mercadopago", gateway.Name())
}
