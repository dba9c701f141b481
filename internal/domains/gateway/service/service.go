package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/config"
	"courtpay/infras/otel"
	credential "courtpay/internal/domains/credential/service"
	"courtpay/internal/domains/gateway/client"
	"courtpay/internal/domains/gateway/model"
	"courtpay/shared/constant"
	"courtpay/shared/ttlcache"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultProviderTimeout = 5 * time.Second

type Factory interface {
	// GetProvider returns the gateway for tenantID. An empty tenantID selects the global provider.
	GetProvider(ctx context.Context, tenantID string) (client.Gateway, error)
	// Invalidate drops the cached provider and credentials of tenantID.
	Invalidate(tenantID string)
}

// Builder creates a gateway bound to one credential bundle.
type Builder func(creds model.Credentials) client.Gateway

type factoryImpl struct {
	resolver credential.Resolver
	otel     otel.Otel
	cache    *ttlcache.Cache[client.Gateway]
	build    Builder
	global   client.Gateway
	standIn  client.Gateway
}

func New(resolver credential.Resolver, cfg *config.Config, otel otel.Otel) Factory {
	build := HTTPBuilder(cfg, otel)

	var global client.Gateway
	if cfg.Payment.Global.AccessToken != "" {
		global = build(model.Credentials{
			AccessToken:   cfg.Payment.Global.AccessToken,
			PublicKey:     cfg.Payment.Global.PublicKey,
			WebhookSecret: cfg.Payment.Global.WebhookSecret,
			Environment:   cfg.Payment.Global.Environment,
		})
	} else {
		log.Warn().Msg("no global payment credentials configured, tenants without credentials use the stand-in provider")
	}

	ttl := time.Duration(cfg.Payment.CredentialTTLSeconds) * time.Second

	return NewWithBuilder(resolver, ttl, build, global, client.NewStandIn(), otel)
}

// NewWithBuilder accepts a nil global gateway when no process-wide credentials exist.
func NewWithBuilder(resolver credential.Resolver, ttl time.Duration, build Builder, global, standIn client.Gateway, otel otel.Otel) Factory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &factoryImpl{
		resolver: resolver,
		otel:     otel,
		cache:    ttlcache.New[client.Gateway](ttl),
		build:    build,
		global:   global,
		standIn:  standIn,
	}
}

func HTTPBuilder(cfg *config.Config, otel otel.Otel) Builder {
	timeout := time.Duration(cfg.Payment.Provider.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	return func(creds model.Credentials) client.Gateway {
		baseURL := cfg.Payment.Provider.SandboxBaseURL
		if creds.IsProduction() {
			baseURL = cfg.Payment.Provider.ProductionBaseURL
		}

		return client.NewHTTPGateway(client.HTTPConfig{
			Name:    cfg.Payment.Provider.Name,
			BaseURL: baseURL,
			Timeout: timeout,
		}, creds, otel)
	}
}

func (f *factoryImpl) GetProvider(ctx context.Context, tenantID string) (res client.Gateway, err error) {
	ctx, scope := f.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".gateway.GetProvider")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("tenant.id", tenantID)

	if tenantID == "" {
		return f.fallback(), nil
	}

	if cached, ok := f.cache.Get(tenantID); ok {
		return cached, nil
	}

	creds, err := f.resolver.Resolve(ctx, tenantID)

	switch {
	case err == nil:
		res = f.build(creds)
	case errors.Is(err, credential.ErrTenantInactive), errors.Is(err, credential.ErrProviderDisabled):
		// A disabled integration must never transact with someone else's credentials.
		log.Warn().Err(err).Str("tenant_id", tenantID).Msg("payment integration unavailable, using stand-in provider")

		res = f.standIn
	case errors.Is(err, credential.ErrCredentialsMissing):
		log.Info().Str("tenant_id", tenantID).Msg("tenant has no payment credentials, using global provider")

		res = f.fallback()
	default:
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to resolve payment provider")

		return nil, fmt.Errorf("failed to resolve payment provider for tenant %s: %w", tenantID, err)
	}

	f.cache.Set(tenantID, res)
	scope.SetAttribute("provider", res.Name())

	return res, nil
}

func (f *factoryImpl) Invalidate(tenantID string) {
	f.cache.Delete(tenantID)
	f.resolver.Invalidate(tenantID)
}

func (f *factoryImpl) fallback() client.Gateway {
	if f.global != nil {
		return f.global
	}

	return f.standIn
}
