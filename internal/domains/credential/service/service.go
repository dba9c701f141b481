package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/config"
	"courtpay/infras/otel"
	"courtpay/internal/domains/gateway/model"
	tenantModel "courtpay/internal/domains/tenant/model"
	tenantRepo "courtpay/internal/domains/tenant/repository"
	"courtpay/shared"
	"courtpay/shared/constant"
	"courtpay/shared/secret"
	"courtpay/shared/ttlcache"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const defaultTTL = 5 * time.Minute

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrTenantInactive     = errors.New("tenant is inactive")
	ErrProviderDisabled   = errors.New("payment provider disabled for tenant")
	ErrCredentialsMissing = errors.New("payment credentials missing for tenant")
	ErrDecryptionFailed   = errors.New("payment credentials could not be decrypted")
)

type Resolver interface {
	Resolve(ctx context.Context, tenantID string) (model.Credentials, error)
	// Invalidate must be called by anything that changes a tenant's payment settings.
	Invalidate(tenantID string)
}

type resolverImpl struct {
	repo  tenantRepo.Tenant
	box   secret.Box
	otel  otel.Otel
	cache *ttlcache.Cache[model.Credentials]
	group singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

func New(repo tenantRepo.Tenant, box secret.Box, cfg *config.Config, otel otel.Otel) Resolver {
	ttl := time.Duration(cfg.Payment.CredentialTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return NewWithClock(repo, box, ttl, otel, time.Now)
}

func NewWithClock(repo tenantRepo.Tenant, box secret.Box, ttl time.Duration, otel otel.Otel, now func() time.Time) Resolver {
	return &resolverImpl{
		repo:        repo,
		box:         box,
		otel:        otel,
		cache:       ttlcache.New(ttl, ttlcache.WithClock[model.Credentials](now)),
		generations: make(map[string]uint64),
	}
}

func (r *resolverImpl) Resolve(ctx context.Context, tenantID string) (res model.Credentials, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".credential.Resolve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("tenant.id", tenantID)

	if tenantID == "" {
		return res, ErrTenantNotFound
	}

	if cached, ok := r.cache.Get(tenantID); ok {
		scope.SetAttribute("cache.hit", true)

		return cached, nil
	}

	generation := r.generation(tenantID)

	ch := r.group.DoChan(tenantID, func() (any, error) {
		return r.load(context.WithoutCancel(ctx), tenantID, generation)
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return res, result.Err
		}

		creds, _ := result.Val.(model.Credentials)

		return creds, nil
	case <-ctx.Done():
		return res, fmt.Errorf("resolving credentials for tenant %s: %w", tenantID, ctx.Err())
	}
}

func (r *resolverImpl) Invalidate(tenantID string) {
	r.mu.Lock()
	r.generations[tenantID]++
	r.mu.Unlock()

	r.group.Forget(tenantID)
	r.cache.Delete(tenantID)

	log.Info().Str("tenant_id", tenantID).Msg("payment credentials cache invalidated")
}

func (r *resolverImpl) generation(tenantID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.generations[tenantID]
}

func (r *resolverImpl) load(ctx context.Context, tenantID string, generation uint64) (model.Credentials, error) {
	tenant, err := r.repo.Get(ctx, shared.FilterByID(tenantID, tenantModel.FieldID, tenantModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to load tenant")

		return model.Credentials{}, fmt.Errorf("failed to load tenant %s: %w", tenantID, err)
	}

	creds, err := r.decode(tenant)
	if err != nil {
		return model.Credentials{}, fmt.Errorf("tenant %s: %w", tenantID, err)
	}

	// A load that raced with Invalidate must not repopulate the cache with stale secrets.
	if r.generation(tenantID) == generation {
		r.cache.Set(tenantID, creds)
	}

	return creds, nil
}

func (r *resolverImpl) decode(tenant tenantModel.Tenant) (model.Credentials, error) {
	switch {
	case tenant.ID == "":
		return model.Credentials{}, ErrTenantNotFound
	case !tenant.Active:
		return model.Credentials{}, ErrTenantInactive
	case !tenant.PaymentEnabled:
		return model.Credentials{}, ErrProviderDisabled
	case tenant.PaymentAccessToken == nil || *tenant.PaymentAccessToken == "":
		return model.Credentials{}, ErrCredentialsMissing
	}

	token, err := r.open(tenantModel.FieldPaymentAccessToken, tenant.PaymentAccessToken)
	if err != nil {
		return model.Credentials{}, err
	}

	publicKey, err := r.open(tenantModel.FieldPaymentPublicKey, tenant.PaymentPublicKey)
	if err != nil {
		return model.Credentials{}, err
	}

	webhookSecret, err := r.open(tenantModel.FieldPaymentWebhookSecret, tenant.PaymentWebhookSecret)
	if err != nil {
		return model.Credentials{}, err
	}

	environment := tenant.PaymentEnvironment
	if environment != model.EnvironmentProduction {
		environment = model.EnvironmentSandbox
	}

	return model.Credentials{
		AccessToken:   token,
		PublicKey:     publicKey,
		WebhookSecret: webhookSecret,
		Environment:   environment,
		UpdatedAt:     tenant.PaymentCredentialsUpdatedAt,
	}, nil
}

func (r *resolverImpl) open(field string, value *string) (string, error) {
	if value == nil || *value == "" {
		return "", nil
	}

	plain, err := r.box.Decrypt(*value)
	if err != nil {
		log.Error().Err(err).Str("field", field).Msg("failed to decrypt tenant secret")

		return "", fmt.Errorf("%w: %s: %w", ErrDecryptionFailed, field, err)
	}

	return plain, nil
}
