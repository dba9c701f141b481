//go:build wireinject
// +build wireinject

package di

import (
	"courtpay/config"
	"courtpay/infras/jwt"
	"courtpay/infras/kafka"
	"courtpay/infras/otel"
	"courtpay/infras/postgres"
	"courtpay/infras/redis"
	"courtpay/infras/s3"
	"courtpay/permissions"
	"courtpay/shared/cache"
	"courtpay/transport/http"
	"courtpay/transport/http/middleware"
	"courtpay/transport/http/router"

	"github.com/google/wire"

	bookingConflict "courtpay/internal/domains/booking/conflict"
	bookingRepository "courtpay/internal/domains/booking/repository"
	bookingService "courtpay/internal/domains/booking/service"
	credentialService "courtpay/internal/domains/credential/service"
	gatewayService "courtpay/internal/domains/gateway/service"
	notificationService "courtpay/internal/domains/notification/service"
	paymentRepository "courtpay/internal/domains/payment/repository"
	paymentService "courtpay/internal/domains/payment/service"
	reconciliationArchive "courtpay/internal/domains/reconciliation/archive"
	reconciliationService "courtpay/internal/domains/reconciliation/service"
	reconciliationSignature "courtpay/internal/domains/reconciliation/signature"
	refundService "courtpay/internal/domains/refund/service"
	tenantRepository "courtpay/internal/domains/tenant/repository"
	tenantService "courtpay/internal/domains/tenant/service"

	paymentHandler "courtpay/internal/handlers/payment"
	refundHandler "courtpay/internal/handlers/refund"
	tenantHandler "courtpay/internal/handlers/tenant"
	webhookHandler "courtpay/internal/handlers/webhook"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	provideNow,
	provideLocker,
	provideSecretBox,
)

var tenantDomain = wire.NewSet(
	tenantRepository.New,
	tenantService.New,
	credentialService.New,
	gatewayService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	paymentRepository.New,
	bookingConflict.New,
	bookingService.New,
	paymentService.New,
)

var reconciliationDomain = wire.NewSet(
	refundService.New,
	notificationService.New,
	reconciliationArchive.New,
	reconciliationSignature.New,
	reconciliationService.New,
)

var domains = wire.NewSet(
	tenantDomain,
	bookingDomain,
	reconciliationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	webhookHandler.New,
	refundHandler.New,
	paymentHandler.New,
	tenantHandler.New,
	router.New,
)

func InitializeService() (*http.HTTP, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		provideServer,
	)

	return &http.HTTP{}, nil
}
