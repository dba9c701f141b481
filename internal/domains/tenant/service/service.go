package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	gwService "courtpay/internal/domains/gateway/service"
	"courtpay/internal/domains/tenant/model"
	"courtpay/internal/domains/tenant/model/dto"
	"courtpay/internal/domains/tenant/repository"
	"courtpay/shared"
	"courtpay/shared/constant"
	"courtpay/shared/failure"
	"courtpay/shared/secret"
	"courtpay/shared/timezone"
	"courtpay/shared/validator"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type PaymentSettings interface {
	UpdatePaymentCredentials(ctx context.Context, tenantID string, req dto.UpdatePaymentCredentialsRequest) (dto.PaymentSettingsResponse, error)
	InvalidateCache(ctx context.Context, tenantID string) error
}

type serviceImpl struct {
	repo    repository.Tenant
	box     secret.Box
	factory gwService.Factory
	otel    otel.Otel
}

func New(repo repository.Tenant, box secret.Box, factory gwService.Factory, otel otel.Otel) PaymentSettings {
	return &serviceImpl{
		repo:    repo,
		box:     box,
		factory: factory,
		otel:    otel,
	}
}

func (s *serviceImpl) UpdatePaymentCredentials(ctx context.Context, tenantID string, req dto.UpdatePaymentCredentialsRequest) (res dto.PaymentSettingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tenant.UpdatePaymentCredentials")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("no credential field to update") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == "" {
		user = constant.SystemUser
	}

	if err = s.ensureExists(ctx, tenantID); err != nil {
		return res, err
	}

	update, err := req.ToModel(s.box)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to seal payment credentials")

		if errors.Is(err, secret.ErrKeyMissing) {
			return res, failure.ServiceUnavailable("credential encryption is not configured") // nolint:wrapcheck
		}

		return res, failure.InternalError(err) // nolint:wrapcheck
	}

	fields := shared.TransformFields(update, user)
	fields[model.FieldPaymentCredentialsUpdatedAt] = timezone.Now()

	filter := shared.FilterByID(tenantID, model.FieldID, model.TableName)

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to update payment credentials")

		return res, fmt.Errorf("failed to update payment credentials of tenant %s: %w", tenantID, err)
	}

	s.factory.Invalidate(tenantID)

	log.Info().Str("tenant_id", tenantID).Str("modified_by", user).Msg("payment credentials rotated")

	tenant, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to reload tenant")

		return res, fmt.Errorf("failed to reload tenant %s: %w", tenantID, err)
	}

	res.FromModel(tenant)

	return res, nil
}

func (s *serviceImpl) InvalidateCache(ctx context.Context, tenantID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tenant.InvalidateCache")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureExists(ctx, tenantID); err != nil {
		return err
	}

	s.factory.Invalidate(tenantID)

	log.Info().Str("tenant_id", tenantID).Msg("payment provider cache invalidated")

	return nil
}

func (s *serviceImpl) ensureExists(ctx context.Context, tenantID string) error {
	exists, err := s.repo.Exist(ctx, shared.FilterByID(tenantID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to check tenant")

		return fmt.Errorf("failed to check tenant %s: %w", tenantID, err)
	}

	if !exists {
		return failure.NotFound(fmt.Sprintf("tenant %s not found", tenantID)) // nolint:wrapcheck
	}

	return nil
}
