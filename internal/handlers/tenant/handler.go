package tenant

import (
	"courtpay/infras/otel"
	"courtpay/internal/domains/tenant/model/dto"
	"courtpay/internal/domains/tenant/service"
	"courtpay/shared/constant"
	"courtpay/shared/validator"
	"courtpay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.PaymentSettings
	otel    otel.Otel
}

func New(service service.PaymentSettings, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/tenants/{id}", func(routerGroup chi.Router) {
		routerGroup.Put("/payment-credentials", handler.UpdatePaymentCredentials)
		routerGroup.Delete("/payment-cache", handler.InvalidatePaymentCache)
	})
}

// UpdatePaymentCredentials rotates the payment provider credentials of a tenant.
// @Summary Update tenant payment credentials @Admin
// @Description Store new provider credentials for a tenant. Secrets are encrypted at rest and cached providers are dropped.
// @Tags Tenant
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param request body dto.UpdatePaymentCredentialsRequest true "Update Payment Credentials Request"
// @Success 200 {object} dto.PaymentSettingsResponse
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tenants/{id}/payment-credentials [put]
// @Security BearerAuth
func (handler *Handler) UpdatePaymentCredentials(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePaymentCredentials")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.UpdatePaymentCredentialsRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	settings, err := handler.service.UpdatePaymentCredentials(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("tenant_id", id).Msg("failed to update payment credentials")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Payment credentials updated by user " + user)

	response.WithJSON(writer, http.StatusOK, settings)
}

// InvalidatePaymentCache drops cached credentials and providers of a tenant.
// @Summary Invalidate tenant payment cache @Admin
// @Tags Tenant
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Message
// @Failure 500 {object} response.Error
// @Router /v1/tenants/{id}/payment-cache [delete]
// @Security BearerAuth
func (handler *Handler) InvalidatePaymentCache(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".InvalidatePaymentCache")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.InvalidateCache(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("tenant_id", id).Msg("failed to invalidate payment cache")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Payment cache invalidated")
}
