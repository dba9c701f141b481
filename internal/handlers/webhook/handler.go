package webhook

import (
	"context"
	"courtpay/config"
	"courtpay/infras/otel"
	"courtpay/internal/domains/reconciliation/archive"
	"courtpay/internal/domains/reconciliation/model/dto"
	"courtpay/internal/domains/reconciliation/service"
	"courtpay/internal/domains/reconciliation/signature"
	"courtpay/shared/constant"
	"courtpay/shared/failure"
	"courtpay/transport/http/response"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const defaultMaxBodySize = 64 << 10

type Handler struct {
	engine      service.Engine
	archiver    archive.Archiver
	verifier    signature.Verifier
	otel        otel.Otel
	maxBodySize int64
}

func New(engine service.Engine, archiver archive.Archiver, verifier signature.Verifier, cfg *config.Config, otel otel.Otel) Handler {
	maxBodySize := int64(cfg.Webhook.MaxBodySizeBytes)
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	return Handler{
		engine:      engine,
		archiver:    archiver,
		verifier:    verifier,
		otel:        otel,
		maxBodySize: maxBodySize,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/webhooks/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.ReceivePayment)
		routerGroup.Post("/{tenant_id}", handler.ReceivePayment)
	})
}

// ReceivePayment reconciles a payment notification pushed by the provider.
// @Summary Receive a payment notification
// @Description Reconcile a provider payment notification against its booking. Non 2xx responses ask the provider to redeliver.
// @Tags Webhook
// @Accept json
// @Produce json
// @Param tenant_id path string false "Tenant ID"
// @Param X-Signature header string false "Hex HMAC-SHA256 of the body under the webhook secret"
// @Param request body dto.Envelope true "Payment notification"
// @Success 200 {object} dto.Result
// @Failure 400 {object} dto.Result
// @Failure 401 {object} response.Error
// @Failure 404 {object} dto.Result
// @Failure 503 {object} dto.Result
// @Router /v1/webhooks/payments/{tenant_id} [post]
func (handler *Handler) ReceivePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReceivePayment")
	defer scope.End()

	tenantID := chi.URLParam(request, constant.RequestParamTenantID)

	body, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, handler.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = &failure.Failure{Code: http.StatusRequestEntityTooLarge, Message: "webhook body too large"}
		} else {
			err = failure.BadRequest(err)
		}

		scope.TraceError(err)
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to read webhook body")

		response.WithError(writer, err)

		return
	}

	go handler.archiver.Archive(context.WithoutCancel(ctx), tenantID, body)

	envelope := dto.Envelope{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		err = failure.BadRequestFromString("webhook body is not a valid notification")

		scope.TraceError(err)
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to decode webhook body")

		response.WithError(writer, err)

		return
	}

	if err := handler.authenticate(ctx, request, tenantID, body, &envelope); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to verify webhook signature")

		response.WithError(writer, err)

		return
	}

	result := handler.engine.Reconcile(ctx, tenantID, envelope)

	scope.SetAttributes(map[string]any{
		"webhook.tenant_id":       tenantID,
		"webhook.booking_id":      result.BookingID,
		"webhook.outcome":         result.Outcome,
		"webhook.kind":            string(result.Kind),
		"webhook.booking_updated": result.BookingUpdated,
	})

	code := StatusCode(result)
	if code >= http.StatusInternalServerError {
		log.Warn().Str("tenant_id", tenantID).Str("booking_id", result.BookingID).Str("error", result.Error).Msg("webhook not processed, provider will redeliver")
	}

	response.WithJSON(writer, code, result)
}

// authenticate marks the envelope as signed when the signature header verifies.
// Unsigned notifications, or ones that cannot be checked, stay unauthenticated
// and the engine re-fetches the payment instead of trusting the inline data.
func (handler *Handler) authenticate(ctx context.Context, request *http.Request, tenantID string, body []byte, envelope *dto.Envelope) error {
	header := request.Header.Get(constant.RequestHeaderSignature)
	if header == "" {
		return nil
	}

	err := handler.verifier.Verify(ctx, tenantID, body, header)
	switch {
	case err == nil:
		envelope.Authenticated = true
	case errors.Is(err, signature.ErrInvalidSignature):
		return failure.Unauthorized("invalid webhook signature") // nolint:wrapcheck
	default:
		log.Warn().Err(err).Str("tenant_id", tenantID).Msg("webhook signature not checked, payment will be re-fetched")
	}

	return nil
}

// StatusCode maps a reconciliation result onto the response the provider sees.
func StatusCode(result dto.Result) int {
	if result.Processed {
		return http.StatusOK
	}

	switch result.Kind {
	case dto.KindMalformed:
		return http.StatusBadRequest
	case dto.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}
