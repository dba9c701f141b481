package refund

import (
	"courtpay/config"
	"courtpay/infras/otel"
	gwModel "courtpay/internal/domains/gateway/model"
	"courtpay/internal/domains/refund/model/dto"
	"courtpay/internal/domains/refund/service"
	"courtpay/shared"
	"courtpay/shared/cache"
	"courtpay/shared/constant"
	"courtpay/shared/validator"
	"courtpay/transport/http/response"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRefundRequest = "refund-request"
	defaultCacheTTL       = 24 * 60 * 60
)

type Handler struct {
	service service.Refund
	cache   cache.RedisCache
	otel    otel.Otel
	ttl     int
}

func New(service service.Refund, redisCache cache.RedisCache, cfg *config.Config, otel otel.Otel) Handler {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return Handler{
		service: service,
		cache:   redisCache,
		otel:    otel,
		ttl:     ttl,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings/{id}/refunds", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRefund)
	})
}

// CreateRefund refunds a booking payment on behalf of an operator.
// @Summary Refund a booking payment @Admin
// @Description Refund a provider payment of a booking. Omit amount for a full refund. Repeating a request with the same X-Idempotency-Key returns the first result.
// @Tags Refund
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Param request body dto.CreateRefundRequest true "Create Refund Request"
// @Success 201 {object} dto.Result "Refund completed"
// @Success 200 {object} dto.Result "Payment was already refunded"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} dto.Result
// @Failure 502 {object} dto.Result
// @Router /v1/bookings/{id}/refunds [post]
// @Security BearerAuth
func (handler *Handler) CreateRefund(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRefund")
	defer scope.End()

	bookingID := chi.URLParam(request, constant.RequestParamID)
	idempotencyKey := request.Header.Get(constant.RequestHeaderIdempotencyKey)
	cacheKey := shared.BuildCacheKey(cacheKeyRefundRequest, bookingID, idempotencyKey)

	if idempotencyKey != "" {
		cached := dto.Result{}

		err := handler.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			scope.AddEvent("Refund result served from idempotency cache")

			response.WithJSON(writer, StatusCode(cached), cached)

			return
		}

		if !errors.Is(err, cache.Nil) {
			log.Warn().Err(err).Str("booking_id", bookingID).Msg("failed to read refund idempotency cache")
		}
	}

	req := dto.CreateRefundRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	result, err := handler.service.ProcessRefund(ctx, req.ToProcessRequest(bookingID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to process refund")

		response.WithError(writer, err)

		return
	}

	if idempotencyKey != "" && result.Status != dto.StatusFailed {
		if err := handler.cache.Save(ctx, cacheKey, result, handler.ttl); err != nil {
			log.Warn().Err(err).Str("booking_id", bookingID).Msg("failed to store refund idempotency cache")
		}
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Refund " + result.Status + " by user " + user)

	response.WithJSON(writer, StatusCode(result), result)
}

// StatusCode maps a refund result onto an HTTP status.
func StatusCode(result dto.Result) int {
	switch {
	case result.Success:
		return http.StatusCreated
	case result.Status == dto.StatusDuplicate:
		return http.StatusOK
	case result.ErrorKind == gwModel.KindAlreadyRefunded,
		result.ErrorKind == gwModel.KindRefundWindowExpired,
		result.ErrorKind == gwModel.KindInsufficientBalance:
		return http.StatusConflict
	case result.ErrorKind == gwModel.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
