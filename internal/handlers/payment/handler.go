package payment

import (
	"courtpay/infras/otel"
	"courtpay/internal/domains/payment/model/dto"
	"courtpay/internal/domains/payment/service"
	"courtpay/shared/constant"
	gDto "courtpay/shared/dto"
	"courtpay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Ledger
	otel    otel.Otel
}

func New(service service.Ledger, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings/{id}/payments", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPayments)
	})
}

// GetPayments lists the ledger rows of a booking.
// @Summary Get booking payments @Admin
// @Description Page through the PAYMENT and REFUND rows recorded for a booking.
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} dto.LedgerResponse
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/payments [get]
// @Security BearerAuth
func (handler *Handler) GetPayments(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPayments")
	defer scope.End()

	bookingID := chi.URLParam(request, constant.RequestParamID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	var ledger dto.LedgerResponse

	ledger, err := handler.service.ListByBooking(ctx, bookingID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking payments")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, ledger)
}
