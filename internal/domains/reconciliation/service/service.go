package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/config"
	"courtpay/infras/otel"
	bookingDto "courtpay/internal/domains/booking/model/dto"
	booking "courtpay/internal/domains/booking/service"
	credential "courtpay/internal/domains/credential/service"
	gwModel "courtpay/internal/domains/gateway/model"
	gwService "courtpay/internal/domains/gateway/service"
	notificationModel "courtpay/internal/domains/notification/model"
	notification "courtpay/internal/domains/notification/service"
	"courtpay/internal/domains/reconciliation/model/dto"
	refundDto "courtpay/internal/domains/refund/model/dto"
	refund "courtpay/internal/domains/refund/service"
	"courtpay/shared/constant"
	"courtpay/shared/lock"
	"courtpay/shared/validator"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	lockKeyFormat          = "reconcile:%s"
	defaultProviderTimeout = 5 * time.Second
)

var (
	ErrMalformedEnvelope       = errors.New("malformed webhook envelope")
	ErrMissingBookingReference = errors.New("payment has no booking reference")
)

type Engine interface {
	// Reconcile applies one provider notification. tenantID is the tenant named
	// by the webhook URL and may be empty.
	Reconcile(ctx context.Context, tenantID string, envelope dto.Envelope) dto.Result
}

type engineImpl struct {
	factory    gwService.Factory
	store      booking.Store
	refund     refund.Refund
	dispatcher notification.Dispatcher
	locker     lock.Locker
	otel       otel.Otel
	timeout    time.Duration
	trust      bool
	now        func() time.Time
}

func New(factory gwService.Factory, store booking.Store, refund refund.Refund, dispatcher notification.Dispatcher, locker lock.Locker, cfg *config.Config, otel otel.Otel, now func() time.Time) Engine {
	timeout := time.Duration(cfg.Payment.Provider.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	return &engineImpl{
		factory:    factory,
		store:      store,
		refund:     refund,
		dispatcher: dispatcher,
		locker:     locker,
		otel:       otel,
		timeout:    timeout,
		trust:      cfg.Webhook.TrustInlineData,
		now:        now,
	}
}

func (e *engineImpl) Reconcile(ctx context.Context, tenantID string, envelope dto.Envelope) (res dto.Result) {
	ctx, scope := e.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reconciliation.Reconcile")
	defer scope.End()

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("payment_id", string(envelope.Data.ID)).Msg("reconciliation panicked")

			res = failed(res.BookingID, dto.KindTransient, fmt.Errorf("reconciliation panicked: %v", p))
		}

		if !res.Processed {
			scope.TraceError(errors.New(res.Error))
		}
	}()

	if err := validator.ValidateStruct(&envelope); err != nil {
		return failed("", dto.KindMalformed, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err))
	}

	scope.SetAttributes(map[string]any{"webhook.type": envelope.Type, "payment.id": string(envelope.Data.ID), "tenant.id": tenantID})

	if envelope.Type != dto.TypePayment {
		log.Debug().Str("type", envelope.Type).Msg("ignoring non payment notification")

		return dto.Result{Processed: true, Outcome: dto.OutcomeIgnored}
	}

	snapshot, method, err := e.snapshot(ctx, tenantID, envelope)
	if err != nil {
		return failed("", providerKind(err), err)
	}

	if snapshot.ExternalReference == "" {
		return failed("", dto.KindMalformed, fmt.Errorf("payment %s: %w", snapshot.ID, ErrMissingBookingReference))
	}

	bookingID := snapshot.ExternalReference

	if !snapshot.IsApproved() {
		log.Info().Str("booking_id", bookingID).Str("payment_id", snapshot.ID).Str("status", snapshot.Status).Msg("payment not approved, booking unchanged")

		return dto.Result{Processed: true, BookingID: bookingID, Outcome: dto.OutcomeNotApproved}
	}

	release, err := e.locker.Acquire(ctx, fmt.Sprintf(lockKeyFormat, bookingID))
	if err != nil {
		log.Warn().Err(err).Str("booking_id", bookingID).Msg("failed to lock booking for reconciliation")

		return failed(bookingID, dto.KindTransient, fmt.Errorf("failed to lock booking %s: %w", bookingID, err))
	}

	defer func() {
		if releaseErr := release(context.WithoutCancel(ctx)); releaseErr != nil {
			log.Warn().Err(releaseErr).Str("booking_id", bookingID).Msg("reconciliation lock not released, it will expire")
		}
	}()

	transition, err := e.store.ApplyApprovedPayment(ctx, bookingDto.ApprovedPayment{
		BookingID:         bookingID,
		ExternalPaymentID: snapshot.ID,
		Amount:            snapshot.TransactionAmount,
		Method:            method,
		TenantID:          tenantID,
	})
	if err != nil {
		return failed(bookingID, storeKind(err), fmt.Errorf("failed to apply payment %s to booking %s: %w", snapshot.ID, bookingID, err))
	}

	switch transition.Outcome {
	case bookingDto.OutcomeConflict:
		return e.compensate(ctx, snapshot, transition)
	case bookingDto.OutcomeDuplicate:
		if owesRefund(transition, snapshot.ID) {
			return e.compensate(ctx, snapshot, transition)
		}
	}

	return dto.Result{
		Processed:      true,
		BookingUpdated: transition.BookingUpdated(),
		BookingID:      bookingID,
		Outcome:        string(transition.Outcome),
	}
}

// snapshot normalizes the envelope into one provider snapshot, fetching it unless
// the payload is complete and signed. It also returns the payment method to record.
func (e *engineImpl) snapshot(ctx context.Context, tenantID string, envelope dto.Envelope) (gwModel.PaymentSnapshot, string, error) {
	data := envelope.Data
	if e.trust && envelope.Authenticated && data.HasFullData() {
		snapshot := data.ToSnapshot()

		method := snapshot.PaymentMethod
		if method == "" {
			method = "webhook"
		}

		return snapshot, method, nil
	}

	gateway, err := e.factory.GetProvider(ctx, tenantID)
	if err != nil {
		return gwModel.PaymentSnapshot{}, "", fmt.Errorf("failed to get payment provider: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	snapshot, err := gateway.FetchPayment(callCtx, string(data.ID))
	if err != nil {
		log.Error().Err(err).Str("payment_id", string(data.ID)).Str("provider", gateway.Name()).Msg("failed to fetch payment")

		return gwModel.PaymentSnapshot{}, "", fmt.Errorf("failed to fetch payment %s: %w", data.ID, err)
	}

	return snapshot, gateway.Name(), nil
}

func (e *engineImpl) compensate(ctx context.Context, snapshot gwModel.PaymentSnapshot, transition bookingDto.Transition) dto.Result {
	booked := transition.Booking

	req := refundDto.ProcessRefundRequest{
		BookingID:         booked.ID,
		ExternalPaymentID: snapshot.ID,
		Reason:            reasonOf(transition, snapshot.ID),
		TenantID:          booked.TenantID,
	}

	if snapshot.TransactionAmount.IsPositive() {
		amount := snapshot.TransactionAmount
		req.Amount = &amount
	}

	refunded, err := e.refund.ProcessRefund(ctx, req)
	if err != nil {
		e.notify(ctx, notificationModel.ConflictNotification{
			BookingID:            booked.ID,
			TenantID:             booked.TenantID,
			PaymentID:            snapshot.ID,
			ConflictingBookingID: transition.Conflicting.ID,
			RefundStatus:         refundDto.StatusFailed,
			RefundError:          err.Error(),
			Severity:             notificationModel.SeverityCritical,
			OccurredAt:           e.now(),
		})

		// The booking already carries the conflict reason, so a redelivery retries the refund.
		return failed(booked.ID, dto.KindTransient, fmt.Errorf("failed to refund conflicting payment %s: %w", snapshot.ID, err))
	}

	res := dto.Result{
		Processed: true,
		BookingID: booked.ID,
		Outcome:   string(transition.Outcome),
		Kind:      dto.KindConflict,
		RefundID:  refunded.RefundID,
		Error:     fmt.Sprintf("%s (refund %s)", req.Reason, refunded.Status),
	}

	if refunded.Status == refundDto.StatusDuplicate {
		return res
	}

	e.notify(ctx, notificationModel.ConflictNotification{
		BookingID:            booked.ID,
		TenantID:             booked.TenantID,
		PaymentID:            snapshot.ID,
		ConflictingBookingID: transition.Conflicting.ID,
		RefundID:             refunded.RefundID,
		RefundStatus:         refunded.Status,
		RefundError:          strings.TrimSpace(refunded.Error + " " + refunded.LedgerError),
		Severity:             notificationModel.SeverityFor(refunded.Success),
		OccurredAt:           e.now(),
	})

	return res
}

func (e *engineImpl) notify(ctx context.Context, n notificationModel.ConflictNotification) {
	go func() {
		if err := e.dispatcher.Dispatch(context.WithoutCancel(ctx), n); err != nil {
			log.Error().Err(err).Str("booking_id", n.BookingID).Msg("failed to dispatch conflict notification")
		}
	}()
}

// owesRefund reports whether a redelivered payment is the one that was flagged
// as conflicting, so the idempotent refund is attempted again.
func owesRefund(transition bookingDto.Transition, paymentID string) bool {
	b := transition.Booking

	return b.IsPaymentConflict() && strings.Contains(*b.CancellationReason, " "+paymentID+" ")
}

func reasonOf(transition bookingDto.Transition, paymentID string) string {
	if transition.Booking.CancellationReason != nil {
		return *transition.Booking.CancellationReason
	}

	return booking.ConflictReason(paymentID, transition.Conflicting.ID)
}

func failed(bookingID string, kind dto.ErrorKind, err error) dto.Result {
	event := log.Warn()
	if kind == dto.KindTransient {
		event = log.Error()
	}

	event.Err(err).Str("booking_id", bookingID).Str("kind", string(kind)).Msg("webhook not processed")

	return dto.Result{
		Processed: false,
		BookingID: bookingID,
		Error:     err.Error(),
		Kind:      kind,
	}
}

func providerKind(err error) dto.ErrorKind {
	switch {
	case errors.Is(err, credential.ErrTenantNotFound), gwModel.KindOf(err) == gwModel.KindNotFound:
		return dto.KindNotFound
	default:
		return dto.KindTransient
	}
}

func storeKind(err error) dto.ErrorKind {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		return dto.KindNotFound
	case errors.Is(err, booking.ErrTenantMismatch):
		return dto.KindMalformed
	default:
		return dto.KindTransient
	}
}
