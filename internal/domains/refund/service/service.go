package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/config"
	"courtpay/infras/otel"
	bookingModel "courtpay/internal/domains/booking/model"
	bookingRepo "courtpay/internal/domains/booking/repository"
	gwModel "courtpay/internal/domains/gateway/model"
	gwService "courtpay/internal/domains/gateway/service"
	paymentModel "courtpay/internal/domains/payment/model"
	paymentRepo "courtpay/internal/domains/payment/repository"
	"courtpay/internal/domains/refund/model/dto"
	"courtpay/shared"
	"courtpay/shared/constant"
	"courtpay/shared/failure"
	"courtpay/shared/lock"
	gModel "courtpay/shared/model"
	"courtpay/shared/timezone"
	"courtpay/shared/validator"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	pendingReferenceFormat = "pending-refund:%s:%s"
	lockKeyFormat          = "refund:%s:%s"
	defaultProviderTimeout = 5 * time.Second
)

// Refund compensates an external payment exactly once per booking.
type Refund interface {
	// ProcessRefund returns an error only when no refund was attempted. Provider
	// failures come back as an unsuccessful Result backed by a failed ledger row.
	ProcessRefund(ctx context.Context, req dto.ProcessRefundRequest) (dto.Result, error)
}

type serviceImpl struct {
	paymentRepo paymentRepo.Payment
	bookingRepo bookingRepo.Booking
	factory     gwService.Factory
	locker      lock.Locker
	otel        otel.Otel
	timeout     time.Duration
}

func New(paymentRepo paymentRepo.Payment, bookingRepo bookingRepo.Booking, factory gwService.Factory, locker lock.Locker, cfg *config.Config, otel otel.Otel) Refund {
	timeout := time.Duration(cfg.Payment.Provider.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	return &serviceImpl{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		factory:     factory,
		locker:      locker,
		otel:        otel,
		timeout:     timeout,
	}
}

func (s *serviceImpl) ProcessRefund(ctx context.Context, req dto.ProcessRefundRequest) (res dto.Result, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".refund.ProcessRefund")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res.Status = dto.StatusFailed

	if err = validator.ValidateStruct(&req); err != nil {
		res.Error = err.Error()

		return res, err
	}

	scope.SetAttributes(map[string]any{"booking.id": req.BookingID, "payment.id": req.ExternalPaymentID})

	release, err := s.locker.Acquire(ctx, fmt.Sprintf(lockKeyFormat, req.BookingID, req.ExternalPaymentID))
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to lock refund")
		res.Error = err.Error()

		return res, fmt.Errorf("failed to lock refund of payment %s: %w", req.ExternalPaymentID, err)
	}

	defer func() {
		if releaseErr := release(context.WithoutCancel(ctx)); releaseErr != nil {
			log.Warn().Err(releaseErr).Str("booking_id", req.BookingID).Msg("refund lock not released, it will expire")
		}
	}()

	refunded, err := s.paymentRepo.Exist(ctx, paymentRepo.CompletedRefundFor(req.BookingID, req.ExternalPaymentID))
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to check previous refunds")
		res.Error = err.Error()

		return res, fmt.Errorf("failed to check previous refunds of payment %s: %w", req.ExternalPaymentID, err)
	}

	if refunded {
		log.Warn().Str("booking_id", req.BookingID).Str("payment_id", req.ExternalPaymentID).Msg("refund skipped, payment previously refunded")

		res.Status = dto.StatusDuplicate
		res.Error = fmt.Sprintf("payment %s was previously refunded for booking %s", req.ExternalPaymentID, req.BookingID)

		return res, nil
	}

	paid, err := s.paymentRepo.Exist(ctx, paymentRepo.ByReference(req.BookingID, paymentModel.TypePayment, req.ExternalPaymentID))
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to check recorded payment")
		res.Error = err.Error()

		return res, fmt.Errorf("failed to check payment %s of booking %s: %w", req.ExternalPaymentID, req.BookingID, err)
	}

	if !paid {
		err = failure.NotFound(fmt.Sprintf("payment %s not recorded for booking %s", req.ExternalPaymentID, req.BookingID))
		res.Error = err.Error()

		return res, err
	}

	tenantID, err := s.tenantOf(ctx, req)
	if err != nil {
		res.Error = err.Error()

		return res, err
	}

	gateway, err := s.factory.GetProvider(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to get payment provider")
		res.Error = err.Error()

		return res, fmt.Errorf("failed to get payment provider for refund of %s: %w", req.ExternalPaymentID, err)
	}

	record := s.pendingRecord(req, tenantID, gateway.Name())

	if err = s.paymentRepo.Insert(ctx, record); err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to record pending refund")
		res.Error = err.Error()

		return res, fmt.Errorf("failed to record pending refund of payment %s: %w", req.ExternalPaymentID, err)
	}

	res.RecordID = record.ID

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, refundErr := gateway.Refund(callCtx, req.ExternalPaymentID, req.Amount, IdempotencyKey(req))
	if refundErr != nil {
		return s.fail(ctx, res, record, req, refundErr), nil
	}

	return s.complete(ctx, res, record, outcome), nil
}

func (s *serviceImpl) tenantOf(ctx context.Context, req dto.ProcessRefundRequest) (string, error) {
	if req.TenantID != "" {
		return req.TenantID, nil
	}

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(req.BookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to get booking for refund")

		return "", fmt.Errorf("failed to get booking %s for refund: %w", req.BookingID, err)
	}

	if booking.ID == constant.Empty {
		return "", failure.NotFound(fmt.Sprintf("booking %s not found", req.BookingID)) // nolint:wrapcheck
	}

	return booking.TenantID, nil
}

func (s *serviceImpl) pendingRecord(req dto.ProcessRefundRequest, tenantID, method string) paymentModel.Payment {
	id := uuid.NewString()
	source := req.ExternalPaymentID

	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}

	return paymentModel.Payment{
		ID:              id,
		TenantID:        tenantID,
		BookingID:       req.BookingID,
		Amount:          amount,
		Method:          method,
		Type:            paymentModel.TypeRefund,
		Reference:       fmt.Sprintf(pendingReferenceFormat, req.ExternalPaymentID, id),
		SourceReference: &source,
		Status:          paymentModel.StatusPending,
		Notes:           fmt.Sprintf("refund of payment %s for booking %s: %s", req.ExternalPaymentID, req.BookingID, req.Reason),
		Metadata:        gModel.NewMetadata(constant.SystemUser, timezone.Now()),
	}
}

func (s *serviceImpl) fail(ctx context.Context, res dto.Result, record paymentModel.Payment, req dto.ProcessRefundRequest, refundErr error) dto.Result {
	kind := gwModel.KindOf(refundErr)
	message := FailureMessage(kind, req.ExternalPaymentID, refundErr)

	log.Error().Err(refundErr).Str("booking_id", req.BookingID).Str("payment_id", req.ExternalPaymentID).Str("kind", string(kind)).Msg("refund rejected by provider")

	res.Status = dto.StatusFailed
	res.Error = message
	res.ErrorKind = kind

	update := map[string]any{
		paymentModel.FieldStatus: paymentModel.StatusFailed,
		paymentModel.FieldNotes:  record.Notes + " | failed: " + message,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: constant.SystemUser,
	}

	if err := s.paymentRepo.Update(ctx, update, shared.FilterByID(record.ID, paymentModel.FieldID, paymentModel.TableName)); err != nil {
		log.Error().Err(err).Str("record_id", record.ID).Msg("failed to mark refund record as failed")

		res.LedgerError = fmt.Sprintf("refund record %s left pending: %v", record.ID, err)
	}

	return res
}

func (s *serviceImpl) complete(ctx context.Context, res dto.Result, record paymentModel.Payment, outcome gwModel.RefundOutcome) dto.Result {
	res.Success = true
	res.Status = dto.StatusCompleted
	res.RefundID = outcome.ID

	amount := outcome.Amount
	if amount.IsZero() {
		amount = record.Amount
	}

	update := map[string]any{
		paymentModel.FieldStatus:    paymentModel.StatusCompleted,
		paymentModel.FieldReference: outcome.ID,
		paymentModel.FieldAmount:    amount,
		constant.FieldModifiedAt:    timezone.Now(),
		constant.FieldModifiedBy:    constant.SystemUser,
	}

	if err := s.paymentRepo.Update(ctx, update, shared.FilterByID(record.ID, paymentModel.FieldID, paymentModel.TableName)); err != nil {
		// The money moved. Report success and surface the ledger gap separately.
		log.Error().Err(err).Str("record_id", record.ID).Str("refund_id", outcome.ID).Msg("refund succeeded but ledger update failed")

		res.LedgerError = fmt.Sprintf("refund %s succeeded but record %s was not completed: %v", outcome.ID, record.ID, err)
	}

	return res
}

// IdempotencyKey is stable for one booking, payment and amount so a retried
// attempt replays at the provider instead of refunding twice.
func IdempotencyKey(req dto.ProcessRefundRequest) string {
	amount := "full"
	if req.Amount != nil {
		amount = req.Amount.String()
	}

	name := fmt.Sprintf("refund:%s:%s:%s", req.BookingID, req.ExternalPaymentID, amount)

	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func FailureMessage(kind gwModel.ErrorKind, externalPaymentID string, err error) string {
	switch kind {
	case gwModel.KindAlreadyRefunded:
		return fmt.Sprintf("payment %s was already refunded at the provider", externalPaymentID)
	case gwModel.KindRefundWindowExpired:
		return fmt.Sprintf("refund window expired for payment %s", externalPaymentID)
	case gwModel.KindInsufficientBalance:
		return fmt.Sprintf("insufficient balance to refund payment %s", externalPaymentID)
	case gwModel.KindNotFound:
		return fmt.Sprintf("payment %s not found at the provider", externalPaymentID)
	case gwModel.KindTransient:
		return fmt.Sprintf("payment provider unavailable while refunding %s", externalPaymentID)
	case gwModel.KindUnauthorized:
		return fmt.Sprintf("payment provider rejected the tenant credentials while refunding %s", externalPaymentID)
	default:
		return fmt.Sprintf("refund of payment %s failed: %v", externalPaymentID, err)
	}
}
