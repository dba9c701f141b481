package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	"courtpay/infras/postgres"
	"courtpay/internal/domains/booking/conflict"
	"courtpay/internal/domains/booking/model"
	"courtpay/internal/domains/booking/model/dto"
	"courtpay/internal/domains/booking/repository"
	paymentModel "courtpay/internal/domains/payment/model"
	paymentRepo "courtpay/internal/domains/payment/repository"
	"courtpay/shared"
	"courtpay/shared/constant"
	gModel "courtpay/shared/model"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrTenantMismatch  = errors.New("payment tenant does not own booking")
)

type Store interface {
	// ApplyApprovedPayment runs the approved payment transition for one booking in
	// a single transaction. The conflict check and the resulting write share it.
	ApplyApprovedPayment(ctx context.Context, req dto.ApprovedPayment) (dto.Transition, error)
}

type serviceImpl struct {
	tx          postgres.Transactor
	repo        repository.Booking
	paymentRepo paymentRepo.Payment
	detector    conflict.Detector
	otel        otel.Otel
	now         func() time.Time
}

func New(tx postgres.Transactor, repo repository.Booking, paymentRepo paymentRepo.Payment, detector conflict.Detector, otel otel.Otel, now func() time.Time) Store {
	return &serviceImpl{
		tx:          tx,
		repo:        repo,
		paymentRepo: paymentRepo,
		detector:    detector,
		otel:        otel,
		now:         now,
	}
}

func (s *serviceImpl) ApplyApprovedPayment(ctx context.Context, req dto.ApprovedPayment) (res dto.Transition, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ApplyApprovedPayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{"booking.id": req.BookingID, "payment.id": req.ExternalPaymentID})

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		var txErr error

		res, txErr = s.apply(ctx, tx, req)

		return txErr
	})
	if err != nil {
		return dto.Transition{}, err
	}

	scope.AddEvent("booking." + string(res.Outcome))

	return res, nil
}

func (s *serviceImpl) apply(ctx context.Context, tx *sqlx.Tx, req dto.ApprovedPayment) (dto.Transition, error) {
	booking, err := s.repo.GetForUpdateTx(ctx, tx, req.BookingID)
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to lock booking")

		return dto.Transition{}, fmt.Errorf("failed to lock booking %s: %w", req.BookingID, err)
	}

	if booking.ID == constant.Empty {
		return dto.Transition{}, fmt.Errorf("booking %s: %w", req.BookingID, ErrBookingNotFound)
	}

	if req.TenantID != constant.Empty && req.TenantID != booking.TenantID {
		return dto.Transition{}, fmt.Errorf("booking %s, tenant %s: %w", req.BookingID, req.TenantID, ErrTenantMismatch)
	}

	res := dto.Transition{Booking: booking}

	recorded, err := s.paymentRepo.ExistTx(ctx, tx, paymentRepo.ByReference(booking.ID, paymentModel.TypePayment, req.ExternalPaymentID))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to check recorded payments")

		return dto.Transition{}, fmt.Errorf("failed to check payment %s on booking %s: %w", req.ExternalPaymentID, booking.ID, err)
	}

	if recorded {
		log.Info().Str("booking_id", booking.ID).Str("payment_id", req.ExternalPaymentID).Msg("payment already recorded")

		res.Outcome = dto.OutcomeDuplicate

		return res, nil
	}

	if booking.Status == model.StatusConfirmed {
		res.Outcome = dto.OutcomeRecorded
		res.PaymentID, err = s.recordPayment(ctx, tx, booking, req, "")

		return res, err
	}

	if err = s.repo.LockSlotTx(ctx, tx, booking.Slot()); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to lock slot")

		return dto.Transition{}, fmt.Errorf("failed to lock slot of booking %s: %w", booking.ID, err)
	}

	other, found, err := s.detector.FindConflict(ctx, tx, booking)
	if err != nil {
		return dto.Transition{}, fmt.Errorf("failed to check slot of booking %s: %w", booking.ID, err)
	}

	if found {
		return s.flagConflict(ctx, tx, booking, other, req)
	}

	return s.confirm(ctx, tx, booking, req)
}

func (s *serviceImpl) confirm(ctx context.Context, tx *sqlx.Tx, booking model.Booking, req dto.ApprovedPayment) (dto.Transition, error) {
	res := dto.Transition{Outcome: dto.OutcomeConfirmed}
	if booking.Status == model.StatusCancelled {
		res.Outcome = dto.OutcomeReactivated
	}

	update := map[string]any{
		model.FieldStatus:             model.StatusConfirmed,
		model.FieldPaymentStatus:      model.PaymentStatusDepositPaid,
		model.FieldExpiresAt:          nil,
		model.FieldCancellationReason: nil,
		model.FieldCancelledAt:        nil,
		constant.FieldModifiedAt:      s.now(),
		constant.FieldModifiedBy:      constant.SystemUser,
	}

	if err := s.repo.UpdateTx(ctx, tx, update, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to confirm booking")

		return dto.Transition{}, fmt.Errorf("failed to confirm booking %s: %w", booking.ID, err)
	}

	booking.Status = model.StatusConfirmed
	booking.PaymentStatus = model.PaymentStatusDepositPaid
	booking.ExpiresAt = nil
	booking.CancellationReason = nil
	booking.CancelledAt = nil
	res.Booking = booking

	paymentID, err := s.recordPayment(ctx, tx, booking, req, "")
	if err != nil {
		return dto.Transition{}, err
	}

	res.PaymentID = paymentID

	log.Info().Str("booking_id", booking.ID).Str("outcome", string(res.Outcome)).Msg("booking confirmed by payment")

	return res, nil
}

func (s *serviceImpl) flagConflict(ctx context.Context, tx *sqlx.Tx, booking, other model.Booking, req dto.ApprovedPayment) (dto.Transition, error) {
	now := s.now()
	reason := ConflictReason(req.ExternalPaymentID, other.ID)

	update := map[string]any{
		model.FieldStatus:             model.StatusCancelled,
		model.FieldCancellationReason: reason,
		constant.FieldModifiedAt:      now,
		constant.FieldModifiedBy:      constant.SystemUser,
	}

	if booking.CancelledAt == nil {
		update[model.FieldCancelledAt] = now
		booking.CancelledAt = &now
	}

	if err := s.repo.UpdateTx(ctx, tx, update, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to flag payment conflict")

		return dto.Transition{}, fmt.Errorf("failed to flag payment conflict on booking %s: %w", booking.ID, err)
	}

	booking.Status = model.StatusCancelled
	booking.CancellationReason = &reason

	paymentID, err := s.recordPayment(ctx, tx, booking, req, reason)
	if err != nil {
		return dto.Transition{}, err
	}

	log.Warn().Str("booking_id", booking.ID).Str("conflicting_booking_id", other.ID).Str("payment_id", req.ExternalPaymentID).Msg("approved payment arrived for a taken slot")

	return dto.Transition{Outcome: dto.OutcomeConflict, Booking: booking, Conflicting: other, PaymentID: paymentID}, nil
}

func (s *serviceImpl) recordPayment(ctx context.Context, tx *sqlx.Tx, booking model.Booking, req dto.ApprovedPayment, notes string) (string, error) {
	payment := paymentModel.Payment{
		ID:        uuid.NewString(),
		TenantID:  booking.TenantID,
		BookingID: booking.ID,
		Amount:    req.Amount,
		Method:    req.Method,
		Type:      paymentModel.TypePayment,
		Reference: req.ExternalPaymentID,
		Status:    paymentModel.StatusCompleted,
		Notes:     notes,
		Metadata:  gModel.NewMetadata(constant.SystemUser, s.now()),
	}

	if err := s.paymentRepo.InsertTx(ctx, tx, payment); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to record payment")

		return "", fmt.Errorf("failed to record payment %s on booking %s: %w", req.ExternalPaymentID, booking.ID, err)
	}

	return payment.ID, nil
}

// ConflictReason is the provenance written to the booking and its payment row
// when a payment is accepted for a slot another booking holds.
func ConflictReason(externalPaymentID, conflictingBookingID string) string {
	return fmt.Sprintf("%s payment %s approved after slot was taken by booking %s; refund required",
		model.ConflictReasonPrefix, externalPaymentID, conflictingBookingID)
}
