package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtpay/infras/otel/mocks"
	pgMocks "courtpay/infras/postgres/mocks"
	bookingMocks "courtpay/internal/domains/booking/mocks"
	"courtpay/internal/domains/booking/model"
	"courtpay/internal/domains/booking/model/dto"
	"courtpay/internal/domains/booking/service"
	paymentMocks "courtpay/internal/domains/payment/mocks"
	paymentModel "courtpay/internal/domains/payment/model"
	gDto "courtpay/shared/dto"
)

var now = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

type deps struct {
	repo     *bookingMocks.MockBooking
	payments *paymentMocks.MockPayment
	detector *bookingMocks.MockDetector
}

func setup(t *testing.T) (service.Store, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		repo:     bookingMocks.NewMockBooking(ctrl),
		payments: paymentMocks.NewMockPayment(ctrl),
		detector: bookingMocks.NewMockDetector(ctrl),
	}

	svc := service.New(pgMocks.NewTransactor(), d.repo, d.payments, d.detector, mocks.NewOtel(), func() time.Time { return now })

	return svc, d
}

func booking(status string) model.Booking {
	return model.Booking{
		ID:            "b1",
		TenantID:      "t1",
		CourtID:       "c1",
		BookingDate:   time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		StartTime:     time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:       time.Date(0, 1, 1, 11, 30, 0, 0, time.UTC),
		Status:        status,
		PaymentStatus: model.PaymentStatusPending,
	}
}

func approved() dto.ApprovedPayment {
	return dto.ApprovedPayment{
		BookingID:         "b1",
		ExternalPaymentID: "pay-1",
		Amount:            decimal.NewFromInt(100),
		Method:            "mercadopago",
	}
}

func TestStore_ApplyApprovedPayment_Confirms(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		wantOutcome dto.Outcome
	}{
		{name: "pending booking", status: model.StatusPending, wantOutcome: dto.OutcomeConfirmed},
		{name: "cancelled booking without conflict", status: model.StatusCancelled, wantOutcome: dto.OutcomeReactivated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := setup(t)

			current := booking(tt.status)
			if tt.status == model.StatusCancelled {
				reason := "expired"
				current.CancellationReason = &reason
				current.CancelledAt = &now
			}

			d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(current, nil)
			d.payments.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
			d.repo.EXPECT().LockSlotTx(gomock.Any(), gomock.Any(), current.Slot()).Return(nil)
			d.detector.EXPECT().FindConflict(gomock.Any(), gomock.Any(), current).Return(model.Booking{}, false, nil)
			d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, update map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, model.StatusConfirmed, update[model.FieldStatus])
					assert.Equal(t, model.PaymentStatusDepositPaid, update[model.FieldPaymentStatus])
					assert.Contains(t, update, model.FieldExpiresAt)
					assert.Nil(t, update[model.FieldCancellationReason])
					assert.Nil(t, update[model.FieldCancelledAt])

					return nil
				})
			d.payments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, p paymentModel.Payment) error {
					assert.Equal(t, paymentModel.TypePayment, p.Type)
					assert.Equal(t, paymentModel.StatusCompleted, p.Status)
					assert.Equal(t, "pay-1", p.Reference)
					assert.True(t, decimal.NewFromInt(100).Equal(p.Amount))
					assert.Empty(t, p.Notes)

					return nil
				})

			res, err := svc.ApplyApprovedPayment(context.Background(), approved())

			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.True(t, res.BookingUpdated())
			assert.Equal(t, model.StatusConfirmed, res.Booking.Status)
			assert.Nil(t, res.Booking.CancellationReason)
			assert.NotEmpty(t, res.PaymentID)
		})
	}
}

func TestStore_ApplyApprovedPayment_Conflict(t *testing.T) {
	svc, d := setup(t)

	current := booking(model.StatusCancelled)
	other := booking(model.StatusConfirmed)
	other.ID = "b2"

	var reason string

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(current, nil)
	d.payments.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	d.repo.EXPECT().LockSlotTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.detector.EXPECT().FindConflict(gomock.Any(), gomock.Any(), current).Return(other, true, nil)
	d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, update map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, model.StatusCancelled, update[model.FieldStatus])

			reason, _ = update[model.FieldCancellationReason].(string)

			return nil
		})
	d.payments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, p paymentModel.Payment) error {
			assert.Equal(t, reason, p.Notes)

			return nil
		})

	res, err := svc.ApplyApprovedPayment(context.Background(), approved())

	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeConflict, res.Outcome)
	assert.Equal(t, "b2", res.Conflicting.ID)
	assert.Equal(t, model.StatusCancelled, res.Booking.Status)
	assert.True(t, res.Booking.IsPaymentConflict())
	assert.Contains(t, reason, model.ConflictReasonPrefix)
	assert.Contains(t, reason, "b2")
}

func TestStore_ApplyApprovedPayment_AlreadyConfirmed(t *testing.T) {
	svc, d := setup(t)

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(booking(model.StatusConfirmed), nil)
	d.payments.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	d.payments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.ApplyApprovedPayment(context.Background(), approved())

	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeRecorded, res.Outcome)
	assert.False(t, res.BookingUpdated())
}

func TestStore_ApplyApprovedPayment_Duplicate(t *testing.T) {
	svc, d := setup(t)

	d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(booking(model.StatusConfirmed), nil)
	d.payments.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	res, err := svc.ApplyApprovedPayment(context.Background(), approved())

	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeDuplicate, res.Outcome)
	assert.False(t, res.BookingUpdated())
}

func TestStore_ApplyApprovedPayment_Errors(t *testing.T) {
	t.Run("booking not found", func(t *testing.T) {
		svc, d := setup(t)

		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(model.Booking{}, nil)

		_, err := svc.ApplyApprovedPayment(context.Background(), approved())

		require.ErrorIs(t, err, service.ErrBookingNotFound)
	})

	t.Run("tenant mismatch", func(t *testing.T) {
		svc, d := setup(t)

		req := approved()
		req.TenantID = "t9"

		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(booking(model.StatusPending), nil)

		_, err := svc.ApplyApprovedPayment(context.Background(), req)

		require.ErrorIs(t, err, service.ErrTenantMismatch)
	})

	t.Run("conflict check fails", func(t *testing.T) {
		svc, d := setup(t)
		storageErr := errors.New("connection reset")

		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(booking(model.StatusCancelled), nil)
		d.payments.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().LockSlotTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.detector.EXPECT().FindConflict(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.Booking{}, false, storageErr)

		_, err := svc.ApplyApprovedPayment(context.Background(), approved())

		require.ErrorIs(t, err, storageErr)
	})

	t.Run("payment insert fails", func(t *testing.T) {
		svc, d := setup(t)
		storageErr := errors.New("unique violation")

		d.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "b1").Return(booking(model.StatusPending), nil)
		d.payments.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().LockSlotTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.detector.EXPECT().FindConflict(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.Booking{}, false, nil)
		d.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		d.payments.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(storageErr)

		_, err := svc.ApplyApprovedPayment(context.Background(), approved())

		require.ErrorIs(t, err, storageErr)
	})
}
