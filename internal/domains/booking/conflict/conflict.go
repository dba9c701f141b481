// Package conflict decides whether a booking's time range collides with another
// live booking on the same court and day.
package conflict

//go:generate go run go.uber.org/mock/mockgen -source=./conflict.go -destination=../mocks/conflict_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	"courtpay/internal/domains/booking/model"
	"courtpay/internal/domains/booking/repository"
	"courtpay/shared/constant"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Detector never writes. Call it inside the transaction whose write depends on the answer.
type Detector interface {
	FindConflict(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (model.Booking, bool, error)
	HasConflict(ctx context.Context, tx *sqlx.Tx, booking model.Booking, excludingID string) (bool, error)
}

type detectorImpl struct {
	repo repository.Booking
	otel otel.Otel
	now  func() time.Time
}

func New(repo repository.Booking, otel otel.Otel, now func() time.Time) Detector {
	return &detectorImpl{
		repo: repo,
		otel: otel,
		now:  now,
	}
}

func (d *detectorImpl) FindConflict(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (res model.Booking, found bool, err error) {
	ctx, scope := d.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".conflict.FindConflict")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return d.find(ctx, tx, booking, booking.ID)
}

func (d *detectorImpl) HasConflict(ctx context.Context, tx *sqlx.Tx, booking model.Booking, excludingID string) (found bool, err error) {
	ctx, scope := d.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".conflict.HasConflict")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, found, err = d.find(ctx, tx, booking, excludingID)

	return found, err
}

func (d *detectorImpl) find(ctx context.Context, tx *sqlx.Tx, booking model.Booking, excludingID string) (model.Booking, bool, error) {
	now := d.now()

	candidates, err := d.repo.GetLiveOnSlotTx(ctx, tx, booking.Slot(), excludingID, now)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to load bookings on slot")

		return model.Booking{}, false, fmt.Errorf("failed to load bookings on slot for booking %s: %w", booking.ID, err)
	}

	for _, other := range candidates {
		if other.ID == excludingID || !other.IsLive(now) {
			continue
		}

		if Overlaps(booking.StartTime, booking.EndTime, other.StartTime, other.EndTime) {
			return other, true, nil
		}
	}

	return model.Booking{}, false, nil
}

// Overlaps reports whether [s1,e1) and [s2,e2) share any instant. Only the time
// of day is compared, so TIME columns and full timestamps mix safely.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return clock(s1) < clock(e2) && clock(s2) < clock(e1)
}

func clock(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
