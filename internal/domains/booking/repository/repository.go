package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	"courtpay/infras/postgres"
	"courtpay/internal/domains/booking/model"
	"courtpay/shared"
	"courtpay/shared/constant"
	gDto "courtpay/shared/dto"
	"courtpay/shared/logger"
	gRepo "courtpay/shared/repository"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const lockSlotQuery = "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))"

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	// GetForUpdateTx locks the booking row until tx ends. A missing booking yields the zero value.
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error)
	// LockSlotTx takes a transaction scoped advisory lock on the tenant, court and day.
	LockSlotTx(ctx context.Context, tx *sqlx.Tx, slot model.Slot) error
	// GetLiveOnSlotTx lists and locks bookings holding time on slot at now, excluding one booking.
	GetLiveOnSlotTx(ctx context.Context, tx *sqlx.Tx, slot model.Slot, excludingID string, now time.Time) ([]model.Booking, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetForUpdateTx")
	defer scope.End()

	return r.GetTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName), true) //nolint:wrapcheck
}

func (r *repositoryImpl) LockSlotTx(ctx context.Context, tx *sqlx.Tx, slot model.Slot) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.LockSlotTx")
	defer scope.End()

	key := SlotLockKey(slot)

	scope.SetAttribute(constant.OtelQueryAttributeKey, lockSlotQuery)
	scope.SetAttribute("slot", key)

	if _, err := tx.ExecContext(ctx, lockSlotQuery, key); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to lock slot %s: %w", key, err)
	}

	return nil
}

func (r *repositoryImpl) GetLiveOnSlotTx(ctx context.Context, tx *sqlx.Tx, slot model.Slot, excludingID string, now time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetLiveOnSlotTx")
	defer scope.End()

	return r.GetAllTx(ctx, tx, gDto.QueryParams{}, LiveOnSlotFilter(slot, excludingID, now), true) //nolint:wrapcheck
}

func SlotLockKey(slot model.Slot) string {
	return fmt.Sprintf("%s:%s:%s:%s", model.TableName, slot.TenantID, slot.CourtID, slot.Date.Format(constant.DateOnlyFormat))
}

// LiveOnSlotFilter matches PENDING or CONFIRMED bookings on slot whose hold has not expired.
func LiveOnSlotFilter(slot model.Slot, excludingID string, now time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldTenantID, Value: slot.TenantID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldCourtID, Value: slot.CourtID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldBookingDate, Value: slot.Date.Format(constant.DateOnlyFormat), Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: []string{model.StatusPending, model.StatusConfirmed}, Operator: gDto.FilterOperatorIn, Table: model.TableName},
			gDto.Filter{Field: model.FieldID, ArgName: "excluding_id", Value: excludingID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName},
			gDto.FilterGroup{
				Operator: gDto.FilterGroupOperatorOr,
				Filters: []any{
					gDto.Filter{Field: model.FieldExpiresAt, Operator: gDto.FilterIsNull, Table: model.TableName},
					gDto.Filter{Field: model.FieldExpiresAt, ArgName: "now", Value: now, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
				},
			},
		},
	}
}
