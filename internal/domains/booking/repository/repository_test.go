package repository_test

import (
	"context"
	"courtpay/infras/otel/mocks"
	"courtpay/internal/domains/booking/model"
	"courtpay/internal/domains/booking/repository"
	gDto "courtpay/shared/dto"
	gRepo "courtpay/shared/repository"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotLockKey(t *testing.T) {
	slot := model.Slot{TenantID: "t1", CourtID: "c1", Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, "bookings:t1:c1:2024-06-15", repository.SlotLockKey(slot))
}

func TestLiveOnSlotFilter(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	slot := model.Slot{TenantID: "t1", CourtID: "c1", Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}

	filter := repository.LiveOnSlotFilter(slot, "b1", now)
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(bookings.tenant_id = :tenant_id AND bookings.court_id = :court_id AND "+
		"bookings.booking_date = :booking_date AND bookings.status IN (:status_0, :status_1)  AND "+
		"bookings.id != :excluding_id AND (bookings.expires_at IS NULL OR bookings.expires_at > :now))", where)
	assert.Equal(t, map[string]any{
		"tenant_id":    "t1",
		"court_id":     "c1",
		"booking_date": "2024-06-15",
		"status_0":     model.StatusPending,
		"status_1":     model.StatusConfirmed,
		"excluding_id": "b1",
		"now":          now,
	}, args)
}

func TestLiveOnSlotQuery_LocksRows(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	slot := model.Slot{TenantID: "t1", CourtID: "c1", Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	repo := gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, nil, mocks.NewOtel())

	query, args := repo.ListQuery(context.Background(), gDto.QueryParams{}, repository.LiveOnSlotFilter(slot, "b1", now), true)

	assert.True(t, strings.HasPrefix(query, "SELECT "))
	assert.Contains(t, query, "FROM bookings")
	assert.Contains(t, query, "bookings.id != :excluding_id")
	assert.True(t, strings.HasSuffix(query, " FOR UPDATE"))
	assert.Equal(t, "b1", args["excluding_id"])
}
