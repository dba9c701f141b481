package model

import (
	"courtpay/shared/model"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                 = "id"
	FieldTenantID           = "tenant_id"
	FieldCourtID            = "court_id"
	FieldBookingDate        = "booking_date"
	FieldStartTime          = "start_time"
	FieldEndTime            = "end_time"
	FieldStatus             = "status"
	FieldPaymentStatus      = "payment_status"
	FieldDepositAmount      = "deposit_amount"
	FieldExpiresAt          = "expires_at"
	FieldCancellationReason = "cancellation_reason"
	FieldCancelledAt        = "cancelled_at"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

const (
	PaymentStatusPending     = "PENDING"
	PaymentStatusDepositPaid = "DEPOSIT_PAID"
	PaymentStatusFullyPaid   = "FULLY_PAID"
)

// ConflictReasonPrefix marks a cancellation reason written when an approved
// payment arrived for a slot that another booking already holds.
const ConflictReasonPrefix = "PAYMENT_CONFLICT:"

type Booking struct {
	ID                 string          `db:"id"`
	TenantID           string          `db:"tenant_id"`
	CourtID            string          `db:"court_id"`
	BookingDate        time.Time       `db:"booking_date"`
	StartTime          time.Time       `db:"start_time"`
	EndTime            time.Time       `db:"end_time"`
	Status             string          `db:"status"`
	PaymentStatus      string          `db:"payment_status"`
	DepositAmount      decimal.Decimal `db:"deposit_amount"`
	ExpiresAt          *time.Time      `db:"expires_at"`
	CancellationReason *string         `db:"cancellation_reason"`
	CancelledAt        *time.Time      `db:"cancelled_at"`
	model.Metadata
}

// IsLive reports whether the booking holds its slot at now.
func (b Booking) IsLive(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}

	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

func (b Booking) IsPaymentConflict() bool {
	return b.CancellationReason != nil && strings.HasPrefix(*b.CancellationReason, ConflictReasonPrefix)
}

// Slot identifies the tenant, court and day a booking lives on.
type Slot struct {
	TenantID string
	CourtID  string
	Date     time.Time
}

func (b Booking) Slot() Slot {
	return Slot{TenantID: b.TenantID, CourtID: b.CourtID, Date: b.BookingDate}
}
