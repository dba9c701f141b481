package dto

import (
	"courtpay/internal/domains/booking/model"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	// OutcomeConfirmed moved a PENDING booking to CONFIRMED.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeReactivated moved a CANCELLED booking back to CONFIRMED.
	OutcomeReactivated Outcome = "reactivated"
	// OutcomeRecorded recorded a payment against an already confirmed booking.
	OutcomeRecorded Outcome = "recorded"
	// OutcomeDuplicate found the payment already recorded and changed nothing.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeConflict accepted the payment but left the booking cancelled
	// because another live booking holds the slot.
	OutcomeConflict Outcome = "conflict"
)

// ApprovedPayment is a provider approved payment addressed to one booking.
type ApprovedPayment struct {
	BookingID         string
	ExternalPaymentID string
	Amount            decimal.Decimal
	Method            string
	// TenantID, when set, must match the booking's tenant.
	TenantID string
}

type Transition struct {
	Outcome     Outcome
	Booking     model.Booking
	Conflicting model.Booking
	PaymentID   string
}

// BookingUpdated reports whether the booking row changed.
func (t Transition) BookingUpdated() bool {
	switch t.Outcome {
	case OutcomeConfirmed, OutcomeReactivated, OutcomeConflict:
		return true
	default:
		return false
	}
}
