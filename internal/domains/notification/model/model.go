package model

import "time"

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// ConflictNotification tells operators that an approved payment landed on a
// slot another booking already holds and what happened to the refund.
type ConflictNotification struct {
	BookingID            string    `json:"booking_id"`
	TenantID             string    `json:"tenant_id"`
	PaymentID            string    `json:"payment_id"`
	ConflictingBookingID string    `json:"conflicting_booking_id,omitempty"`
	RefundID             string    `json:"refund_id,omitempty"`
	RefundStatus         string    `json:"refund_status"`
	RefundError          string    `json:"refund_error,omitempty"`
	Severity             string    `json:"severity"`
	OccurredAt           time.Time `json:"occurred_at"`
}

// SeverityFor is critical when the compensating refund did not go through.
func SeverityFor(refundSucceeded bool) string {
	if refundSucceeded {
		return SeverityWarning
	}

	return SeverityCritical
}
