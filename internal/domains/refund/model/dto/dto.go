package dto

import (
	gwModel "courtpay/internal/domains/gateway/model"

	"github.com/shopspring/decimal"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusDuplicate = "duplicate"
)

// ProcessRefundRequest with a nil Amount refunds whatever the provider still holds.
type ProcessRefundRequest struct {
	BookingID         string           `json:"booking_id"          validate:"required"`
	ExternalPaymentID string           `json:"external_payment_id" validate:"required"`
	Amount            *decimal.Decimal `json:"amount,omitempty"    validate:"omitempty,gt=0"`
	Reason            string           `json:"reason"              validate:"max=500"`
	TenantID          string           `json:"tenant_id,omitempty"`
}

// Result is the outcome of one refund attempt. LedgerError is set when the
// provider refunded but the ledger row could not be finalized.
type Result struct {
	Success     bool              `json:"success"`
	RefundID    string            `json:"refund_id,omitempty"`
	RecordID    string            `json:"record_id,omitempty"`
	Status      string            `json:"status"`
	Error       string            `json:"error,omitempty"`
	ErrorKind   gwModel.ErrorKind `json:"error_kind,omitempty"`
	LedgerError string            `json:"ledger_error,omitempty"`
}

// CreateRefundRequest is the operator facing body of a manual refund.
type CreateRefundRequest struct {
	ExternalPaymentID string           `json:"external_payment_id" validate:"required"`
	Amount            *decimal.Decimal `json:"amount,omitempty"    validate:"omitempty,gt=0"`
	Reason            string           `json:"reason"              validate:"required,max=500"`
}

func (r CreateRefundRequest) ToProcessRequest(bookingID string) ProcessRefundRequest {
	return ProcessRefundRequest{
		BookingID:         bookingID,
		ExternalPaymentID: r.ExternalPaymentID,
		Amount:            r.Amount,
		Reason:            r.Reason,
	}
}
