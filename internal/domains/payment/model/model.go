package model

import (
	"courtpay/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID              = "id"
	FieldTenantID        = "tenant_id"
	FieldBookingID       = "booking_id"
	FieldAmount          = "amount"
	FieldMethod          = "method"
	FieldType            = "type"
	FieldReference       = "reference"
	FieldSourceReference = "source_reference"
	FieldStatus          = "status"
	FieldNotes           = "notes"
)

const (
	TypePayment = "PAYMENT"
	TypeRefund  = "REFUND"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Payment is a ledger row. Rows are updated from pending to a final status but never deleted.
type Payment struct {
	ID        string          `db:"id"`
	TenantID  string          `db:"tenant_id"`
	BookingID string          `db:"booking_id"`
	Amount    decimal.Decimal `db:"amount"`
	Method    string          `db:"method"`
	Type      string          `db:"type"`
	// Reference is the provider id that produced the row.
	Reference string `db:"reference"`
	// SourceReference is the external payment a REFUND compensates.
	SourceReference *string `db:"source_reference"`
	Status          string  `db:"status"`
	Notes           string  `db:"notes"`
	model.Metadata
}
