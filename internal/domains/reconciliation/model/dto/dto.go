package dto

import (
	gwModel "courtpay/internal/domains/gateway/model"
	"time"

	"github.com/shopspring/decimal"
)

const TypePayment = "payment"

// Envelope is the provider webhook body. Data either carries the full payment
// or only its id.
type Envelope struct {
	Type   string       `json:"type"   validate:"required"`
	Action string       `json:"action,omitempty"`
	Data   EnvelopeData `json:"data"`

	// Authenticated is set by the transport once the body signature verifies.
	Authenticated bool `json:"-"`
}

type EnvelopeData struct {
	ID                gwModel.ProviderID `json:"id"                           validate:"required"`
	Status            string             `json:"status,omitempty"`
	StatusDetail      string             `json:"status_detail,omitempty"`
	TransactionAmount *decimal.Decimal   `json:"transaction_amount,omitempty"`
	ExternalReference string             `json:"external_reference,omitempty"`
	DateApproved      *time.Time         `json:"date_approved,omitempty"`
	PaymentMethodID   string             `json:"payment_method_id,omitempty"`
	Refunds           []EnvelopeRefund   `json:"refunds,omitempty"`
}

type EnvelopeRefund struct {
	ID     gwModel.ProviderID `json:"id"`
	Amount decimal.Decimal    `json:"amount"`
	Status string             `json:"status"`
}

// HasFullData reports whether the payload can be used without a provider fetch.
func (d EnvelopeData) HasFullData() bool {
	return d.Status != "" && d.ExternalReference != "" && d.TransactionAmount != nil
}

func (d EnvelopeData) ToSnapshot() gwModel.PaymentSnapshot {
	snapshot := gwModel.PaymentSnapshot{
		ID:                string(d.ID),
		Status:            d.Status,
		StatusDetail:      d.StatusDetail,
		DateApproved:      d.DateApproved,
		ExternalReference: d.ExternalReference,
		PaymentMethod:     d.PaymentMethodID,
	}

	if d.TransactionAmount != nil {
		snapshot.TransactionAmount = *d.TransactionAmount
	}

	for _, r := range d.Refunds {
		snapshot.Refunds = append(snapshot.Refunds, gwModel.RefundSnapshot{
			ID:     string(r.ID),
			Amount: r.Amount,
			Status: r.Status,
		})
	}

	return snapshot
}

type ErrorKind string

const (
	KindMalformed ErrorKind = "malformed"
	KindNotFound  ErrorKind = "not_found"
	KindTransient ErrorKind = "transient"
	KindConflict  ErrorKind = "conflict"
)

const (
	OutcomeIgnored     = "ignored"
	OutcomeNotApproved = "not_approved"
)

// Result is always returned, never an error. Processed=false asks the
// delivering side to retry.
type Result struct {
	Processed      bool      `json:"processed"`
	BookingUpdated bool      `json:"booking_updated"`
	BookingID      string    `json:"booking_id,omitempty"`
	Outcome        string    `json:"outcome,omitempty"`
	Error          string    `json:"error,omitempty"`
	Kind           ErrorKind `json:"kind,omitempty"`
	RefundID       string    `json:"refund_id,omitempty"`
}
