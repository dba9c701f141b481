package dto

import (
	"courtpay/internal/domains/payment/model"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID              string          `json:"id"`
	BookingID       string          `json:"booking_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	Type            string          `json:"type"`
	Reference       string          `json:"reference"`
	SourceReference *string         `json:"source_reference,omitempty"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
	ModifiedAt      time.Time       `json:"modified_at"`
}

func (r *PaymentResponse) FromModel(mod model.Payment) {
	r.ID = mod.ID
	r.BookingID = mod.BookingID
	r.Amount = mod.Amount
	r.Method = mod.Method
	r.Type = mod.Type
	r.Reference = mod.Reference
	r.SourceReference = mod.SourceReference
	r.Status = mod.Status
	r.Notes = mod.Notes
	r.CreatedAt = mod.CreatedAt
	r.CreatedBy = mod.CreatedBy
	r.ModifiedAt = mod.ModifiedAt
}

// LedgerResponse is one page of the PAYMENT and REFUND rows of a booking.
type LedgerResponse struct {
	BookingID string            `json:"booking_id"`
	Payments  []PaymentResponse `json:"payments"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *LedgerResponse) FromModels(bookingID string, models []model.Payment, totalData, totalPage int) {
	r.BookingID = bookingID
	r.TotalData = totalData
	r.TotalPage = totalPage

	r.Payments = make([]PaymentResponse, len(models))
	for i, mod := range models {
		r.Payments[i].FromModel(mod)
	}
}
