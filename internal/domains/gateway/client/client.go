package client

//go:generate go run go.uber.org/mock/mockgen -source=./client.go -destination=../mocks/client_mock.go -package=mocks

import (
	"context"
	"courtpay/internal/domains/gateway/model"

	"github.com/shopspring/decimal"
)

// Gateway talks to the payment provider on behalf of one credential bundle.
type Gateway interface {
	Name() string
	FetchPayment(ctx context.Context, externalID string) (model.PaymentSnapshot, error)
	// Refund returns the whole unrefunded remainder when amount is nil.
	Refund(ctx context.Context, externalID string, amount *decimal.Decimal, idempotencyKey string) (model.RefundOutcome, error)
}
