package client

import (
	"context"
	"courtpay/internal/domains/gateway/model"
	"fmt"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"
)

const StandInName = "standin"

// StandIn is an in-memory provider with deterministic answers. It serves tenants
// whose integration is disabled and environments without live credentials.
type StandIn struct {
	mu        sync.Mutex
	payments  map[string]model.PaymentSnapshot
	refunds   map[string]int
	byRequest map[string]model.RefundOutcome
}

func NewStandIn(seed ...model.PaymentSnapshot) *StandIn {
	s := &StandIn{
		payments:  make(map[string]model.PaymentSnapshot),
		refunds:   make(map[string]int),
		byRequest: make(map[string]model.RefundOutcome),
	}

	for _, p := range seed {
		s.Seed(p)
	}

	return s
}

func (s *StandIn) Seed(snapshot model.PaymentSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments[snapshot.ID] = snapshot
}

func (s *StandIn) Name() string {
	return StandInName
}

func (s *StandIn) FetchPayment(_ context.Context, externalID string) (model.PaymentSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.payments[externalID]
	if !ok {
		return model.PaymentSnapshot{}, model.Classify(http.StatusNotFound, "payment "+externalID+" not found")
	}

	return snapshot, nil
}

func (s *StandIn) Refund(_ context.Context, externalID string, amount *decimal.Decimal, idempotencyKey string) (model.RefundOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idempotencyKey != "" {
		if outcome, ok := s.byRequest[idempotencyKey]; ok {
			return outcome, nil
		}
	}

	snapshot, ok := s.payments[externalID]
	if !ok {
		return model.RefundOutcome{}, model.Classify(http.StatusNotFound, "payment "+externalID+" not found")
	}

	remaining := snapshot.TransactionAmount.Sub(snapshot.RefundedAmount())
	if !remaining.IsPositive() {
		return model.RefundOutcome{}, model.Classify(http.StatusBadRequest, "payment already refunded")
	}

	value := remaining
	if amount != nil {
		value = *amount
	}

	if !value.IsPositive() || value.GreaterThan(remaining) {
		return model.RefundOutcome{}, model.Classify(http.StatusBadRequest, fmt.Sprintf("invalid refund amount %s, refundable %s", value, remaining))
	}

	s.refunds[externalID]++

	outcome := model.RefundOutcome{
		ID:        fmt.Sprintf("standin-refund-%s-%d", externalID, s.refunds[externalID]),
		PaymentID: externalID,
		Amount:    value,
		Status:    model.RefundStatusApproved,
	}

	snapshot.Refunds = append(snapshot.Refunds, model.RefundSnapshot{ID: outcome.ID, Amount: value, Status: outcome.Status})
	if snapshot.RefundedAmount().Equal(snapshot.TransactionAmount) {
		snapshot.Status = model.PaymentStatusRefunded
	}

	s.payments[externalID] = snapshot

	if idempotencyKey != "" {
		s.byRequest[idempotencyKey] = outcome
	}

	return outcome, nil
}
