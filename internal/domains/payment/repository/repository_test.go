package repository_test

import (
	"courtpay/internal/domains/payment/model"
	"courtpay/internal/domains/payment/repository"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletedRefundFor(t *testing.T) {
	filter := repository.CompletedRefundFor("b1", "pay-1")
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(payments.booking_id = :booking_id AND payments.type = :type AND "+
		"payments.source_reference = :source_reference AND payments.status = :status)", where)
	assert.Equal(t, map[string]any{
		"booking_id":       "b1",
		"type":             model.TypeRefund,
		"source_reference": "pay-1",
		"status":           model.StatusCompleted,
	}, args)
}

func TestByReference(t *testing.T) {
	filter := repository.ByReference("b1", model.TypePayment, "pay-1")
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(payments.booking_id = :booking_id AND payments.type = :type AND payments.reference = :reference)", where)
	assert.Equal(t, "pay-1", args["reference"])
}
