package failure_test

import (
	"courtpay/shared/failure"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{Code: http.StatusTeapot, Message: "short and stout"}

	assert.Equal(t, "short and stout", f.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("bad envelope")), wantCode: http.StatusBadRequest, wantMsg: "bad envelope"},
		{name: "bad request from string", err: failure.BadRequestFromString("missing id"), wantCode: http.StatusBadRequest, wantMsg: "missing id"},
		{name: "unauthorized", err: failure.Unauthorized("no token"), wantCode: http.StatusUnauthorized, wantMsg: "no token"},
		{name: "internal", err: failure.InternalError(errors.New("boom")), wantCode: http.StatusInternalServerError, wantMsg: "boom"},
		{name: "not found", err: failure.NotFound("booking not found"), wantCode: http.StatusNotFound, wantMsg: "booking not found"},
		{name: "conflict", err: failure.Conflict("already refunded"), wantCode: http.StatusConflict, wantMsg: "already refunded"},
		{name: "forbidden", err: failure.Forbidden("nope"), wantCode: http.StatusForbidden, wantMsg: "nope"},
		{name: "service unavailable", err: failure.ServiceUnavailable("retry later"), wantCode: http.StatusServiceUnavailable, wantMsg: "retry later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
			assert.EqualError(t, tt.err, tt.wantMsg)
		})
	}
}

func TestNilInputs(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain error", err: errors.New("plain"), want: http.StatusInternalServerError},
		{name: "wrapped failure", err: fmt.Errorf("outer: %w", failure.NotFound("x")), want: http.StatusNotFound},
		{name: "predefined", err: failure.ForbiddenError, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.GetCode(tt.err))
		})
	}
}
