package model

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound            = errors.New("payment not found at provider")
	ErrAlreadyRefunded     = errors.New("payment already refunded")
	ErrRefundWindowExpired = errors.New("refund window expired")
	ErrInsufficientBalance = errors.New("insufficient balance for refund")
	ErrTransient           = errors.New("payment provider temporarily unavailable")
	ErrUnauthorized        = errors.New("payment provider rejected the credentials")
	ErrUnknown             = errors.New("payment provider error")
)

type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindAlreadyRefunded     ErrorKind = "already_refunded"
	KindRefundWindowExpired ErrorKind = "refund_window_expired"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindTransient           ErrorKind = "transient"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindUnknown             ErrorKind = "unknown"
)

var kindErrors = map[ErrorKind]error{
	KindNotFound:            ErrNotFound,
	KindAlreadyRefunded:     ErrAlreadyRefunded,
	KindRefundWindowExpired: ErrRefundWindowExpired,
	KindInsufficientBalance: ErrInsufficientBalance,
	KindTransient:           ErrTransient,
	KindUnauthorized:        ErrUnauthorized,
	KindUnknown:             ErrUnknown,
}

// ProviderError carries the provider's own message next to the classified kind.
// errors.Is matches it against the sentinel of its kind.
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return kindErrors[e.Kind]
}

type messageRule struct {
	pattern string
	kind    ErrorKind
}

// messageRules is checked in order against the lower-cased provider message. The
// provider exposes no structured code for these refund failures, so the text is all we have.
var messageRules = []messageRule{
	{pattern: "already refunded", kind: KindAlreadyRefunded},
	{pattern: "payment already refunded", kind: KindAlreadyRefunded},
	{pattern: "total refunded", kind: KindAlreadyRefunded},
	{pattern: "refund window", kind: KindRefundWindowExpired},
	{pattern: "plazo", kind: KindRefundWindowExpired},
	{pattern: "180 days", kind: KindRefundWindowExpired},
	{pattern: "refund period expired", kind: KindRefundWindowExpired},
	{pattern: "insufficient", kind: KindInsufficientBalance},
	{pattern: "saldo", kind: KindInsufficientBalance},
	{pattern: "not found", kind: KindNotFound},
	{pattern: "not_found", kind: KindNotFound},
	{pattern: "timeout", kind: KindTransient},
	{pattern: "temporarily unavailable", kind: KindTransient},
}

// Classify maps a provider response to one error kind. Status codes win when
// they are unambiguous; otherwise the message decides.
func Classify(statusCode int, message string) *ProviderError {
	kind := classify(statusCode, message)

	return &ProviderError{Kind: kind, StatusCode: statusCode, Message: message}
}

func classify(statusCode int, message string) ErrorKind {
	switch {
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return KindUnauthorized
	case statusCode == http.StatusTooManyRequests, statusCode == http.StatusRequestTimeout, statusCode >= http.StatusInternalServerError:
		return KindTransient
	}

	lowered := strings.ToLower(message)

	for _, rule := range messageRules {
		if strings.Contains(lowered, rule.pattern) {
			return rule.kind
		}
	}

	return KindUnknown
}

// KindOf returns the classified kind of err, KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Kind
	}

	for kind, sentinel := range kindErrors {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return KindUnknown
}
