package signature

//go:generate go run go.uber.org/mock/mockgen -source=./signature.go -destination=../mocks/signature_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	credential "courtpay/internal/domains/credential/service"
	"courtpay/shared/constant"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const schemePrefix = "sha256="

var (
	ErrMissingSignature = errors.New("webhook signature missing")
	ErrNoSecret         = errors.New("no webhook secret configured")
	ErrInvalidSignature = errors.New("webhook signature does not match")
)

// Verifier authenticates webhook bodies with the tenant's webhook secret,
// falling back to the global secret like the credential resolver does.
type Verifier interface {
	Verify(ctx context.Context, tenantID string, body []byte, signature string) error
}

type verifierImpl struct {
	resolver credential.Resolver
	otel     otel.Otel
}

func New(resolver credential.Resolver, otel otel.Otel) Verifier {
	return &verifierImpl{
		resolver: resolver,
		otel:     otel,
	}
}

func (v *verifierImpl) Verify(ctx context.Context, tenantID string, body []byte, signature string) (err error) {
	ctx, scope := v.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".signature.Verify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if signature == "" {
		return ErrMissingSignature
	}

	credentials, err := v.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to resolve webhook secret for tenant %q: %w", tenantID, err)
	}

	if credentials.WebhookSecret == "" {
		return ErrNoSecret
	}

	given, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), schemePrefix))
	if err != nil {
		return ErrInvalidSignature
	}

	if !hmac.Equal(given, Sign(credentials.WebhookSecret, body)) {
		return ErrInvalidSignature
	}

	return nil
}

// Sign returns the HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return mac.Sum(nil)
}
