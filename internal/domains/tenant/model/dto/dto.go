package dto

import (
	"courtpay/internal/domains/tenant/model"
	"courtpay/shared/secret"
	"fmt"
	"time"
)

// UpdatePaymentCredentialsRequest rotates a tenant's provider credentials.
// Omitted fields keep their stored value.
type UpdatePaymentCredentialsRequest struct {
	PaymentEnabled *bool   `json:"payment_enabled"`
	AccessToken    *string `json:"access_token"    validate:"omitempty,min=8"`
	PublicKey      *string `json:"public_key"`
	WebhookSecret  *string `json:"webhook_secret"`
	Environment    *string `json:"environment"     validate:"omitempty,oneof=sandbox production"`
}

func (r UpdatePaymentCredentialsRequest) IsEmpty() bool {
	return r.PaymentEnabled == nil && r.AccessToken == nil && r.PublicKey == nil &&
		r.WebhookSecret == nil && r.Environment == nil
}

// ToModel seals the secret fields with box. The public key is stored as given.
func (r UpdatePaymentCredentialsRequest) ToModel(box secret.Box) (model.PaymentCredentialsUpdate, error) {
	res := model.PaymentCredentialsUpdate{
		PaymentEnabled:     r.PaymentEnabled,
		PaymentPublicKey:   r.PublicKey,
		PaymentEnvironment: r.Environment,
	}

	var err error

	if res.PaymentAccessToken, err = seal(box, r.AccessToken); err != nil {
		return res, fmt.Errorf("failed to seal access token: %w", err)
	}

	if res.PaymentWebhookSecret, err = seal(box, r.WebhookSecret); err != nil {
		return res, fmt.Errorf("failed to seal webhook secret: %w", err)
	}

	return res, nil
}

func seal(box secret.Box, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}

	sealed, err := box.Encrypt(*value)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &sealed, nil
}

// PaymentSettingsResponse describes a tenant's integration without exposing secrets.
type PaymentSettingsResponse struct {
	TenantID         string     `json:"tenant_id"`
	PaymentEnabled   bool       `json:"payment_enabled"`
	Environment      string     `json:"environment"`
	HasAccessToken   bool       `json:"has_access_token"`
	HasWebhookSecret bool       `json:"has_webhook_secret"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func (r *PaymentSettingsResponse) FromModel(m model.Tenant) {
	r.TenantID = m.ID
	r.PaymentEnabled = m.PaymentEnabled
	r.Environment = m.PaymentEnvironment
	r.HasAccessToken = m.PaymentAccessToken != nil && *m.PaymentAccessToken != ""
	r.HasWebhookSecret = m.PaymentWebhookSecret != nil && *m.PaymentWebhookSecret != ""
	r.UpdatedAt = m.PaymentCredentialsUpdatedAt
}
