package model

import (
	"courtpay/shared/model"
	"time"
)

const (
	TableName  = "tenants"
	EntityName = "tenant"

	FieldID                          = "id"
	FieldName                        = "name"
	FieldActive                      = "active"
	FieldPaymentEnabled              = "payment_enabled"
	FieldPaymentAccessToken          = "payment_access_token"
	FieldPaymentPublicKey            = "payment_public_key"
	FieldPaymentWebhookSecret        = "payment_webhook_secret"
	FieldPaymentEnvironment          = "payment_environment"
	FieldPaymentCredentialsUpdatedAt = "payment_credentials_updated_at"
)

// Tenant holds the payment secrets sealed at rest.
type Tenant struct {
	ID                          string     `db:"id"`
	Name                        string     `db:"name"`
	Active                      bool       `db:"active"`
	PaymentEnabled              bool       `db:"payment_enabled"`
	PaymentAccessToken          *string    `db:"payment_access_token"`
	PaymentPublicKey            *string    `db:"payment_public_key"`
	PaymentWebhookSecret        *string    `db:"payment_webhook_secret"`
	PaymentEnvironment          string     `db:"payment_environment"`
	PaymentCredentialsUpdatedAt *time.Time `db:"payment_credentials_updated_at"`
	model.Metadata
}

// PaymentCredentialsUpdate lists the columns a credential rotation may touch.
// Nil fields are left unchanged.
type PaymentCredentialsUpdate struct {
	PaymentEnabled       *bool   `db:"payment_enabled"`
	PaymentAccessToken   *string `db:"payment_access_token"`
	PaymentPublicKey     *string `db:"payment_public_key"`
	PaymentWebhookSecret *string `db:"payment_webhook_secret"`
	PaymentEnvironment   *string `db:"payment_environment"`
}
