package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

const (
	PaymentStatusApproved   = "approved"
	PaymentStatusPending    = "pending"
	PaymentStatusInProcess  = "in_process"
	PaymentStatusRejected   = "rejected"
	PaymentStatusCancelled  = "cancelled"
	PaymentStatusRefunded   = "refunded"
	PaymentStatusChargeback = "charged_back"
)

const (
	RefundStatusApproved = "approved"
	RefundStatusPending  = "in_process"
	RefundStatusRejected = "rejected"
)

// Credentials is a decrypted bundle for one tenant. It must never be logged.
type Credentials struct {
	AccessToken   string
	PublicKey     string
	WebhookSecret string
	Environment   string
	UpdatedAt     *time.Time
}

func (c Credentials) String() string {
	return "Credentials{environment=" + c.Environment + ", secrets=redacted}"
}

func (c Credentials) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

type RefundSnapshot struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	DateCreated *time.Time      `json:"date_created,omitempty"`
}

// PaymentSnapshot is the canonical view of a provider payment used by every
// component after ingestion.
type PaymentSnapshot struct {
	ID                string           `json:"id"`
	Status            string           `json:"status"`
	StatusDetail      string           `json:"status_detail,omitempty"`
	TransactionAmount decimal.Decimal  `json:"transaction_amount"`
	DateApproved      *time.Time       `json:"date_approved,omitempty"`
	ExternalReference string           `json:"external_reference"`
	PaymentMethod     string           `json:"payment_method,omitempty"`
	Refunds           []RefundSnapshot `json:"refunds,omitempty"`
}

func (p PaymentSnapshot) IsApproved() bool {
	return p.Status == PaymentStatusApproved
}

// RefundedAmount sums refunds the provider did not reject.
func (p PaymentSnapshot) RefundedAmount() decimal.Decimal {
	total := decimal.Zero

	for _, r := range p.Refunds {
		if r.Status != RefundStatusRejected {
			total = total.Add(r.Amount)
		}
	}

	return total
}

type RefundOutcome struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
}

// ProviderID accepts ids sent either as JSON numbers or strings.
type ProviderID string

func (id *ProviderID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}

		*id = ProviderID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode id: %w", err)
	}

	*id = ProviderID(n.String())

	return nil
}
