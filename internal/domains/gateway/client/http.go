package client

import (
	"bytes"
	"context"
	"courtpay/infras/otel"
	"courtpay/internal/domains/gateway/model"
	"courtpay/shared/constant"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	paymentPath      = "/v1/payments/%s"
	refundPath       = "/v1/payments/%s/refunds"
	maxErrorBodySize = 4096
)

type HTTPConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration
}

type httpGateway struct {
	cfg         HTTPConfig
	credentials model.Credentials
	client      *http.Client
	otel        otel.Otel
}

func NewHTTPGateway(cfg HTTPConfig, credentials model.Credentials, otel otel.Otel) Gateway {
	return &httpGateway{
		cfg:         cfg,
		credentials: credentials,
		client:      &http.Client{Timeout: cfg.Timeout},
		otel:        otel,
	}
}

func (g *httpGateway) Name() string {
	return g.cfg.Name
}

type paymentResponse struct {
	ID                model.ProviderID `json:"id"`
	Status            string           `json:"status"`
	StatusDetail      string           `json:"status_detail"`
	TransactionAmount decimal.Decimal  `json:"transaction_amount"`
	DateApproved      *string          `json:"date_approved"`
	ExternalReference string           `json:"external_reference"`
	PaymentMethodID   string           `json:"payment_method_id"`
	Refunds           []refundResponse `json:"refunds"`
}

type refundResponse struct {
	ID          model.ProviderID `json:"id"`
	PaymentID   model.ProviderID `json:"payment_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Status      string           `json:"status"`
	DateCreated *string          `json:"date_created"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Cause   []struct {
		Code        any    `json:"code"`
		Description string `json:"description"`
	} `json:"cause"`
}

type refundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

func (g *httpGateway) FetchPayment(ctx context.Context, externalID string) (res model.PaymentSnapshot, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".gateway.FetchPayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("payment.id", externalID)

	var body paymentResponse

	if err = g.do(ctx, http.MethodGet, fmt.Sprintf(paymentPath, url.PathEscape(externalID)), nil, "", &body); err != nil {
		return res, fmt.Errorf("failed to fetch payment %s: %w", externalID, err)
	}

	return body.toSnapshot(), nil
}

func (g *httpGateway) Refund(ctx context.Context, externalID string, amount *decimal.Decimal, idempotencyKey string) (res model.RefundOutcome, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".gateway.Refund")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("payment.id", externalID)

	payload, err := json.Marshal(refundRequest{Amount: amount})
	if err != nil {
		return res, fmt.Errorf("failed to encode refund request: %w", err)
	}

	var body refundResponse

	if err = g.do(ctx, http.MethodPost, fmt.Sprintf(refundPath, url.PathEscape(externalID)), payload, idempotencyKey, &body); err != nil {
		return res, fmt.Errorf("failed to refund payment %s: %w", externalID, err)
	}

	return model.RefundOutcome{
		ID:        string(body.ID),
		PaymentID: firstNonEmpty(string(body.PaymentID), externalID),
		Amount:    body.Amount,
		Status:    body.Status,
	}, nil
}

func (g *httpGateway) do(ctx context.Context, method, path string, payload []byte, idempotencyKey string, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(g.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}

	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+g.credentials.AccessToken)
	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	if idempotencyKey != "" {
		req.Header.Set(constant.RequestHeaderIdempotencyKey, idempotencyKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("provider", g.cfg.Name).Str("path", path).Msg("payment provider unreachable")

		return &model.ProviderError{Kind: model.KindTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return classifyResponse(resp)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &model.ProviderError{Kind: model.KindTransient, StatusCode: resp.StatusCode, Message: err.Error()}
		}

		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	return nil
}

func classifyResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var body errorResponse

	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil {
		parts := []string{body.Message, body.Error}
		for _, cause := range body.Cause {
			parts = append(parts, cause.Description)
		}

		message = strings.Join(nonEmpty(parts), "; ")
	}

	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return model.Classify(resp.StatusCode, message)
}

func (p paymentResponse) toSnapshot() model.PaymentSnapshot {
	snapshot := model.PaymentSnapshot{
		ID:                string(p.ID),
		Status:            p.Status,
		StatusDetail:      p.StatusDetail,
		TransactionAmount: p.TransactionAmount,
		DateApproved:      parseTime(p.DateApproved),
		ExternalReference: p.ExternalReference,
		PaymentMethod:     p.PaymentMethodID,
	}

	for _, r := range p.Refunds {
		snapshot.Refunds = append(snapshot.Refunds, model.RefundSnapshot{
			ID:          string(r.ID),
			Amount:      r.Amount,
			Status:      r.Status,
			DateCreated: parseTime(r.DateCreated),
		})
	}

	return snapshot
}

func parseTime(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		log.Warn().Err(err).Str("value", *value).Msg("unparseable provider timestamp")

		return nil
	}

	return &t
}

func nonEmpty(values []string) []string {
	res := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}

	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
