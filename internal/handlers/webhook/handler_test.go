package webhook_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtpay/config"
	"courtpay/infras/otel/mocks"
	reconMocks "courtpay/internal/domains/reconciliation/mocks"
	"courtpay/internal/domains/reconciliation/model/dto"
	"courtpay/internal/domains/reconciliation/signature"
	"courtpay/internal/handlers/webhook"
	"courtpay/shared/constant"
)

const approvedBody = `{"type":"payment","action":"payment.updated","data":{"id":"12345"}}`

func newServer(t *testing.T, engine *reconMocks.MockEngine, archiver *reconMocks.MockArchiver, verifier *reconMocks.MockVerifier, maxBody int) *chi.Mux {
	t.Helper()

	cfg := &config.Config{}
	cfg.Webhook.MaxBodySizeBytes = maxBody

	handler := webhook.New(engine, archiver, verifier, cfg, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return router
}

func expectArchive(archiver *reconMocks.MockArchiver, tenantID string) chan []byte {
	archived := make(chan []byte, 1)

	archiver.EXPECT().Archive(gomock.Any(), tenantID, gomock.Any()).
		Do(func(_ context.Context, _ string, body []byte) { archived <- body })

	return archived
}

func waitArchived(t *testing.T, archived chan []byte) []byte {
	t.Helper()

	select {
	case body := <-archived:
		return body
	case <-time.After(time.Second):
		t.Fatal("webhook body was not archived")

		return nil
	}
}

func TestHandler_ReceivePayment(t *testing.T) {
	tests := []struct {
		name     string
		result   dto.Result
		wantCode int
	}{
		{
			name:     "processed",
			result:   dto.Result{Processed: true, BookingUpdated: true, BookingID: "b-1", Outcome: "confirmed"},
			wantCode: http.StatusOK,
		},
		{
			name:     "conflict is still processed",
			result:   dto.Result{Processed: true, BookingUpdated: true, BookingID: "b-1", Kind: dto.KindConflict, RefundID: "r-1"},
			wantCode: http.StatusOK,
		},
		{
			name:     "malformed",
			result:   dto.Result{Kind: dto.KindMalformed, Error: "payment has no booking reference"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "not found",
			result:   dto.Result{Kind: dto.KindNotFound, Error: "booking not found"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "transient",
			result:   dto.Result{Kind: dto.KindTransient, Error: "provider timeout"},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := reconMocks.NewMockEngine(ctrl)
			archiver := reconMocks.NewMockArchiver(ctrl)
			router := newServer(t, engine, archiver, reconMocks.NewMockVerifier(ctrl), 0)

			archived := expectArchive(archiver, "tenant-1")
			engine.EXPECT().Reconcile(gomock.Any(), "tenant-1", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, envelope dto.Envelope) dto.Result {
					assert.Equal(t, dto.TypePayment, envelope.Type)
					assert.Equal(t, "12345", string(envelope.Data.ID))
					assert.False(t, envelope.Authenticated)

					return tt.result
				})

			request := httptest.NewRequest(http.MethodPost, "/webhooks/payments/tenant-1", strings.NewReader(approvedBody))
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"processed":`)
			assert.Equal(t, approvedBody, string(waitArchived(t, archived)))
		})
	}
}

func TestHandler_ReceivePayment_WithoutTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := reconMocks.NewMockEngine(ctrl)
	archiver := reconMocks.NewMockArchiver(ctrl)
	router := newServer(t, engine, archiver, reconMocks.NewMockVerifier(ctrl), 0)

	archived := expectArchive(archiver, "")
	engine.EXPECT().Reconcile(gomock.Any(), "", gomock.Any()).Return(dto.Result{Processed: true, Outcome: dto.OutcomeIgnored})

	request := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(approvedBody))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	waitArchived(t, archived)
}

func TestHandler_ReceivePayment_InvalidJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := reconMocks.NewMockEngine(ctrl)
	archiver := reconMocks.NewMockArchiver(ctrl)
	router := newServer(t, engine, archiver, reconMocks.NewMockVerifier(ctrl), 0)

	archived := expectArchive(archiver, "tenant-1")

	request := httptest.NewRequest(http.MethodPost, "/webhooks/payments/tenant-1", strings.NewReader(`{"type":`))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, `{"type":`, string(waitArchived(t, archived)))
}

func TestHandler_ReceivePayment_BodyTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := reconMocks.NewMockEngine(ctrl)
	archiver := reconMocks.NewMockArchiver(ctrl)
	router := newServer(t, engine, archiver, reconMocks.NewMockVerifier(ctrl), 16)

	request := httptest.NewRequest(http.MethodPost, "/webhooks/payments/tenant-1", strings.NewReader(approvedBody))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
}

func TestHandler_ReceivePayment_Signature(t *testing.T) {
	forged := `{"type":"payment","action":"payment.updated","authenticated":true,` +
		`"data":{"id":"12345","status":"approved","external_reference":"b1","transaction_amount":1}}`

	tests := []struct {
		name              string
		signature         string
		verifyErr         error
		wantCode          int
		wantReconcile     bool
		wantAuthenticated bool
	}{
		{
			name:              "valid signature",
			signature:         "sha256=abcd",
			wantCode:          http.StatusOK,
			wantReconcile:     true,
			wantAuthenticated: true,
		},
		{
			name:      "invalid signature",
			signature: "sha256=abcd",
			verifyErr: signature.ErrInvalidSignature,
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:          "unsigned body cannot mark itself authenticated",
			wantCode:      http.StatusOK,
			wantReconcile: true,
		},
		{
			name:          "signature unverifiable",
			signature:     "sha256=abcd",
			verifyErr:     signature.ErrNoSecret,
			wantCode:      http.StatusOK,
			wantReconcile: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := reconMocks.NewMockEngine(ctrl)
			archiver := reconMocks.NewMockArchiver(ctrl)
			verifier := reconMocks.NewMockVerifier(ctrl)
			router := newServer(t, engine, archiver, verifier, 0)

			archived := expectArchive(archiver, "tenant-1")

			if tt.signature != "" {
				verifier.EXPECT().Verify(gomock.Any(), "tenant-1", []byte(forged), tt.signature).Return(tt.verifyErr)
			}

			if tt.wantReconcile {
				engine.EXPECT().Reconcile(gomock.Any(), "tenant-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, envelope dto.Envelope) dto.Result {
						assert.Equal(t, tt.wantAuthenticated, envelope.Authenticated)

						return dto.Result{Processed: true, BookingID: "b1"}
					})
			}

			request := httptest.NewRequest(http.MethodPost, "/webhooks/payments/tenant-1", strings.NewReader(forged))
			if tt.signature != "" {
				request.Header.Set(constant.RequestHeaderSignature, tt.signature)
			}

			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)
			waitArchived(t, archived)
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, webhook.StatusCode(dto.Result{Processed: true, Kind: dto.KindConflict}))
	assert.Equal(t, http.StatusServiceUnavailable, webhook.StatusCode(dto.Result{}))
}
