package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtpay/config"
	"courtpay/infras/kafka"
	kafkaMocks "courtpay/infras/kafka/mocks"
	"courtpay/infras/otel/mocks"
	"courtpay/internal/domains/notification/model"
	"courtpay/internal/domains/notification/service"
)

func notification() model.ConflictNotification {
	return model.ConflictNotification{
		BookingID:            "b1",
		PaymentID:            "pay-1",
		ConflictingBookingID: "b2",
		RefundStatus:         "completed",
		Severity:             model.SeverityWarning,
		OccurredAt:           time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestKafkaDispatcher_Dispatch(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		wantErr bool
	}{
		{name: "published"},
		{name: "broker unavailable", sendErr: errors.New("dial tcp: refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := kafkaMocks.NewMockClient(ctrl)

			client.EXPECT().SendMessages(gomock.Any(), "conflicts", kafka.Message{Key: "b1", Value: notification()}).Return(tt.sendErr)

			err := service.NewKafkaDispatcher(client, "conflicts", mocks.NewOtel()).Dispatch(context.Background(), notification())

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "b1")

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestNew_FallsBackToLog(t *testing.T) {
	dispatcher := service.New(&config.Config{}, nil, mocks.NewOtel())

	require.NoError(t, dispatcher.Dispatch(context.Background(), notification()))
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, model.SeverityWarning, model.SeverityFor(true))
	assert.Equal(t, model.SeverityCritical, model.SeverityFor(false))
}
