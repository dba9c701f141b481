package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtpay/config"
	"courtpay/infras/kafka"
	"courtpay/infras/otel"
	"courtpay/internal/domains/notification/model"
	"courtpay/shared/constant"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, notification model.ConflictNotification) error
}

// New publishes to Kafka when brokers are configured and only logs otherwise.
func New(cfg *config.Config, client kafka.Client, otel otel.Otel) Dispatcher {
	if client == nil || len(cfg.Kafka.Brokers) == 0 {
		log.Warn().Msg("no kafka brokers configured, conflict notifications are logged only")

		return NewLogDispatcher()
	}

	return NewKafkaDispatcher(client, cfg.Kafka.NotificationTopic, otel)
}

type kafkaDispatcher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewKafkaDispatcher(client kafka.Client, topic string, otel otel.Otel) Dispatcher {
	return &kafkaDispatcher{
		client: client,
		topic:  topic,
		otel:   otel,
	}
}

func (d *kafkaDispatcher) Dispatch(ctx context.Context, notification model.ConflictNotification) (err error) {
	ctx, scope := d.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".notification.Dispatch")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	logNotification(notification)

	err = d.client.SendMessages(ctx, d.topic, kafka.Message{Key: notification.BookingID, Value: notification})
	if err != nil {
		log.Error().Err(err).Str("booking_id", notification.BookingID).Msg("failed to publish conflict notification")

		return fmt.Errorf("failed to publish conflict notification for booking %s: %w", notification.BookingID, err)
	}

	return nil
}

type logDispatcher struct{}

func NewLogDispatcher() Dispatcher {
	return logDispatcher{}
}

func (logDispatcher) Dispatch(_ context.Context, notification model.ConflictNotification) error {
	logNotification(notification)

	return nil
}

func logNotification(n model.ConflictNotification) {
	level := zerolog.WarnLevel
	if n.Severity == model.SeverityCritical {
		level = zerolog.ErrorLevel
	}

	log.WithLevel(level).
		Str("booking_id", n.BookingID).
		Str("tenant_id", n.TenantID).
		Str("payment_id", n.PaymentID).
		Str("conflicting_booking_id", n.ConflictingBookingID).
		Str("refund_status", n.RefundStatus).
		Str("refund_error", n.RefundError).
		Str("severity", n.Severity).
		Msg("payment conflict")
}
