package di

import (
	"context"
	"courtpay/config"
	"courtpay/infras/kafka"
	"courtpay/infras/otel"
	"courtpay/infras/postgres"
	"courtpay/shared/lock"
	"courtpay/shared/secret"
	"courtpay/shared/timezone"
	"courtpay/transport/http"
	"courtpay/transport/http/router"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
)

// provideNow is the application clock, pinned to the configured timezone.
func provideNow() func() time.Time {
	return timezone.Now
}

func provideLocker(client *goRedis.Client, ot otel.Otel, cfg *config.Config) lock.Locker {
	ttl := time.Duration(cfg.Webhook.LockTTLSeconds) * time.Second
	wait := time.Duration(cfg.Webhook.LockWaitMillis) * time.Millisecond

	return lock.NewRedisLocker(client, ot, ttl, wait)
}

func provideSecretBox(cfg *config.Config) (secret.Box, error) {
	box, err := secret.NewBox(cfg.Payment.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret box: %w", err)
	}

	return box, nil
}

// provideServer registers dependencies that must be released once the server drains.
func provideServer(cfg *config.Config, r router.Router, db *postgres.Connection, client *goRedis.Client, producer kafka.Client, ot otel.Otel) *http.HTTP {
	server := http.New(cfg, r)

	server.OnShutdown(func(context.Context) error {
		return producer.Close() //nolint:wrapcheck
	})
	server.OnShutdown(func(context.Context) error {
		return client.Close() //nolint:wrapcheck
	})
	server.OnShutdown(func(context.Context) error {
		return db.Close()
	})
	server.OnShutdown(ot.Shutdown)

	return server
}
