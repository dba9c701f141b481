package archive

//go:generate go run go.uber.org/mock/mockgen -source=./archive.go -destination=../mocks/archive_mock.go -package=mocks

import (
	"context"
	"courtpay/config"
	"courtpay/infras/s3"
	"courtpay/shared/constant"
	"courtpay/shared/timezone"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	rootDirectory = "webhooks"
	globalTenant  = "global"
)

// Archiver keeps raw webhook bodies for ledger audits. Archiving is best effort.
type Archiver interface {
	Archive(ctx context.Context, tenantID string, body []byte)
}

type s3Archiver struct {
	storage s3.S3
	bucket  string
	now     func() time.Time
}

// New returns a no-op archiver when no bucket is configured.
func New(cfg *config.Config, storage s3.S3) Archiver {
	if cfg.External.S3.WebhookBucket == "" {
		return noop{}
	}

	return NewWithClock(storage, cfg.External.S3.WebhookBucket, timezone.Now)
}

func NewWithClock(storage s3.S3, bucket string, now func() time.Time) Archiver {
	return &s3Archiver{
		storage: storage,
		bucket:  bucket,
		now:     now,
	}
}

// Archive writes webhooks/<date>/<tenant>/<uuid>.json.
func (a *s3Archiver) Archive(ctx context.Context, tenantID string, body []byte) {
	if tenantID == "" {
		tenantID = globalTenant
	}

	directory := path.Join(rootDirectory, timezone.Date(a.now()), tenantID)

	key, err := a.storage.UploadBytes(ctx, a.bucket, directory, uuid.NewString()+".json", constant.ContentTypeJSON, body)
	if err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID).Msg("failed to archive webhook body")

		return
	}

	log.Debug().Str("object_key", key).Msg("webhook body archived")
}

type noop struct{}

func (noop) Archive(context.Context, string, []byte) {}
