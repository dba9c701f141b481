package archive_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"courtpay/config"
	s3Mocks "courtpay/infras/s3/mocks"
	"courtpay/internal/domains/reconciliation/archive"
)

func TestArchiver_Archive(t *testing.T) {
	at := time.Date(2024, 6, 15, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		tenantID      string
		wantDirectory string
		uploadErr     error
	}{
		{name: "tenant webhook", tenantID: "t1", wantDirectory: "webhooks/2024-06-15/t1"},
		{name: "global webhook", wantDirectory: "webhooks/2024-06-15/global"},
		{name: "upload failure is swallowed", tenantID: "t1", wantDirectory: "webhooks/2024-06-15/t1", uploadErr: errors.New("access denied")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			storage := s3Mocks.NewMockS3(ctrl)
			body := []byte(`{"type":"payment"}`)

			storage.EXPECT().UploadBytes(gomock.Any(), "audit", tt.wantDirectory, gomock.Any(), "application/json", body).
				DoAndReturn(func(_ context.Context, _, directory, fileName, _ string, _ []byte) (string, error) {
					assert.True(t, strings.HasSuffix(fileName, ".json"))

					return directory + "/" + fileName, tt.uploadErr
				})

			archive.NewWithClock(storage, "audit", func() time.Time { return at }).Archive(context.Background(), tt.tenantID, body)
		})
	}
}

func TestNew_WithoutBucket(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := s3Mocks.NewMockS3(ctrl)

	archive.New(&config.Config{}, storage).Archive(context.Background(), "t1", []byte("{}"))
}
