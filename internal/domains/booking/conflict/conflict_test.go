package conflict_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtpay/infras/otel/mocks"
	"courtpay/internal/domains/booking/conflict"
	bookingMocks "courtpay/internal/domains/booking/mocks"
	"courtpay/internal/domains/booking/model"
)

var (
	day = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	now = time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
)

func at(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{name: "identical", s1: at(10, 0), e1: at(11, 30), s2: at(10, 0), e2: at(11, 30), want: true},
		{name: "partial overlap at start", s1: at(10, 0), e1: at(11, 30), s2: at(9, 30), e2: at(11, 0), want: true},
		{name: "contained", s1: at(10, 0), e1: at(12, 0), s2: at(10, 30), e2: at(11, 0), want: true},
		{name: "touching end to start", s1: at(10, 0), e1: at(11, 0), s2: at(11, 0), e2: at(12, 0), want: false},
		{name: "touching start to end", s1: at(11, 0), e1: at(12, 0), s2: at(10, 0), e2: at(11, 0), want: false},
		{name: "disjoint", s1: at(8, 0), e1: at(9, 0), s2: at(10, 0), e2: at(11, 0), want: false},
		{
			name: "full timestamps compare by time of day",
			s1:   day.Add(10 * time.Hour), e1: day.Add(11 * time.Hour),
			s2: at(10, 30), e2: at(12, 0),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conflict.Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, conflict.Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestDetector_FindConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	detector := conflict.New(mockRepo, mocks.NewOtel(), func() time.Time { return now })

	target := model.Booking{
		ID: "b1", TenantID: "t1", CourtID: "c1", BookingDate: day,
		StartTime: at(10, 0), EndTime: at(11, 30), Status: model.StatusCancelled,
	}
	expired := now.Add(-time.Minute)

	tests := []struct {
		name       string
		candidates []model.Booking
		repoErr    error
		wantID     string
		wantFound  bool
		wantErr    bool
	}{
		{
			name: "overlapping confirmed booking",
			candidates: []model.Booking{
				{ID: "b3", Status: model.StatusConfirmed, StartTime: at(8, 0), EndTime: at(9, 0)},
				{ID: "b2", Status: model.StatusConfirmed, StartTime: at(9, 30), EndTime: at(11, 0)},
			},
			wantID:    "b2",
			wantFound: true,
		},
		{
			name: "adjacent booking is not a conflict",
			candidates: []model.Booking{
				{ID: "b2", Status: model.StatusConfirmed, StartTime: at(11, 30), EndTime: at(12, 30)},
			},
		},
		{
			name: "expired hold is ignored",
			candidates: []model.Booking{
				{ID: "b2", Status: model.StatusPending, StartTime: at(10, 0), EndTime: at(11, 0), ExpiresAt: &expired},
			},
		},
		{
			name:    "storage error",
			repoErr: errors.New("connection reset"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.EXPECT().
				GetLiveOnSlotTx(gomock.Any(), gomock.Any(), target.Slot(), "b1", now).
				Return(tt.candidates, tt.repoErr)

			got, found, err := detector.FindConflict(context.Background(), nil, target)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestDetector_HasConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	detector := conflict.New(mockRepo, mocks.NewOtel(), func() time.Time { return now })

	target := model.Booking{ID: "b1", TenantID: "t1", CourtID: "c1", BookingDate: day, StartTime: at(10, 0), EndTime: at(11, 30)}

	mockRepo.EXPECT().
		GetLiveOnSlotTx(gomock.Any(), gomock.Any(), target.Slot(), "other", now).
		Return([]model.Booking{{ID: "b1", Status: model.StatusPending, StartTime: at(10, 0), EndTime: at(11, 30)}}, nil)

	found, err := detector.HasConflict(context.Background(), nil, target, "other")

	require.NoError(t, err)
	assert.True(t, found)
}
