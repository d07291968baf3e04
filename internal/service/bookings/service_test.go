package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListByContractorInRange(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, contractorID, from, to)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockRepo) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, completedAt *time.Time) error {
	return m.Called(ctx, id, from, to, completedAt).Error(0)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var now = time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:              42,
		ClientID:        10,
		ContractorID:    ptr.Ptr(int64(7)),
		ScheduledAt:     time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		Timezone:        "Europe/Paris",
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		PaymentStatus:   domain.PaymentCaptured,
	}
}

func newService(repo *mockRepo) *Service {
	return NewService(repo, logger.Nop()).WithTimeProvider(fixedClock{now: now})
}

func TestService_GetByIDAccess(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		wantErr error
	}{
		{name: "client", actor: domain.Actor{UserID: 10, Role: domain.RoleClient}},
		{name: "assigned contractor", actor: domain.Actor{UserID: 7, Role: domain.RoleContractor}},
		{name: "admin", actor: domain.Actor{UserID: 1, Role: domain.RoleAdmin}},
		{name: "stranger", actor: domain.Actor{UserID: 99, Role: domain.RoleClient}, wantErr: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			repo.On("GetByID", mock.Anything, int64(42)).Return(confirmedBooking(), nil)

			resp, err := newService(repo).GetByID(context.Background(), tt.actor, 42)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "10:00", resp.LocalStartTime)
		})
	}
}

func TestService_GetByIDNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(1)).Return(nil, bookingRepo.ErrBookingNotFound)

	_, err := newService(repo).GetByID(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleAdmin}, 1)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_AdvanceStatus(t *testing.T) {
	contractor := domain.Actor{UserID: 7, Role: domain.RoleContractor}

	t.Run("start", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", mock.Anything, int64(42)).Return(confirmedBooking(), nil)
		repo.On("TransitionStatus", mock.Anything, int64(42), domain.StatusConfirmed, domain.StatusInProgress, (*time.Time)(nil)).Return(nil)

		resp, err := newService(repo).AdvanceStatus(context.Background(), contractor, 42, &models.AdvanceStatusRequest{Event: "start"})

		require.NoError(t, err)
		assert.Equal(t, "in_progress", resp.Status)
		repo.AssertExpectations(t)
	})

	t.Run("complete sets completedAt", func(t *testing.T) {
		b := confirmedBooking()
		b.Status = domain.StatusInProgress
		repo := new(mockRepo)
		repo.On("GetByID", mock.Anything, int64(42)).Return(b, nil)
		repo.On("TransitionStatus", mock.Anything, int64(42), domain.StatusInProgress, domain.StatusCompletedByContractor,
			mock.MatchedBy(func(ts *time.Time) bool { return ts != nil && ts.Equal(now) })).Return(nil)

		resp, err := newService(repo).AdvanceStatus(context.Background(), contractor, 42, &models.AdvanceStatusRequest{Event: "complete"})

		require.NoError(t, err)
		require.NotNil(t, resp.CompletedAt)
	})

	t.Run("contractor cannot close", func(t *testing.T) {
		b := confirmedBooking()
		b.Status = domain.StatusCompletedByContractor
		repo := new(mockRepo)
		repo.On("GetByID", mock.Anything, int64(42)).Return(b, nil)

		_, err := newService(repo).AdvanceStatus(context.Background(), contractor, 42, &models.AdvanceStatusRequest{Event: "close"})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("illegal transition", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", mock.Anything, int64(42)).Return(confirmedBooking(), nil)

		_, err := newService(repo).AdvanceStatus(context.Background(), contractor, 42, &models.AdvanceStatusRequest{Event: "complete"})

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("lost race", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", mock.Anything, int64(42)).Return(confirmedBooking(), nil)
		repo.On("TransitionStatus", mock.Anything, int64(42), domain.StatusConfirmed, domain.StatusInProgress, (*time.Time)(nil)).
			Return(bookingRepo.ErrStatusMismatch)

		_, err := newService(repo).AdvanceStatus(context.Background(), contractor, 42, &models.AdvanceStatusRequest{Event: "start"})

		assert.ErrorIs(t, err, ErrStatusChanged)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := newService(new(mockRepo)).AdvanceStatus(context.Background(), contractor, 42, &models.AdvanceStatusRequest{Event: "teleport"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_GetWeeklyPlanning(t *testing.T) {
	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	repo := new(mockRepo)
	repo.On("ListByContractorInRange", mock.Anything, int64(7), weekStart, weekStart.AddDate(0, 0, 7)).
		Return([]*domain.Booking{confirmedBooking()}, nil)

	resp, err := newService(repo).GetWeeklyPlanning(context.Background(), domain.Actor{UserID: 7, Role: domain.RoleContractor}, 7, weekStart)

	require.NoError(t, err)
	assert.Equal(t, "2025-06-08", resp.WeekEnd)
	assert.Len(t, resp.Bookings, 1)

	_, err = newService(repo).GetWeeklyPlanning(context.Background(), domain.Actor{UserID: 8, Role: domain.RoleContractor}, 7, weekStart)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
