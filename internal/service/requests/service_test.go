package requests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type mockRequests struct {
	mock.Mock
}

func (m *mockRequests) ListPendingByContractor(ctx context.Context, contractorID int64, now time.Time) ([]*domain.BookingRequest, error) {
	args := m.Called(ctx, contractorID, now)
	return args.Get(0).([]*domain.BookingRequest), args.Error(1)
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestService_GetPending(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	requests := new(mockRequests)
	bookings := new(mockBookings)

	requests.On("ListPendingByContractor", mock.Anything, int64(7), now).Return([]*domain.BookingRequest{
		{ID: 1, BookingID: 42, ContractorID: 7, Status: domain.RequestPending, ExpiresAt: now.Add(time.Hour)},
		{ID: 2, BookingID: 43, ContractorID: 7, Status: domain.RequestPending, ExpiresAt: now.Add(2 * time.Hour)},
	}, nil)
	bookings.On("GetByID", mock.Anything, int64(42)).Return(&domain.Booking{ID: 42, Timezone: "UTC",
		ScheduledAt: now.Add(48 * time.Hour), Snapshot: domain.BookingSnapshot{ServiceName: "Peinture"}}, nil)
	bookings.On("GetByID", mock.Anything, int64(43)).Return(&domain.Booking{ID: 43, Timezone: "UTC",
		ScheduledAt: now.Add(72 * time.Hour), Snapshot: domain.BookingSnapshot{ServiceName: "Plomberie"}}, nil)

	svc := NewService(requests, bookings, logger.Nop()).WithTimeProvider(fixedClock{now: now})
	resp, err := svc.GetPending(context.Background(), domain.Actor{UserID: 7, Role: domain.RoleContractor}, 7)

	require.NoError(t, err)
	require.Len(t, resp.Requests, 2)
	assert.Equal(t, int64(1), resp.Requests[0].ID)
	assert.Equal(t, "Peinture", resp.Requests[0].ServiceName)
	assert.Equal(t, "09:00", resp.Requests[1].LocalStartTime)
}

func TestService_GetPendingDenied(t *testing.T) {
	svc := NewService(new(mockRequests), new(mockBookings), logger.Nop())

	_, err := svc.GetPending(context.Background(), domain.Actor{UserID: 10, Role: domain.RoleClient}, 7)

	assert.ErrorIs(t, err, ErrAccessDenied)
}
