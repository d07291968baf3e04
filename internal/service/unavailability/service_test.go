package unavailability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	unavailabilityRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/unavailability"
	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, period *domain.UnavailabilityPeriod) (*domain.UnavailabilityPeriod, error) {
	args := m.Called(ctx, period)
	if p, ok := args.Get(0).(*domain.UnavailabilityPeriod); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.UnavailabilityPeriod, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.UnavailabilityPeriod); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListActiveInRange(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.UnavailabilityPeriod, error) {
	args := m.Called(ctx, contractorID, from, to)
	return args.Get(0).([]*domain.UnavailabilityPeriod), args.Error(1)
}

func (m *mockRepo) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var owner = domain.Actor{UserID: 7, Role: domain.RoleContractor}

func TestService_Create(t *testing.T) {
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	t.Run("one-off period drops recurrence fields", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.UnavailabilityPeriod) bool {
			return p.RecurrencePattern == nil && p.RecurrenceEndDate == nil && p.IsActive
		})).Return(&domain.UnavailabilityPeriod{ID: 3, ContractorID: 7, ReasonType: domain.ReasonPersonal, IsActive: true}, nil)

		resp, err := NewService(repo, logger.Nop()).Create(context.Background(), owner, &models.CreateRequest{
			ContractorID:      7,
			StartDatetime:     start,
			EndDatetime:       start.Add(time.Hour),
			ReasonType:        "personal",
			RecurrencePattern: ptr.Ptr("weekly"),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.ID)
		repo.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			req  models.CreateRequest
		}{
			{name: "end before start", req: models.CreateRequest{ContractorID: 7, StartDatetime: start, EndDatetime: start, ReasonType: "vacation"}},
			{name: "unknown reason", req: models.CreateRequest{ContractorID: 7, StartDatetime: start, EndDatetime: start.Add(time.Hour), ReasonType: "party"}},
			{name: "recurring without pattern", req: models.CreateRequest{ContractorID: 7, StartDatetime: start, EndDatetime: start.Add(time.Hour), ReasonType: "vacation", IsRecurring: true}},
			{name: "recurring with bad pattern", req: models.CreateRequest{ContractorID: 7, StartDatetime: start, EndDatetime: start.Add(time.Hour), ReasonType: "vacation", IsRecurring: true, RecurrencePattern: ptr.Ptr("yearly")}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewService(new(mockRepo), logger.Nop()).Create(context.Background(), owner, &tt.req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("client is denied", func(t *testing.T) {
		_, err := NewService(new(mockRepo), logger.Nop()).Create(context.Background(), domain.Actor{UserID: 7, Role: domain.RoleClient},
			&models.CreateRequest{ContractorID: 7, StartDatetime: start, EndDatetime: start.Add(time.Hour), ReasonType: "vacation"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_ListActiveExpandsRecurrence(t *testing.T) {
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)
	weekly := domain.RecurrenceWeekly

	repo := new(mockRepo)
	repo.On("ListActiveInRange", mock.Anything, int64(7), from, to).Return([]*domain.UnavailabilityPeriod{
		{
			ID:                1,
			ContractorID:      7,
			StartDatetime:     time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC),
			EndDatetime:       time.Date(2025, 5, 5, 13, 0, 0, 0, time.UTC),
			ReasonType:        domain.ReasonPersonal,
			IsRecurring:       true,
			RecurrencePattern: &weekly,
			IsActive:          true,
		},
		{
			ID:            2,
			ContractorID:  7,
			StartDatetime: time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC),
			EndDatetime:   time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC),
			ReasonType:    domain.ReasonSick,
			IsActive:      true,
		},
	}, nil)

	resp, err := NewService(repo, logger.Nop()).ListActive(context.Background(), owner, 7, from, to)

	require.NoError(t, err)
	require.Len(t, resp.Occurrences, 3)
	assert.Equal(t, int64(1), resp.Occurrences[0].PeriodID)
	assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), resp.Occurrences[0].Start)
	assert.Equal(t, int64(2), resp.Occurrences[1].PeriodID)
	assert.Equal(t, time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC), resp.Occurrences[2].Start)
}

func TestService_Deactivate(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(9)).Return(nil, unavailabilityRepo.ErrPeriodNotFound)

	err := NewService(repo, logger.Nop()).Deactivate(context.Background(), owner, 9)

	assert.ErrorIs(t, err, ErrPeriodNotFound)
}
