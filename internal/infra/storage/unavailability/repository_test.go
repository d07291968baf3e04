package unavailability

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO unavailabilities").
		WithArgs(int64(7), start, start.Add(time.Hour), "lunch_break", nil, true, "daily", nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	period, err := repo.Create(context.Background(), &domain.UnavailabilityPeriod{
		ContractorID:      7,
		StartDatetime:     start,
		EndDatetime:       start.Add(time.Hour),
		ReasonType:        domain.ReasonLunchBreak,
		IsRecurring:       true,
		RecurrencePattern: ptr.Ptr(domain.RecurrenceDaily),
		IsActive:          true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), period.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveInRange(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM unavailabilities WHERE (.+) ORDER BY start_datetime").
		WillReturnRows(sqlmock.NewRows(periodColumns).
			AddRow(int64(1), int64(7), start, start.Add(time.Hour), "lunch_break", nil, true, "daily", nil, true, now, now).
			AddRow(int64(2), int64(7), start, start.Add(72*time.Hour), "vacation", "Biarritz", false, nil, nil, true, now, now))

	periods, err := repo.ListActiveInRange(context.Background(), 7, start, start.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, periods, 2)
	require.NotNil(t, periods[0].RecurrencePattern)
	assert.Equal(t, domain.RecurrenceDaily, *periods[0].RecurrencePattern)
	assert.Nil(t, periods[1].RecurrencePattern)
	require.NotNil(t, periods[1].Reason)
	assert.Equal(t, "Biarritz", *periods[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM unavailabilities").
		WillReturnRows(sqlmock.NewRows(periodColumns))

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestRepository_Deactivate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("UPDATE unavailabilities SET is_active").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Deactivate(context.Background(), 1), ErrPeriodNotFound)
}
