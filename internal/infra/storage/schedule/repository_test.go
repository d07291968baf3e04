package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock, *dbmetrics.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock, dbmetrics.Wrap(db, nil)
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows(entryColumns)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, _ := newRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO schedules").
		WithArgs(int64(7), 1, types.TimeString("09:00"), types.TimeString("12:00"), true, sqlmock.AnyArg(), nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	entry, err := repo.Create(context.Background(), &domain.ScheduleEntry{
		ContractorID:  7,
		DayOfWeek:     time.Monday,
		TimeRange:     domain.TimeRange{Start: "09:00", End: "12:00"},
		IsRecurring:   true,
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateExclusionViolation(t *testing.T) {
	repo, mock, _ := newRepo(t)

	mock.ExpectQuery("INSERT INTO schedules").
		WillReturnError(&pq.Error{Code: pgExclusionViolation, Constraint: "schedules_no_overlap"})

	_, err := repo.Create(context.Background(), &domain.ScheduleEntry{
		ContractorID: 7,
		DayOfWeek:    time.Monday,
		TimeRange:    domain.TimeRange{Start: "11:00", End: "13:00"},
		IsActive:     true,
	})

	assert.ErrorIs(t, err, ErrScheduleConflict)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo, mock, _ := newRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnRows(entryRows())

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRepository_ListEffective(t *testing.T) {
	repo, mock, _ := newRepo(t)
	now := time.Now()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE (.+) ORDER BY start_time").
		WillReturnRows(entryRows().
			AddRow(int64(1), int64(7), int64(1), "09:00:00", "12:00:00", true, from, nil, true, now, now).
			AddRow(int64(2), int64(7), int64(1), "14:00:00", "18:00:00", true, from, until, true, now, now))

	entries, err := repo.ListEffective(context.Background(), 7, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, time.Monday, entries[0].DayOfWeek)
	assert.Equal(t, types.TimeString("09:00"), entries[0].TimeRange.Start)
	assert.Nil(t, entries[0].EffectiveUntil)
	require.NotNil(t, entries[1].EffectiveUntil)
	assert.True(t, until.Equal(*entries[1].EffectiveUntil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveByContractorDayLocksInTransaction(t *testing.T) {
	repo, mock, wrapped := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM schedules WHERE (.+) FOR UPDATE").
		WillReturnRows(entryRows())

	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	entries, err := repo.ListActiveByContractorDay(dbmetrics.WithTx(context.Background(), tx), 7, time.Monday)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Deactivate(t *testing.T) {
	repo, mock, _ := newRepo(t)

	mock.ExpectExec("UPDATE schedules SET is_active").
		WithArgs(false, int64(3), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules SET is_active").
		WithArgs(false, int64(4), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Deactivate(context.Background(), 3))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), 4), ErrEntryNotFound)
}
