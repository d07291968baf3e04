package bookingrequest

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

var requestedAt = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func requestRow(id int64, status domain.RequestStatus) []driver.Value {
	return []driver.Value{
		id, int64(42), int64(7), string(status),
		requestedAt, requestedAt.Add(24 * time.Hour),
		nil, nil, nil, requestedAt, requestedAt,
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)

	req, err := domain.NewBookingRequest(42, 7, requestedAt, 24*time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO booking_requests").
		WithArgs(int64(42), int64(7), "pending", requestedAt, requestedAt.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), requestedAt, requestedAt))

	created, err := repo.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateDuplicatePending(t *testing.T) {
	repo, mock := newRepo(t)

	req, err := domain.NewBookingRequest(42, 7, requestedAt, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO booking_requests").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = repo.Create(context.Background(), req)

	assert.ErrorIs(t, err, ErrDuplicatePending)
}

func TestRepository_ListPendingByContractor(t *testing.T) {
	repo, mock := newRepo(t)
	now := requestedAt.Add(time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM booking_requests WHERE (.+) expires_at > \\$3 ORDER BY expires_at").
		WithArgs(int64(7), "pending", now).
		WillReturnRows(sqlmock.NewRows(requestColumns).
			AddRow(requestRow(1, domain.RequestPending)...).
			AddRow(requestRow(2, domain.RequestPending)...))

	list, err := repo.ListPendingByContractor(context.Background(), 7, now)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.RequestPending, list[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindExpiredPending(t *testing.T) {
	repo, mock := newRepo(t)
	now := requestedAt.Add(25 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM booking_requests WHERE status = \\$1 AND expires_at <= \\$2 ORDER BY expires_at LIMIT 50").
		WithArgs("pending", now).
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(requestRow(1, domain.RequestPending)...))

	list, err := repo.FindExpiredPending(context.Background(), now, 50)

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Transition(t *testing.T) {
	now := requestedAt.Add(time.Hour)

	t.Run("accept applied", func(t *testing.T) {
		repo, mock := newRepo(t)

		row := requestRow(1, domain.RequestAccepted)
		row[6] = now
		mock.ExpectQuery("UPDATE booking_requests SET (.+) WHERE id = \\$6 AND status = \\$7 AND expires_at > \\$8 RETURNING").
			WithArgs("accepted", sqlmock.AnyArg(), sqlmock.AnyArg(), now, now, int64(1), "pending", now).
			WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(row...))

		req, err := repo.Transition(context.Background(), TransitionParams{ID: 1, To: domain.RequestAccepted, Now: now})

		require.NoError(t, err)
		assert.Equal(t, domain.RequestAccepted, req.Status)
		require.NotNil(t, req.RespondedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("UPDATE booking_requests").
			WillReturnRows(sqlmock.NewRows(requestColumns))
		mock.ExpectQuery("SELECT (.+) FROM booking_requests WHERE id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(requestRow(1, domain.RequestRefused)...))

		current, err := repo.Transition(context.Background(), TransitionParams{ID: 1, To: domain.RequestAccepted, Now: now})

		assert.ErrorIs(t, err, ErrStatusMismatch)
		require.NotNil(t, current)
		assert.Equal(t, domain.RequestRefused, current.Status)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("UPDATE booking_requests").
			WillReturnRows(sqlmock.NewRows(requestColumns))
		mock.ExpectQuery("SELECT (.+) FROM booking_requests").
			WillReturnRows(sqlmock.NewRows(requestColumns))

		_, err := repo.Transition(context.Background(), TransitionParams{ID: 9, To: domain.RequestRefused, Now: now})

		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("pending is not a target", func(t *testing.T) {
		repo, _ := newRepo(t)

		_, err := repo.Transition(context.Background(), TransitionParams{ID: 1, To: domain.RequestPending, Now: now})

		assert.ErrorIs(t, err, ErrStatusMismatch)
	})
}

func TestRepository_ExpireSiblings(t *testing.T) {
	repo, mock := newRepo(t)
	now := requestedAt.Add(time.Hour)

	mock.ExpectExec("UPDATE booking_requests SET (.+) WHERE booking_id = \\$4 AND status = \\$5 AND id <> \\$6").
		WithArgs("expired", domain.ReasonSuperseded, now, int64(42), "pending", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.ExpireSiblings(context.Background(), 42, 1, now, domain.ReasonSuperseded)

	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountPendingByBooking(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM booking_requests").
		WithArgs(int64(42), "pending", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountPendingByBooking(context.Background(), 42, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, count)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("boom"))
	_, err = repo.CountPendingByBooking(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrScanRow)
}
