package contractor

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var rowColumns = []string{"id", "full_name", "email", "phone", "specialties", "latitude", "longitude", "is_active", "completed_count"}

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func TestRepository_ListActive(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM contractors c WHERE c.is_active = \\$1 ORDER BY c.id").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow(int64(1), "Luc Bernard", "luc@example.com", "+33600000000", "{flooring,painting}", 48.85, 2.35, true, 12).
			AddRow(int64(2), "Anne Petit", "anne@example.com", nil, "{}", nil, nil, true, 0))

	list, err := repo.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"flooring", "painting"}, list[0].Specialties)
	assert.Equal(t, 12, list[0].CompletedBookingsCount)
	require.NotNil(t, list[0].Location)
	assert.InDelta(t, 48.85, list[0].Location.Lat, 1e-9)
	assert.Nil(t, list[1].Location)
	assert.Nil(t, list[1].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM contractors c WHERE c.id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(rowColumns).
				AddRow(int64(1), "Luc Bernard", "luc@example.com", nil, "{plumbing}", nil, nil, true, 3))

		c, err := repo.GetByID(context.Background(), 1)

		require.NoError(t, err)
		assert.True(t, c.HasSpecialty("Plumbing"))
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM contractors").
			WillReturnRows(sqlmock.NewRows(rowColumns))

		_, err := repo.GetByID(context.Background(), 99)

		assert.ErrorIs(t, err, ErrContractorNotFound)
	})
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("INSERT INTO contractors").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	c, err := repo.Create(context.Background(), &domain.Contractor{
		FullName:    "Luc Bernard",
		Email:       "luc@example.com",
		Specialties: []string{"flooring"},
		Location:    &domain.GeoPoint{Lat: 48.85, Lng: 2.35},
		IsActive:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
