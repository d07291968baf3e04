package contractor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// completedCountColumn количество завершенных бронирований исполнителя
const completedCountColumn = "(SELECT COUNT(*) FROM bookings b WHERE b.contractor_id = c.id AND b.status = 'completed') AS completed_count"

var contractorColumns = []string{
	"c.id",
	"c.full_name",
	"c.email",
	"c.phone",
	"c.specialties",
	"c.latitude",
	"c.longitude",
	"c.is_active",
	completedCountColumn,
}

// Repository репозиторий исполнителей (только чтение для ядра, Create для сидов)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет исполнителя
func (r *Repository) Create(ctx context.Context, c *domain.Contractor) (*domain.Contractor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var lat, lng *float64
	if c.Location != nil {
		lat, lng = &c.Location.Lat, &c.Location.Lng
	}

	query, args, err := psqlbuilder.Insert("contractors").
		Columns("full_name", "email", "phone", "specialties", "latitude", "longitude", "is_active").
		Values(c.FullName, c.Email, c.Phone, pq.Array(c.Specialties), lat, lng, c.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	return c, nil
}

// GetByID получает исполнителя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Contractor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(contractorColumns...).
		From("contractors c").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanContractor(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContractorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan contractor: %v", ErrScanRow, err)
	}
	return c, nil
}

// ListActive активные исполнители, упорядоченные по ID
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Contractor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(contractorColumns...).
		From("contractors c").
		Where(squirrel.Eq{"c.is_active": true}).
		OrderBy("c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	contractors := make([]*domain.Contractor, 0)
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan contractor: %v", ErrScanRow, err)
		}
		contractors = append(contractors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows iteration: %v", ErrScanRow, err)
	}
	return contractors, nil
}

func scanContractor(row scanner) (*domain.Contractor, error) {
	var (
		c        domain.Contractor
		phone    sql.NullString
		lat, lng sql.NullFloat64
	)

	err := row.Scan(
		&c.ID,
		&c.FullName,
		&c.Email,
		&phone,
		pq.Array(&c.Specialties),
		&lat,
		&lng,
		&c.IsActive,
		&c.CompletedBookingsCount,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		c.Phone = &phone.String
	}
	if lat.Valid && lng.Valid {
		c.Location = &domain.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &c, nil
}
