package unavailability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

var periodColumns = []string{
	"id",
	"contractor_id",
	"start_datetime",
	"end_datetime",
	"reason_type",
	"reason",
	"is_recurring",
	"recurrence_pattern",
	"recurrence_end_date",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий периодов недоступности
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет период недоступности
func (r *Repository) Create(ctx context.Context, period *domain.UnavailabilityPeriod) (*domain.UnavailabilityPeriod, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var pattern *string
	if period.RecurrencePattern != nil {
		p := string(*period.RecurrencePattern)
		pattern = &p
	}

	query, args, err := psqlbuilder.Insert("unavailabilities").
		Columns(
			"contractor_id",
			"start_datetime",
			"end_datetime",
			"reason_type",
			"reason",
			"is_recurring",
			"recurrence_pattern",
			"recurrence_end_date",
			"is_active",
		).
		Values(
			period.ContractorID,
			period.StartDatetime,
			period.EndDatetime,
			string(period.ReasonType),
			period.Reason,
			period.IsRecurring,
			pattern,
			period.RecurrenceEndDate,
			period.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&period.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	period.CreatedAt = createdAt.Time
	period.UpdatedAt = updatedAt.Time
	return period, nil
}

// GetByID получает период по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.UnavailabilityPeriod, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(periodColumns...).
		From("unavailabilities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	period, err := scanPeriod(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPeriodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan period: %v", ErrScanRow, err)
	}
	return period, nil
}

// ListActiveInRange активные периоды исполнителя, которые могут пересекаться с [from, to):
// разовые периоды, пересекающие окно, и повторяющиеся, начавшиеся до to и не закончившиеся до from.
// Развертывание повторов выполняется в domain.UnavailabilityPeriod.Occurrences.
func (r *Repository) ListActiveInRange(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.UnavailabilityPeriod, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(periodColumns...).
		From("unavailabilities").
		Where(squirrel.Eq{"contractor_id": contractorID, "is_active": true}).
		Where(squirrel.Lt{"start_datetime": to}).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"is_recurring": false},
				squirrel.Gt{"end_datetime": from},
			},
			squirrel.And{
				squirrel.Eq{"is_recurring": true},
				squirrel.Or{
					squirrel.Eq{"recurrence_end_date": nil},
					squirrel.GtOrEq{"recurrence_end_date": domain.DateOnly(from)},
				},
			},
		}).
		OrderBy("start_datetime").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	periods := make([]*domain.UnavailabilityPeriod, 0)
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveInRange - scan period: %v", ErrScanRow, err)
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - rows iteration: %v", ErrScanRow, err)
	}

	return periods, nil
}

// Deactivate мягко удаляет период
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("unavailabilities").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func scanPeriod(row scanner) (*domain.UnavailabilityPeriod, error) {
	var (
		period               domain.UnavailabilityPeriod
		reasonType           string
		reason, pattern      sql.NullString
		recurrenceEnd        sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&period.ID,
		&period.ContractorID,
		&period.StartDatetime,
		&period.EndDatetime,
		&reasonType,
		&reason,
		&period.IsRecurring,
		&pattern,
		&recurrenceEnd,
		&period.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	period.StartDatetime = period.StartDatetime.UTC()
	period.EndDatetime = period.EndDatetime.UTC()
	period.ReasonType = domain.ReasonType(reasonType)
	if reason.Valid {
		period.Reason = &reason.String
	}
	if pattern.Valid {
		p := domain.RecurrencePattern(pattern.String)
		period.RecurrencePattern = &p
	}
	if recurrenceEnd.Valid {
		end := recurrenceEnd.Time
		period.RecurrenceEndDate = &end
	}
	period.CreatedAt = createdAt.Time
	period.UpdatedAt = updatedAt.Time
	return &period, nil
}
