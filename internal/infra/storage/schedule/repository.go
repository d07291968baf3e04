package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// pgExclusionViolation код ошибки PostgreSQL exclusion_violation
const pgExclusionViolation = "23P01"

var entryColumns = []string{
	"id",
	"contractor_id",
	"day_of_week",
	"start_time",
	"end_time",
	"is_recurring",
	"effective_from",
	"effective_until",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий недельного расписания исполнителей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись расписания.
// Пересечение с активной записью отклоняется ограничением schedules_no_overlap (ErrScheduleConflict).
func (r *Repository) Create(ctx context.Context, entry *domain.ScheduleEntry) (*domain.ScheduleEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedules").
		Columns(
			"contractor_id",
			"day_of_week",
			"start_time",
			"end_time",
			"is_recurring",
			"effective_from",
			"effective_until",
			"is_active",
		).
		Values(
			entry.ContractorID,
			int(entry.DayOfWeek),
			entry.TimeRange.Start,
			entry.TimeRange.End,
			entry.IsRecurring,
			entry.EffectiveFrom,
			entry.EffectiveUntil,
			entry.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &createdAt, &updatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: Create - contractor=%d day=%d", ErrScheduleConflict, entry.ContractorID, entry.DayOfWeek)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time
	return entry, nil
}

// GetByID получает запись расписания по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ScheduleEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(entryColumns...).
		From("schedules").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := scanEntry(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan entry: %v", ErrScanRow, err)
	}
	return entry, nil
}

// ListActiveByContractorDay активные записи исполнителя на день недели.
// Внутри транзакции строки блокируются (FOR UPDATE), чтобы проверка пересечений и вставка были атомарны.
func (r *Repository) ListActiveByContractorDay(ctx context.Context, contractorID int64, day time.Weekday) ([]*domain.ScheduleEntry, error) {
	builder := psqlbuilder.Select(entryColumns...).
		From("schedules").
		Where(squirrel.Eq{
			"contractor_id": contractorID,
			"day_of_week":   int(day),
			"is_active":     true,
		}).
		OrderBy("start_time")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	return r.list(ctx, "ListActiveByContractorDay", builder)
}

// ListByContractor все активные записи исполнителя
func (r *Repository) ListByContractor(ctx context.Context, contractorID int64) ([]*domain.ScheduleEntry, error) {
	builder := psqlbuilder.Select(entryColumns...).
		From("schedules").
		Where(squirrel.Eq{"contractor_id": contractorID, "is_active": true}).
		OrderBy("day_of_week", "start_time")

	return r.list(ctx, "ListByContractor", builder)
}

// ListEffective активные записи исполнителя на день недели даты date,
// у которых effective_from <= date и (effective_until IS NULL OR effective_until >= date)
func (r *Repository) ListEffective(ctx context.Context, contractorID int64, date time.Time) ([]*domain.ScheduleEntry, error) {
	day := domain.DateOnly(date)

	builder := psqlbuilder.Select(entryColumns...).
		From("schedules").
		Where(squirrel.Eq{
			"contractor_id": contractorID,
			"day_of_week":   int(day.Weekday()),
			"is_active":     true,
		}).
		Where(squirrel.LtOrEq{"effective_from": day}).
		Where(squirrel.Or{
			squirrel.Eq{"effective_until": nil},
			squirrel.GtOrEq{"effective_until": day},
		}).
		OrderBy("start_time")

	return r.list(ctx, "ListEffective", builder)
}

// Update обновляет интервал и период действия записи
func (r *Repository) Update(ctx context.Context, entry *domain.ScheduleEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedules").
		Set("start_time", entry.TimeRange.Start).
		Set("end_time", entry.TimeRange.End).
		Set("is_recurring", entry.IsRecurring).
		Set("effective_from", entry.EffectiveFrom).
		Set("effective_until", entry.EffectiveUntil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entry.ID, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isExclusionViolation(err) {
			return fmt.Errorf("%w: Update - entry id=%d", ErrScheduleConflict, entry.ID)
		}
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Deactivate мягко удаляет запись расписания
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedules").
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
		return ErrEntryNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.ScheduleEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute select: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	entries := make([]*domain.ScheduleEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan entry: %v", ErrScanRow, op, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	return entries, nil
}

func scanEntry(row scanner) (*domain.ScheduleEntry, error) {
	var (
		entry                domain.ScheduleEntry
		day                  int
		effectiveUntil       sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&entry.ID,
		&entry.ContractorID,
		&day,
		&entry.TimeRange.Start,
		&entry.TimeRange.End,
		&entry.IsRecurring,
		&entry.EffectiveFrom,
		&effectiveUntil,
		&entry.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.DayOfWeek = time.Weekday(day)
	if effectiveUntil.Valid {
		until := effectiveUntil.Time
		entry.EffectiveUntil = &until
	}
	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time
	return &entry, nil
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgExclusionViolation
}
