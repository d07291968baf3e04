package booking

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

var bookingColumns = []string{
	"id",
	"client_id",
	"contractor_id",
	"service_id",
	"scheduled_at",
	"timezone",
	"duration_minutes",
	"status",
	"payment_status",
	"service_amount",
	"currency",
	"payment_intent_id",
	"payment_reconciliation_required",
	"client_name",
	"client_email",
	"client_phone",
	"contractor_name",
	"service_name",
	"service_category",
	"address",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"completed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"client_id",
			"contractor_id",
			"service_id",
			"scheduled_at",
			"timezone",
			"duration_minutes",
			"status",
			"payment_status",
			"service_amount",
			"currency",
			"payment_intent_id",
			"client_name",
			"client_email",
			"client_phone",
			"service_name",
			"service_category",
			"address",
			"notes",
		).
		Values(
			booking.ClientID,
			booking.ContractorID,
			booking.ServiceID,
			booking.ScheduledAt.UTC(),
			booking.Timezone,
			booking.DurationMinutes,
			string(booking.Status),
			string(booking.PaymentStatus),
			booking.ServiceAmount,
			booking.Currency,
			booking.PaymentIntentID,
			booking.Snapshot.ClientName,
			booking.Snapshot.ClientEmail,
			booking.Snapshot.ClientPhone,
			booking.Snapshot.ServiceName,
			booking.Snapshot.ServiceCategory,
			booking.Snapshot.Address,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time
	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, "GetByID", id, false)
}

// LockByID получает бронирование по ID с блокировкой строки (SELECT ... FOR UPDATE).
// Вызывается только внутри транзакции: сериализует переходы запросов одного бронирования.
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, "LockByID", id, true)
}

func (r *Repository) getByID(ctx context.Context, op string, id int64, lock bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})
	if lock && dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
	}
	return booking, nil
}

// ListOccupying бронирования, занимающие календарь исполнителя и пересекающие [from, to):
// назначенные исполнителю и ожидающие его ответа (есть pending запрос), кроме отмененных.
func (r *Repository) ListOccupying(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.Booking, error) {
	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		Where(squirrel.Lt{"scheduled_at": to.UTC()}).
		Where(squirrel.Expr("scheduled_at + duration_minutes * INTERVAL '1 minute' > ?", from.UTC())).
		Where(squirrel.Or{
			squirrel.Eq{"contractor_id": contractorID},
			squirrel.Expr(
				"id IN (SELECT booking_id FROM booking_requests WHERE contractor_id = ? AND status = ?)",
				contractorID, string(domain.RequestPending),
			),
		}).
		OrderBy("scheduled_at")

	return r.list(ctx, "ListOccupying", builder)
}

// ListByContractorInRange назначенные исполнителю неотмененные бронирования с началом в [from, to)
func (r *Repository) ListByContractorInRange(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.Booking, error) {
	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"contractor_id": contractorID}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		Where(squirrel.GtOrEq{"scheduled_at": from.UTC()}).
		Where(squirrel.Lt{"scheduled_at": to.UTC()}).
		OrderBy("scheduled_at")

	return r.list(ctx, "ListByContractorInRange", builder)
}

// ListDueReminders подтвержденные бронирования с началом в (from, to], по которым напоминание еще не отправлено
func (r *Repository) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*domain.Booking, error) {
	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed), "reminder_sent_at": nil}).
		Where(squirrel.Gt{"scheduled_at": from.UTC()}).
		Where(squirrel.LtOrEq{"scheduled_at": to.UTC()}).
		OrderBy("scheduled_at").
		Limit(uint64(limit))

	return r.list(ctx, "ListDueReminders", builder)
}

// MarkReminderSent атомарно занимает отправку напоминания.
// false, если напоминание уже отмечено другим процессом или бронирование больше не подтверждено.
func (r *Repository) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("reminder_sent_at", sentAt.UTC()).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusConfirmed), "reminder_sent_at": nil}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - execute update: %v", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - get rows affected: %v", ErrExecQuery, err)
	}
	return rowsAffected > 0, nil
}

// Confirm назначает исполнителя и подтверждает оплаченное бронирование.
// Применяется только к бронированию в статусе pending, иначе ErrStatusMismatch.
func (r *Repository) Confirm(ctx context.Context, id, contractorID int64, contractorName string) error {
	query, args, err := psqlbuilder.Update("bookings").
		Set("status", string(domain.StatusConfirmed)).
		Set("payment_status", string(domain.PaymentCaptured)).
		Set("contractor_id", contractorID).
		Set("contractor_name", contractorName).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Confirm - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, "Confirm", id, query, args)
}

// Cancel отменяет бронирование в статусе from
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, cancelledAt time.Time) error {
	query, args, err := psqlbuilder.Update("bookings").
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt.UTC()).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, "Cancel", id, query, args)
}

// TransitionStatus условно переводит бронирование из from в to.
// completedAt записывается, если передан.
func (r *Repository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, completedAt *time.Time) error {
	builder := psqlbuilder.Update("bookings").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)})
	if completedAt != nil {
		builder = builder.Set("completed_at", completedAt.UTC())
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: TransitionStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, "TransitionStatus", id, query, args)
}

// UpdatePaymentStatus обновляет статус платежа и флаг ручной сверки
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, reconciliationRequired bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", string(status)).
		Set("payment_reconciliation_required", reconciliationRequired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - execute update: %v", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// execConditional выполняет условное обновление.
// Если строка не обновилась, отличает отсутствие бронирования от несовпадения статуса.
func (r *Repository) execConditional(ctx context.Context, op string, id int64, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s - booking id=%d", ErrStatusMismatch, op, id)
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.Booking, error) {
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

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		b                     domain.Booking
		contractorID          sql.NullInt64
		status, paymentStatus string
		paymentIntentID       sql.NullString
		clientPhone           sql.NullString
		contractorName        sql.NullString
		address, notes        sql.NullString
		cancellationReason    sql.NullString
		cancelledAt           sql.NullTime
		completedAt           sql.NullTime
		createdAt, updatedAt  sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.ClientID,
		&contractorID,
		&b.ServiceID,
		&b.ScheduledAt,
		&b.Timezone,
		&b.DurationMinutes,
		&status,
		&paymentStatus,
		&b.ServiceAmount,
		&b.Currency,
		&paymentIntentID,
		&b.PaymentReconciliationRequired,
		&b.Snapshot.ClientName,
		&b.Snapshot.ClientEmail,
		&clientPhone,
		&contractorName,
		&b.Snapshot.ServiceName,
		&b.Snapshot.ServiceCategory,
		&address,
		&notes,
		&cancellationReason,
		&cancelledAt,
		&completedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ScheduledAt = b.ScheduledAt.UTC()
	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(paymentStatus)
	if contractorID.Valid {
		b.ContractorID = &contractorID.Int64
	}
	b.PaymentIntentID = nullString(paymentIntentID)
	b.Snapshot.ClientPhone = nullString(clientPhone)
	b.Snapshot.ContractorName = nullString(contractorName)
	b.Snapshot.Address = nullString(address)
	b.Notes = nullString(notes)
	b.CancellationReason = nullString(cancellationReason)
	b.CancelledAt = nullTime(cancelledAt)
	b.CompletedAt = nullTime(completedAt)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
