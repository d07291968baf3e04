package bookingrequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const pgUniqueViolation = "23505"

var requestColumns = []string{
	"id",
	"booking_id",
	"contractor_id",
	"status",
	"requested_at",
	"expires_at",
	"responded_at",
	"refusal_reason",
	"contractor_message",
	"created_at",
	"updated_at",
}

// Repository репозиторий запросов на бронирование
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет pending запрос
func (r *Repository) Create(ctx context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_requests").
		Columns("booking_id", "contractor_id", "status", "requested_at", "expires_at").
		Values(req.BookingID, req.ContractorID, string(req.Status), req.RequestedAt.UTC(), req.ExpiresAt.UTC()).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&req.ID, &createdAt, &updatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, fmt.Errorf("%w: booking=%d contractor=%d", ErrDuplicatePending, req.BookingID, req.ContractorID)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time
	return req, nil
}

// GetByID получает запрос по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(requestColumns...).
		From("booking_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan request: %v", ErrScanRow, err)
	}
	return req, nil
}

// ListPendingByContractor неистекшие pending запросы исполнителя, ближайшие к истечению первыми
func (r *Repository) ListPendingByContractor(ctx context.Context, contractorID int64, now time.Time) ([]*domain.BookingRequest, error) {
	builder := psqlbuilder.Select(requestColumns...).
		From("booking_requests").
		Where(squirrel.Eq{"contractor_id": contractorID, "status": string(domain.RequestPending)}).
		Where(squirrel.Gt{"expires_at": now.UTC()}).
		OrderBy("expires_at")

	return r.list(ctx, "ListPendingByContractor", builder)
}

// FindExpiredPending pending запросы с expires_at <= now, не более limit
func (r *Repository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.BookingRequest, error) {
	builder := psqlbuilder.Select(requestColumns...).
		From("booking_requests").
		Where(squirrel.Eq{"status": string(domain.RequestPending)}).
		Where(squirrel.LtOrEq{"expires_at": now.UTC()}).
		OrderBy("expires_at").
		Limit(uint64(limit))

	return r.list(ctx, "FindExpiredPending", builder)
}

// CountPendingByBooking количество pending запросов бронирования, кроме exceptID
func (r *Repository) CountPendingByBooking(ctx context.Context, bookingID, exceptID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("booking_requests").
		Where(squirrel.Eq{"booking_id": bookingID, "status": string(domain.RequestPending)}).
		Where(squirrel.NotEq{"id": exceptID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountPendingByBooking - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountPendingByBooking - scan count: %v", ErrScanRow, err)
	}
	return count, nil
}

// Transition атомарный переход pending -> To (UPDATE ... WHERE status = 'pending').
// Для accepted дополнительно требуется expires_at > now, для expired - expires_at <= now.
// Если строка не обновилась: ErrRequestNotFound, если запроса нет, иначе ErrStatusMismatch.
func (r *Repository) Transition(ctx context.Context, params TransitionParams) (*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	now := params.Now.UTC()

	builder := psqlbuilder.Update("booking_requests").
		Set("status", string(params.To)).
		Set("refusal_reason", params.RefusalReason).
		Set("contractor_message", params.ContractorMessage).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": params.ID, "status": string(domain.RequestPending)})

	switch params.To {
	case domain.RequestAccepted:
		builder = builder.Set("responded_at", now).Where(squirrel.Gt{"expires_at": now})
	case domain.RequestRefused:
		builder = builder.Set("responded_at", now)
	case domain.RequestExpired:
		builder = builder.Where(squirrel.LtOrEq{"expires_at": now})
	default:
		return nil, fmt.Errorf("%w: Transition - target status %q", ErrStatusMismatch, params.To)
	}

	query, args, err := builder.Suffix("RETURNING " + strings.Join(requestColumns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: Transition - execute update: %v", ErrExecQuery, err)
	}

	current, getErr := r.GetByID(ctx, params.ID)
	if getErr != nil {
		return nil, getErr
	}
	return current, fmt.Errorf("%w: Transition - request id=%d status=%s", ErrStatusMismatch, params.ID, current.Status)
}

// ExpireSiblings переводит остальные pending запросы бронирования в expired с указанной причиной
func (r *Repository) ExpireSiblings(ctx context.Context, bookingID, exceptID int64, now time.Time, reason string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_requests").
		Set("status", string(domain.RequestExpired)).
		Set("refusal_reason", reason).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"booking_id": bookingID, "status": string(domain.RequestPending)}).
		Where(squirrel.NotEq{"id": exceptID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireSiblings - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireSiblings - execute update: %v", ErrExecQuery, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireSiblings - get rows affected: %v", ErrExecQuery, err)
	}
	return affected, nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.BookingRequest, error) {
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

	requests := make([]*domain.BookingRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan request: %v", ErrScanRow, op, err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}
	return requests, nil
}

func scanRequest(row scanner) (*domain.BookingRequest, error) {
	var (
		req                  domain.BookingRequest
		status               string
		respondedAt          sql.NullTime
		refusalReason        sql.NullString
		contractorMessage    sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&req.ID,
		&req.BookingID,
		&req.ContractorID,
		&status,
		&req.RequestedAt,
		&req.ExpiresAt,
		&respondedAt,
		&refusalReason,
		&contractorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = domain.RequestStatus(status)
	req.RequestedAt = req.RequestedAt.UTC()
	req.ExpiresAt = req.ExpiresAt.UTC()
	if respondedAt.Valid {
		t := respondedAt.Time
		req.RespondedAt = &t
	}
	if refusalReason.Valid {
		req.RefusalReason = &refusalReason.String
	}
	if contractorMessage.Valid {
		req.ContractorMessage = &contractorMessage.String
	}
	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time
	return &req, nil
}
