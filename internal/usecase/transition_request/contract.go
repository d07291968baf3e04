package transition_request

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/bookingrequest"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// LockByID SELECT ... FOR UPDATE, только внутри транзакции
	LockByID(ctx context.Context, id int64) (*domain.Booking, error)
	Confirm(ctx context.Context, id, contractorID int64, contractorName string) error
	Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, cancelledAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, reconciliationRequired bool) error
}

// RequestRepository интерфейс репозитория запросов исполнителям
type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error)
	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.BookingRequest, error)
	CountPendingByBooking(ctx context.Context, bookingID, exceptID int64) (int, error)
	Transition(ctx context.Context, params bookingrequest.TransitionParams) (*domain.BookingRequest, error)
	ExpireSiblings(ctx context.Context, bookingID, exceptID int64, now time.Time, reason string) (int64, error)
}

// ContractorRepository интерфейс репозитория исполнителей
type ContractorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Contractor, error)
}

// PaymentClient интерфейс платежного провайдера
type PaymentClient interface {
	Capture(ctx context.Context, intentID string, amount int64, idempotencyKey string) (*payment.Intent, error)
	CancelAuthorization(ctx context.Context, intentID string, idempotencyKey string) error
}

// Notifier отправка уведомлений
type Notifier interface {
	Notify(ctx context.Context, recipient notifier.Recipient, kind notifier.Kind, payload notifier.Payload)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики переходов и сверки платежей
type Metrics interface {
	RecordTransition(action, outcome string)
	RecordReconciliation(reason string)
	RecordSweep(result string, expired int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
