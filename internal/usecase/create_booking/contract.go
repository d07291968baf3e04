package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/assign_contractor"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// RequestRepository интерфейс репозитория запросов исполнителям
type RequestRepository interface {
	Create(ctx context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error)
}

// ContractorRepository интерфейс репозитория исполнителей
type ContractorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Contractor, error)
}

// SlotResolver проверка доступности слота исполнителя
type SlotResolver interface {
	Resolve(ctx context.Context, query domain.SlotQuery) (domain.SlotVerdict, error)
}

// ContractorRanker подбор свободных исполнителей по баллу
type ContractorRanker interface {
	RankAvailable(ctx context.Context, query domain.SlotQuery, category string, location *domain.GeoPoint) ([]assign_contractor.Candidate, error)
}

// PaymentClient интерфейс платежного провайдера
type PaymentClient interface {
	Authorize(ctx context.Context, params payment.AuthorizeParams) (*payment.Intent, error)
	CancelAuthorization(ctx context.Context, intentID string, idempotencyKey string) error
}

// Locker распределенная блокировка календарей исполнителей
type Locker interface {
	WithContractorsLock(ctx context.Context, contractorIDs []int64, fn func(ctx context.Context) error) error
}

// Notifier отправка уведомлений
type Notifier interface {
	Notify(ctx context.Context, recipient notifier.Recipient, kind notifier.Kind, payload notifier.Payload)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
