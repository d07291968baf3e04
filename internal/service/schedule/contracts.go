package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	Create(ctx context.Context, entry *domain.ScheduleEntry) (*domain.ScheduleEntry, error)
	GetByID(ctx context.Context, id int64) (*domain.ScheduleEntry, error)
	ListActiveByContractorDay(ctx context.Context, contractorID int64, day time.Weekday) ([]*domain.ScheduleEntry, error)
	ListByContractor(ctx context.Context, contractorID int64) ([]*domain.ScheduleEntry, error)
	Update(ctx context.Context, entry *domain.ScheduleEntry) error
	Deactivate(ctx context.Context, id int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
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
