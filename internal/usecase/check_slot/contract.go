package check_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	// ListEffective активные записи исполнителя, действующие в указанную дату
	ListEffective(ctx context.Context, contractorID int64, date time.Time) ([]*domain.ScheduleEntry, error)
}

// UnavailabilityRepository интерфейс репозитория периодов недоступности
type UnavailabilityRepository interface {
	ListActiveInRange(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.UnavailabilityPeriod, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListOccupying неотмененные бронирования исполнителя (назначенные или ожидающие его ответа), пересекающие [from, to)
	ListOccupying(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.Booking, error)
}

// Metrics счетчик результатов проверки
type Metrics interface {
	RecordSlotCheck(verdict string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
