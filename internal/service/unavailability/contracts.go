package unavailability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// UnavailabilityRepository интерфейс репозитория периодов недоступности
type UnavailabilityRepository interface {
	Create(ctx context.Context, period *domain.UnavailabilityPeriod) (*domain.UnavailabilityPeriod, error)
	GetByID(ctx context.Context, id int64) (*domain.UnavailabilityPeriod, error)
	ListActiveInRange(ctx context.Context, contractorID int64, from, to time.Time) ([]*domain.UnavailabilityPeriod, error)
	Deactivate(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
