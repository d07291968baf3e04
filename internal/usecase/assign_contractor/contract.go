package assign_contractor

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ContractorRepository интерфейс репозитория исполнителей
type ContractorRepository interface {
	ListActive(ctx context.Context) ([]*domain.Contractor, error)
}

// SlotResolver проверка доступности слота (check_slot.UseCase)
type SlotResolver interface {
	Resolve(ctx context.Context, query domain.SlotQuery) (domain.SlotVerdict, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
