package deactivate_schedule_entry

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type ScheduleService interface {
	DeactivateEntry(ctx context.Context, actor domain.Actor, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
