package get_weekly_planning

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

type BookingService interface {
	GetWeeklyPlanning(ctx context.Context, actor domain.Actor, contractorID int64, weekStart time.Time) (*models.PlanningResponse, error)
}

// TimeProvider источник текущей даты для недели по умолчанию
type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
