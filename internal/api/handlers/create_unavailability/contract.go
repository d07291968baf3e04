package create_unavailability

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability/models"
)

type UnavailabilityService interface {
	Create(ctx context.Context, actor domain.Actor, req *models.CreateRequest) (*models.PeriodResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
