package list_unavailabilities

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability/models"
)

type UnavailabilityService interface {
	ListActive(ctx context.Context, actor domain.Actor, contractorID int64, from, to time.Time) (*models.OccurrenceListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
