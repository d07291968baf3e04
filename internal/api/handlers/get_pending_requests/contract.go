package get_pending_requests

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/requests/models"
)

type RequestService interface {
	GetPending(ctx context.Context, actor domain.Actor, contractorID int64) (*models.PendingRequestListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
