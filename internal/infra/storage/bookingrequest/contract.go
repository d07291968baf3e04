package bookingrequest

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

type scanner interface {
	Scan(dest ...interface{}) error
}

// TransitionParams параметры условного перехода из pending
type TransitionParams struct {
	ID                int64
	To                domain.RequestStatus
	Now               time.Time
	RefusalReason     *string
	ContractorMessage *string
}
