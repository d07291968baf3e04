package assign_contractor

import (
	"context"

	assignContractor "github.com/m04kA/SMC-SchedulingService/internal/usecase/assign_contractor"
)

type AssignContractorUseCase interface {
	Execute(ctx context.Context, req *assignContractor.Request) (*assignContractor.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
