package refuse_request

import (
	"context"

	transitionRequest "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_request"
)

type TransitionUseCase interface {
	Refuse(ctx context.Context, req *transitionRequest.Request) (*transitionRequest.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
