package middleware

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/infra/ratelimit"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// HTTPMetrics метрики HTTP запросов
type HTTPMetrics interface {
	ObserveHTTP(method, route, status string, duration time.Duration)
}

// Limiter общий для всех инстансов ограничитель запросов
type Limiter interface {
	Allow(ctx context.Context, key string) (*ratelimit.Result, error)
}

type contextKey string

const (
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "request_id"
)
