package transition_request

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель действия исполнителя над запросом
type Request struct {
	Actor     domain.Actor
	RequestID int64
	Reason    *string // Причина отказа (только для refuse)
	Message   *string // Сообщение клиенту
}

// Response результат перехода
type Response struct {
	RequestID     int64
	BookingID     int64
	ContractorID  int64
	Status        string
	RespondedAt   *time.Time
	BookingStatus string
	PaymentStatus string
}
