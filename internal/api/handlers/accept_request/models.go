package accept_request

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	transitionRequest "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_request"
)

// AcceptRequest HTTP request model; тело необязательно
type AcceptRequest struct {
	Message *string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

// TransitionResponse HTTP response model
type TransitionResponse struct {
	RequestID     int64   `json:"requestId"`
	BookingID     int64   `json:"bookingId"`
	ContractorID  int64   `json:"contractorId"`
	Status        string  `json:"status"`
	RespondedAt   *string `json:"respondedAt,omitempty"`
	BookingStatus string  `json:"bookingStatus"`
	PaymentStatus string  `json:"paymentStatus"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AcceptRequest) ToUseCaseRequest(actor domain.Actor, requestID int64) *transitionRequest.Request {
	return &transitionRequest.Request{
		Actor:     actor,
		RequestID: requestID,
		Message:   r.Message,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *transitionRequest.Response) *TransitionResponse {
	out := &TransitionResponse{
		RequestID:     resp.RequestID,
		BookingID:     resp.BookingID,
		ContractorID:  resp.ContractorID,
		Status:        resp.Status,
		BookingStatus: resp.BookingStatus,
		PaymentStatus: resp.PaymentStatus,
	}
	if resp.RespondedAt != nil {
		respondedAt := resp.RespondedAt.UTC().Format(time.RFC3339)
		out.RespondedAt = &respondedAt
	}
	return out
}
