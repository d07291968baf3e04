package accept_request

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	transitionRequest "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_request"
)

const (
	msgInvalidRequestID   = "некорректный ID запроса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "запрос на бронирование не найден"
	msgForbidden          = "запрос адресован другому исполнителю"
	msgNotPending         = "запрос уже обработан"
	msgExpired            = "срок ответа на запрос истек"
	msgBookingNotPending  = "бронирование уже подтверждено или отменено"
	msgPaymentDeclined    = "списание оплаты отклонено"
	msgPaymentUnavailable = "платежный сервис недоступен, повторите попытку позже"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase TransitionUseCase
	logger  Logger
}

func NewHandler(useCase TransitionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/booking-requests/{requestId}/accept
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := handlers.PathID(r, "requestId")
	if err != nil {
		h.logger.Warn("POST /booking-requests/{id}/accept - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /booking-requests/{id}/accept - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AcceptRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("POST /booking-requests/{id}/accept - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if details := handlers.Validate(&req); details != nil {
		handlers.RespondValidationError(w, details)
		return
	}

	result, err := h.useCase.Accept(r.Context(), req.ToUseCaseRequest(actor, requestID))
	if err != nil {
		switch {
		case errors.Is(err, transitionRequest.ErrRequestNotFound):
			h.logger.Warn("POST /booking-requests/{id}/accept - Request not found: request_id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transitionRequest.ErrAccessDenied):
			h.logger.Warn("POST /booking-requests/{id}/accept - Access denied: request_id=%d, user_id=%d", requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, transitionRequest.ErrRequestExpired):
			h.logger.Warn("POST /booking-requests/{id}/accept - Request expired: request_id=%d", requestID)
			handlers.RespondError(w, http.StatusGone, msgExpired)

		case errors.Is(err, transitionRequest.ErrRequestNotPending):
			h.logger.Warn("POST /booking-requests/{id}/accept - Request not pending: request_id=%d", requestID)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(err, transitionRequest.ErrBookingNotPending):
			h.logger.Warn("POST /booking-requests/{id}/accept - Booking not pending: request_id=%d", requestID)
			handlers.RespondConflict(w, msgBookingNotPending)

		case errors.Is(err, transitionRequest.ErrPaymentDeclined):
			h.logger.Warn("POST /booking-requests/{id}/accept - Capture declined: request_id=%d", requestID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentDeclined)

		case errors.Is(err, transitionRequest.ErrPaymentUnavailable):
			h.logger.Error("POST /booking-requests/{id}/accept - Payment provider unavailable: request_id=%d, error=%v", requestID, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgPaymentUnavailable)

		case errors.Is(err, transitionRequest.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /booking-requests/{id}/accept - Failed to accept request: request_id=%d, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking-requests/{id}/accept - Request accepted: request_id=%d, booking_id=%d, contractor_id=%d",
		result.RequestID, result.BookingID, result.ContractorID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
