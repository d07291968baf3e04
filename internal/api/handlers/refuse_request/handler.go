package refuse_request

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

// Handle POST /api/v1/booking-requests/{requestId}/refuse
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := handlers.PathID(r, "requestId")
	if err != nil {
		h.logger.Warn("POST /booking-requests/{id}/refuse - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /booking-requests/{id}/refuse - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RefuseRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking-requests/{id}/refuse - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if details := handlers.Validate(&req); details != nil {
		h.logger.Warn("POST /booking-requests/{id}/refuse - Validation failed: %v", details)
		handlers.RespondValidationError(w, details)
		return
	}

	result, err := h.useCase.Refuse(r.Context(), req.ToUseCaseRequest(actor, requestID))
	if err != nil {
		switch {
		case errors.Is(err, transitionRequest.ErrRequestNotFound):
			h.logger.Warn("POST /booking-requests/{id}/refuse - Request not found: request_id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transitionRequest.ErrAccessDenied):
			h.logger.Warn("POST /booking-requests/{id}/refuse - Access denied: request_id=%d, user_id=%d", requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, transitionRequest.ErrRequestNotPending), errors.Is(err, transitionRequest.ErrRequestExpired):
			h.logger.Warn("POST /booking-requests/{id}/refuse - Request not pending: request_id=%d", requestID)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(err, transitionRequest.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /booking-requests/{id}/refuse - Failed to refuse request: request_id=%d, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking-requests/{id}/refuse - Request refused: request_id=%d, booking_id=%d, booking_status=%s",
		result.RequestID, result.BookingID, result.BookingStatus)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
