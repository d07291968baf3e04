package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "бронирование может создать только клиент"
	msgInvalidInput       = "некорректные данные бронирования"
	msgInvalidTimezone    = "неизвестный часовой пояс"
	msgSlotInPast         = "выбранное время уже прошло"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgContractorNotFound = "исполнитель не найден"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgContractorBusy     = "календарь исполнителя занят, повторите попытку"
	msgPaymentDeclined    = "платеж отклонен"
	msgPaymentUnavailable = "платежный сервис недоступен, повторите попытку позже"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if details := handlers.Validate(&req); details != nil {
		h.logger.Warn("POST /bookings - Validation failed: user_id=%d, fields=%v", actor.UserID, details)
		handlers.RespondValidationError(w, details)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInput)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var slotErr *createBooking.SlotUnavailableError
		switch {
		case errors.As(err, &slotErr):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, reason=%s", actor.UserID, slotErr.Verdict)
			handlers.RespondJSON(w, http.StatusConflict, handlers.ErrorResponse{
				Code:    http.StatusConflict,
				Message: msgSlotNotAvailable,
				Details: map[string]string{"reason": string(slotErr.Verdict.Reason)},
			})

		case errors.Is(err, createBooking.ErrContractorBusy):
			h.logger.Warn("POST /bookings - Contractor calendar busy: user_id=%d", actor.UserID)
			handlers.RespondConflict(w, msgContractorBusy)

		case errors.Is(err, createBooking.ErrContractorNotFound):
			h.logger.Warn("POST /bookings - Contractor not found: user_id=%d", actor.UserID)
			handlers.RespondNotFound(w, msgContractorNotFound)

		case errors.Is(err, createBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings - Access denied: user_id=%d, role=%s", actor.UserID, actor.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createBooking.ErrInvalidTimezone):
			handlers.RespondBadRequest(w, msgInvalidTimezone)

		case errors.Is(err, createBooking.ErrSlotInPast):
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrPaymentDeclined):
			h.logger.Warn("POST /bookings - Payment declined: user_id=%d", actor.UserID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentDeclined)

		case errors.Is(err, createBooking.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings - Payment provider unavailable: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgPaymentUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, requests=%d",
		result.ID, actor.UserID, len(result.Requests))
	handlers.RespondJSON(w, http.StatusCreated, response)
}
