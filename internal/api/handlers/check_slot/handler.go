package check_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	checkSlot "github.com/m04kA/SMC-SchedulingService/internal/usecase/check_slot"
)

const (
	msgInvalidContractorID = "некорректный ID исполнителя"
	msgInvalidQuery        = "некорректные параметры слота"
	msgInvalidTimezone     = "неизвестный часовой пояс"
)

type Handler struct {
	useCase CheckSlotUseCase
	logger  Logger
}

func NewHandler(useCase CheckSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/contractors/{contractorId}/availability?date=2025-06-02&start=10:00&end=11:00&timezone=Europe/Paris
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	contractorID, err := handlers.PathID(r, "contractorId")
	if err != nil {
		h.logger.Warn("GET /contractors/{id}/availability - Invalid contractor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidContractorID)
		return
	}

	values := r.URL.Query()
	query := CheckSlotQuery{
		Date:     values.Get("date"),
		Start:    values.Get("start"),
		End:      values.Get("end"),
		Timezone: values.Get("timezone"),
	}
	if details := handlers.Validate(&query); details != nil {
		h.logger.Warn("GET /contractors/{id}/availability - Validation failed: contractor_id=%d, fields=%v", contractorID, details)
		handlers.RespondValidationError(w, details)
		return
	}

	useCaseReq, err := query.ToUseCaseRequest(contractorID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, checkSlot.ErrInvalidTimezone):
			handlers.RespondBadRequest(w, msgInvalidTimezone)

		case errors.Is(err, checkSlot.ErrInvalidInput):
			h.logger.Warn("GET /contractors/{id}/availability - Invalid slot: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /contractors/{id}/availability - Failed to check slot: contractor_id=%d, error=%v", contractorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /contractors/{id}/availability - Slot checked: contractor_id=%d, reason=%s", contractorID, result.Reason)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
