package create_schedule_entry

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/schedule"
)

const (
	msgInvalidContractorID = "некорректный ID исполнителя"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgForbidden           = "доступ запрещен"
	msgInvalidEntry        = "некорректное окно доступности"
	msgConflict            = "окно пересекается с существующей записью расписания"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/contractors/{contractorId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	contractorID, err := handlers.PathID(r, "contractorId")
	if err != nil {
		h.logger.Warn("POST /contractors/{id}/schedule - Invalid contractor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidContractorID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /contractors/{id}/schedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateEntryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /contractors/{id}/schedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if details := handlers.Validate(&req); details != nil {
		h.logger.Warn("POST /contractors/{id}/schedule - Validation failed: contractor_id=%d, fields=%v", contractorID, details)
		handlers.RespondValidationError(w, details)
		return
	}

	entry, err := h.service.AddEntry(r.Context(), actor, req.ToServiceRequest(contractorID))
	if err != nil {
		var conflict *schedule.ConflictError
		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("POST /contractors/{id}/schedule - Conflict: contractor_id=%d, %v", contractorID, conflict)
			handlers.RespondConflict(w, msgConflict)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("POST /contractors/{id}/schedule - Access denied: contractor_id=%d, user_id=%d", contractorID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /contractors/{id}/schedule - Invalid entry: %v", err)
			handlers.RespondBadRequest(w, msgInvalidEntry)

		default:
			h.logger.Error("POST /contractors/{id}/schedule - Failed to add entry: contractor_id=%d, error=%v", contractorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /contractors/{id}/schedule - Entry created: entry_id=%d, contractor_id=%d", entry.ID, contractorID)
	handlers.RespondJSON(w, http.StatusCreated, entry)
}
