package update_schedule_entry

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/schedule"
)

const (
	msgInvalidEntryID     = "некорректный ID записи расписания"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "запись расписания не найдена"
	msgForbidden          = "доступ запрещен"
	msgInvalidEntry       = "некорректное окно доступности"
	msgConflict           = "окно пересекается с существующей записью расписания"
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

// Handle PUT /api/v1/schedule-entries/{entryId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	entryID, err := handlers.PathID(r, "entryId")
	if err != nil {
		h.logger.Warn("PUT /schedule-entries/{id} - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /schedule-entries/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateEntryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedule-entries/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if details := handlers.Validate(&req); details != nil {
		handlers.RespondValidationError(w, details)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), actor, entryID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrEntryNotFound):
			h.logger.Warn("PUT /schedule-entries/{id} - Entry not found: entry_id=%d", entryID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrScheduleConflict):
			h.logger.Warn("PUT /schedule-entries/{id} - Conflict: entry_id=%d, %v", entryID, err)
			handlers.RespondConflict(w, msgConflict)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("PUT /schedule-entries/{id} - Access denied: entry_id=%d, user_id=%d", entryID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedule.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidEntry)

		default:
			h.logger.Error("PUT /schedule-entries/{id} - Failed to update entry: entry_id=%d, error=%v", entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /schedule-entries/{id} - Entry updated: entry_id=%d", entryID)
	handlers.RespondJSON(w, http.StatusOK, entry)
}
