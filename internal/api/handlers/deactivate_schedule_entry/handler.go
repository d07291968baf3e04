package deactivate_schedule_entry

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/schedule"
)

const (
	msgInvalidEntryID = "некорректный ID записи расписания"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgNotFound       = "запись расписания не найдена"
	msgForbidden      = "доступ запрещен"
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

// Handle DELETE /api/v1/schedule-entries/{entryId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	entryID, err := handlers.PathID(r, "entryId")
	if err != nil {
		h.logger.Warn("DELETE /schedule-entries/{id} - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("DELETE /schedule-entries/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.DeactivateEntry(r.Context(), actor, entryID); err != nil {
		switch {
		case errors.Is(err, schedule.ErrEntryNotFound):
			h.logger.Warn("DELETE /schedule-entries/{id} - Entry not found: entry_id=%d", entryID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("DELETE /schedule-entries/{id} - Access denied: entry_id=%d, user_id=%d", entryID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /schedule-entries/{id} - Failed to deactivate entry: entry_id=%d, error=%v", entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /schedule-entries/{id} - Entry deactivated: entry_id=%d", entryID)
	w.WriteHeader(http.StatusNoContent)
}
