package deactivate_unavailability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability"
)

const (
	msgInvalidPeriodID = "некорректный ID периода недоступности"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgNotFound        = "период недоступности не найден"
	msgForbidden       = "доступ запрещен"
)

type Handler struct {
	service UnavailabilityService
	logger  Logger
}

func NewHandler(service UnavailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/unavailabilities/{unavailabilityId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	periodID, err := handlers.PathID(r, "unavailabilityId")
	if err != nil {
		h.logger.Warn("DELETE /unavailabilities/{id} - Invalid period ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPeriodID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("DELETE /unavailabilities/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Deactivate(r.Context(), actor, periodID); err != nil {
		switch {
		case errors.Is(err, unavailability.ErrPeriodNotFound):
			h.logger.Warn("DELETE /unavailabilities/{id} - Period not found: period_id=%d", periodID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, unavailability.ErrAccessDenied):
			h.logger.Warn("DELETE /unavailabilities/{id} - Access denied: period_id=%d, user_id=%d", periodID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /unavailabilities/{id} - Failed to deactivate period: period_id=%d, error=%v", periodID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /unavailabilities/{id} - Period deactivated: period_id=%d", periodID)
	w.WriteHeader(http.StatusNoContent)
}
