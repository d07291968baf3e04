package list_unavailabilities

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability"
)

const (
	msgInvalidContractorID = "некорректный ID исполнителя"
	msgInvalidWindow       = "параметры from и to обязательны (RFC3339 или YYYY-MM-DD), to позже from"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgForbidden           = "доступ запрещен"
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

// Handle GET /api/v1/contractors/{contractorId}/unavailabilities?from=...&to=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	contractorID, err := handlers.PathID(r, "contractorId")
	if err != nil {
		h.logger.Warn("GET /contractors/{id}/unavailabilities - Invalid contractor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidContractorID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /contractors/{id}/unavailabilities - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	from, errFrom := parseBound(r.URL.Query().Get("from"))
	to, errTo := parseBound(r.URL.Query().Get("to"))
	if errFrom != nil || errTo != nil {
		h.logger.Warn("GET /contractors/{id}/unavailabilities - Invalid window: from=%v, to=%v", errFrom, errTo)
		handlers.RespondBadRequest(w, msgInvalidWindow)
		return
	}

	list, err := h.service.ListActive(r.Context(), actor, contractorID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, unavailability.ErrAccessDenied):
			h.logger.Warn("GET /contractors/{id}/unavailabilities - Access denied: contractor_id=%d, user_id=%d", contractorID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, unavailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidWindow)

		default:
			h.logger.Error("GET /contractors/{id}/unavailabilities - Failed to list periods: contractor_id=%d, error=%v", contractorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /contractors/{id}/unavailabilities - Occurrences retrieved: contractor_id=%d, count=%d",
		contractorID, len(list.Occurrences))
	handlers.RespondJSON(w, http.StatusOK, list)
}

// parseBound RFC3339 или дата YYYY-MM-DD (полночь UTC)
func parseBound(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(domain.DateFormat, s)
}
