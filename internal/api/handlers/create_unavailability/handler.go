package create_unavailability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability"
)

const (
	msgInvalidContractorID = "некорректный ID исполнителя"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgForbidden           = "доступ запрещен"
	msgInvalidPeriod       = "некорректный период недоступности"
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

// Handle POST /api/v1/contractors/{contractorId}/unavailabilities
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	contractorID, err := handlers.PathID(r, "contractorId")
	if err != nil {
		h.logger.Warn("POST /contractors/{id}/unavailabilities - Invalid contractor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidContractorID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /contractors/{id}/unavailabilities - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateUnavailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /contractors/{id}/unavailabilities - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if details := handlers.Validate(&req); details != nil {
		h.logger.Warn("POST /contractors/{id}/unavailabilities - Validation failed: contractor_id=%d, fields=%v", contractorID, details)
		handlers.RespondValidationError(w, details)
		return
	}

	period, err := h.service.Create(r.Context(), actor, req.ToServiceRequest(contractorID))
	if err != nil {
		switch {
		case errors.Is(err, unavailability.ErrAccessDenied):
			h.logger.Warn("POST /contractors/{id}/unavailabilities - Access denied: contractor_id=%d, user_id=%d", contractorID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, unavailability.ErrInvalidInput):
			h.logger.Warn("POST /contractors/{id}/unavailabilities - Invalid period: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		default:
			h.logger.Error("POST /contractors/{id}/unavailabilities - Failed to create period: contractor_id=%d, error=%v", contractorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /contractors/{id}/unavailabilities - Period created: period_id=%d, contractor_id=%d", period.ID, contractorID)
	handlers.RespondJSON(w, http.StatusCreated, period)
}
