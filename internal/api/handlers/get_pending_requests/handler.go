package get_pending_requests

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/requests"
)

const (
	msgInvalidContractorID = "некорректный ID исполнителя"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	service RequestService
	logger  Logger
}

func NewHandler(service RequestService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/contractors/{contractorId}/requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	contractorID, err := handlers.PathID(r, "contractorId")
	if err != nil {
		h.logger.Warn("GET /contractors/{id}/requests - Invalid contractor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidContractorID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /contractors/{id}/requests - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	list, err := h.service.GetPending(r.Context(), actor, contractorID)
	if err != nil {
		if errors.Is(err, requests.ErrAccessDenied) {
			h.logger.Warn("GET /contractors/{id}/requests - Access denied: contractor_id=%d, user_id=%d", contractorID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		h.logger.Error("GET /contractors/{id}/requests - Failed to get requests: contractor_id=%d, error=%v", contractorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /contractors/{id}/requests - Pending requests retrieved: contractor_id=%d, count=%d",
		contractorID, len(list.Requests))
	handlers.RespondJSON(w, http.StatusOK, list)
}
