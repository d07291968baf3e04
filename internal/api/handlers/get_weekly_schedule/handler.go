package get_weekly_schedule

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const msgInvalidContractorID = "некорректный ID исполнителя"

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

// Handle GET /api/v1/contractors/{contractorId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	contractorID, err := handlers.PathID(r, "contractorId")
	if err != nil {
		h.logger.Warn("GET /contractors/{id}/schedule - Invalid contractor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidContractorID)
		return
	}

	schedule, err := h.service.GetWeeklySchedule(r.Context(), contractorID)
	if err != nil {
		h.logger.Error("GET /contractors/{id}/schedule - Failed to get schedule: contractor_id=%d, error=%v", contractorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /contractors/{id}/schedule - Schedule retrieved: contractor_id=%d", contractorID)
	handlers.RespondJSON(w, http.StatusOK, schedule)
}
