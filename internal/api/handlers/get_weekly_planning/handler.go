package get_weekly_planning

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
)

const (
	msgInvalidContractorID = "некорректный ID исполнителя"
	msgInvalidWeekStart    = "некорректный параметр weekStart, ожидается YYYY-MM-DD"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	service      BookingService
	timeProvider TimeProvider
	logger       Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service:      service,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider устанавливает кастомный TimeProvider (для тестов)
func (h *Handler) WithTimeProvider(tp TimeProvider) *Handler {
	h.timeProvider = tp
	return h
}

// Handle GET /api/v1/contractors/{contractorId}/planning?weekStart=2025-06-02
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	contractorID, err := handlers.PathID(r, "contractorId")
	if err != nil {
		h.logger.Warn("GET /contractors/{id}/planning - Invalid contractor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidContractorID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /contractors/{id}/planning - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Без weekStart - неделя, начинающаяся с понедельника текущей недели
	weekStart := mondayOf(h.timeProvider.Now().UTC())
	if r.URL.Query().Get("weekStart") != "" {
		weekStart, err = handlers.QueryDate(r, "weekStart")
		if err != nil {
			h.logger.Warn("GET /contractors/{id}/planning - Invalid weekStart: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWeekStart)
			return
		}
	}

	planning, err := h.service.GetWeeklyPlanning(r.Context(), actor, contractorID, weekStart)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /contractors/{id}/planning - Access denied: contractor_id=%d, user_id=%d", contractorID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /contractors/{id}/planning - Failed to get planning: contractor_id=%d, error=%v", contractorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /contractors/{id}/planning - Planning retrieved: contractor_id=%d, bookings=%d",
		contractorID, len(planning.Bookings))
	handlers.RespondJSON(w, http.StatusOK, planning)
}

func mondayOf(t time.Time) time.Time {
	day := domain.DateOnly(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
