package assign_contractor

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	assignContractor "github.com/m04kA/SMC-SchedulingService/internal/usecase/assign_contractor"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры слота"
	msgInvalidTimezone    = "неизвестный часовой пояс"
	msgNoContractor       = "нет свободных исполнителей на выбранный слот"
)

type Handler struct {
	useCase AssignContractorUseCase
	logger  Logger
}

func NewHandler(useCase AssignContractorUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/assignments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /assignments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if details := handlers.Validate(&req); details != nil {
		h.logger.Warn("POST /assignments - Validation failed: fields=%v", details)
		handlers.RespondValidationError(w, details)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidInput)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, assignContractor.ErrNoContractorAvailable):
			h.logger.Warn("POST /assignments - No contractor available: date=%s, time=%s-%s", req.Date, req.StartTime, req.EndTime)
			handlers.RespondConflict(w, msgNoContractor)

		case errors.Is(err, assignContractor.ErrInvalidTimezone):
			handlers.RespondBadRequest(w, msgInvalidTimezone)

		case errors.Is(err, assignContractor.ErrInvalidInput):
			h.logger.Warn("POST /assignments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /assignments - Failed to assign contractor: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /assignments - Contractor recommended: contractor_id=%d, score=%d, total=%d",
		result.Recommended.ContractorID, result.Recommended.Score, result.TotalAvailable)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
