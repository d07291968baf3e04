package check_slot

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// buildQuery валидирует запрос и строит SlotQuery
func buildQuery(req *Request, defaultLocation *time.Location) (domain.SlotQuery, error) {
	if req.ContractorID <= 0 {
		return domain.SlotQuery{}, fmt.Errorf("%w: contractorID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return domain.SlotQuery{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}
	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: endTime: %v", ErrInvalidInput, err)
	}
	tr, err := domain.NewTimeRange(start, end)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	loc := defaultLocation
	if req.Timezone != "" {
		loc, err = time.LoadLocation(req.Timezone)
		if err != nil {
			return domain.SlotQuery{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, req.Timezone)
		}
	}

	return domain.SlotQuery{
		ContractorID: req.ContractorID,
		Date:         domain.DateOnly(req.Date),
		TimeRange:    tr,
		Location:     loc,
	}, nil
}
