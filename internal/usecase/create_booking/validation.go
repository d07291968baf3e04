package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// validateRequest проверяет входные данные и строит слот
func validateRequest(req *Request, defaultLocation *time.Location) (domain.SlotQuery, error) {
	if req.Actor.Role != domain.RoleClient && !req.Actor.IsPrivileged() {
		return domain.SlotQuery{}, ErrAccessDenied
	}
	if req.ContractorID != nil && *req.ContractorID <= 0 {
		return domain.SlotQuery{}, fmt.Errorf("%w: contractorId must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return domain.SlotQuery{}, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(req.ServiceName) == "" {
		return domain.SlotQuery{}, fmt.Errorf("%w: serviceName is required", ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return domain.SlotQuery{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(req.ClientName) == "" || strings.TrimSpace(req.ClientEmail) == "" {
		return domain.SlotQuery{}, fmt.Errorf("%w: client name and email are required", ErrInvalidInput)
	}
	if req.PaymentCustomer == "" {
		return domain.SlotQuery{}, fmt.Errorf("%w: payment customer is required", ErrInvalidInput)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return domain.SlotQuery{}, fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if req.Date.IsZero() {
		return domain.SlotQuery{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.DurationMinutes == 0 {
		req.DurationMinutes = domain.DefaultDurationMinutes
	}
	if req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes {
		return domain.SlotQuery{}, fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}
	// слот не переходит через полночь
	end, err := start.AddMinutes(req.DurationMinutes)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: slot must end before midnight", ErrInvalidInput)
	}
	tr, err := domain.NewTimeRange(start, end)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	loc := defaultLocation
	if req.Timezone != "" {
		if loc, err = time.LoadLocation(req.Timezone); err != nil {
			return domain.SlotQuery{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, req.Timezone)
		}
	}

	query := domain.SlotQuery{
		Date:      domain.DateOnly(req.Date),
		TimeRange: tr,
		Location:  loc,
	}
	if req.ContractorID != nil {
		query.ContractorID = *req.ContractorID
	}
	return query, nil
}

// validateNotice слот не в прошлом и до начала не меньше minNotice
func validateNotice(start, now time.Time, minNotice time.Duration) error {
	if !start.After(now) {
		return fmt.Errorf("%w: starts at %s", ErrSlotInPast, start.Format(time.RFC3339))
	}
	if start.Sub(now) < minNotice {
		return fmt.Errorf("%w: at least %d minutes notice required", ErrTooLateToBook, int(minNotice.Minutes()))
	}
	return nil
}
