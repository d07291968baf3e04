package update_schedule_entry

import "github.com/m04kA/SMC-SchedulingService/internal/service/schedule/models"

// UpdateEntryRequest HTTP request model; пустая строка effectiveUntil снимает ограничение
type UpdateEntryRequest struct {
	StartTime      *string `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime        *string `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	IsRecurring    *bool   `json:"isRecurring,omitempty"`
	EffectiveFrom  *string `json:"effectiveFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateEntryRequest) ToServiceRequest() *models.UpdateEntryRequest {
	return &models.UpdateEntryRequest{
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		IsRecurring:    r.IsRecurring,
		EffectiveFrom:  r.EffectiveFrom,
		EffectiveUntil: r.EffectiveUntil,
	}
}
