package create_schedule_entry

import "github.com/m04kA/SMC-SchedulingService/internal/service/schedule/models"

// CreateEntryRequest HTTP request model
type CreateEntryRequest struct {
	DayOfWeek      *int    `json:"dayOfWeek" validate:"required,min=0,max=6"` // 0 = воскресенье
	StartTime      string  `json:"startTime" validate:"required,datetime=15:04"`
	EndTime        string  `json:"endTime" validate:"required,datetime=15:04"`
	IsRecurring    *bool   `json:"isRecurring,omitempty"`
	EffectiveFrom  *string `json:"effectiveFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateEntryRequest) ToServiceRequest(contractorID int64) *models.AddEntryRequest {
	return &models.AddEntryRequest{
		ContractorID:   contractorID,
		DayOfWeek:      *r.DayOfWeek,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		IsRecurring:    r.IsRecurring,
		EffectiveFrom:  r.EffectiveFrom,
		EffectiveUntil: r.EffectiveUntil,
	}
}
