package create_unavailability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability/models"
)

// CreateUnavailabilityRequest HTTP request model; время в RFC3339
type CreateUnavailabilityRequest struct {
	StartDatetime     time.Time  `json:"startDatetime" validate:"required"`
	EndDatetime       time.Time  `json:"endDatetime" validate:"required,gtfield=StartDatetime"`
	ReasonType        string     `json:"reasonType" validate:"required,oneof=vacation personal lunch_break sick other"`
	Reason            *string    `json:"reason,omitempty" validate:"omitempty,max=500"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurrencePattern *string    `json:"recurrencePattern,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateUnavailabilityRequest) ToServiceRequest(contractorID int64) *models.CreateRequest {
	return &models.CreateRequest{
		ContractorID:      contractorID,
		StartDatetime:     r.StartDatetime,
		EndDatetime:       r.EndDatetime,
		ReasonType:        r.ReasonType,
		Reason:            r.Reason,
		IsRecurring:       r.IsRecurring,
		RecurrencePattern: r.RecurrencePattern,
		RecurrenceEndDate: r.RecurrenceEndDate,
	}
}
