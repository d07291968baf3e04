package check_slot

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	checkSlot "github.com/m04kA/SMC-SchedulingService/internal/usecase/check_slot"
)

// CheckSlotQuery параметры запроса
type CheckSlotQuery struct {
	Date     string `validate:"required,datetime=2006-01-02"`
	Start    string `validate:"required,datetime=15:04"`
	End      string `validate:"required,datetime=15:04"`
	Timezone string `validate:"omitempty,timezone"`
}

// SlotResponse HTTP response model
type SlotResponse struct {
	ContractorID int64  `json:"contractorId"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Timezone     string `json:"timezone"`
	Available    bool   `json:"available"`
	Reason       string `json:"reason"`
	PeriodID     *int64 `json:"unavailabilityId,omitempty"`
	BookingID    *int64 `json:"bookingId,omitempty"`
}

// ToUseCaseRequest конвертирует параметры в модель use case
func (q *CheckSlotQuery) ToUseCaseRequest(contractorID int64) (*checkSlot.Request, error) {
	date, err := time.Parse(domain.DateFormat, q.Date)
	if err != nil {
		return nil, err
	}
	return &checkSlot.Request{
		ContractorID: contractorID,
		Date:         date,
		StartTime:    q.Start,
		EndTime:      q.End,
		Timezone:     q.Timezone,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkSlot.Response) *SlotResponse {
	return &SlotResponse{
		ContractorID: resp.ContractorID,
		Date:         resp.Date.Format(domain.DateFormat),
		StartTime:    resp.StartTime,
		EndTime:      resp.EndTime,
		Timezone:     resp.Timezone,
		Available:    resp.Available,
		Reason:       resp.Reason,
		PeriodID:     resp.PeriodID,
		BookingID:    resp.BookingID,
	}
}
