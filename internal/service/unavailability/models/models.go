package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модели

// CreateRequest запрос на создание периода недоступности
type CreateRequest struct {
	ContractorID      int64      `json:"-"`
	StartDatetime     time.Time  `json:"startDatetime"`
	EndDatetime       time.Time  `json:"endDatetime"`
	ReasonType        string     `json:"reasonType"`
	Reason            *string    `json:"reason,omitempty"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurrencePattern *string    `json:"recurrencePattern,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate,omitempty"`
}

// ToDomainPeriod конвертирует запрос в domain модель и проверяет инварианты
func (r *CreateRequest) ToDomainPeriod() (*domain.UnavailabilityPeriod, error) {
	period := &domain.UnavailabilityPeriod{
		ContractorID:      r.ContractorID,
		StartDatetime:     r.StartDatetime,
		EndDatetime:       r.EndDatetime,
		ReasonType:        domain.ReasonType(r.ReasonType),
		Reason:            r.Reason,
		IsRecurring:       r.IsRecurring,
		RecurrenceEndDate: r.RecurrenceEndDate,
		IsActive:          true,
	}
	if r.RecurrencePattern != nil {
		pattern := domain.RecurrencePattern(*r.RecurrencePattern)
		period.RecurrencePattern = &pattern
	}

	period.Normalize()
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if r.Reason != nil && len([]rune(*r.Reason)) > domain.MaxReasonLength {
		return nil, fmt.Errorf("reason exceeds %d characters", domain.MaxReasonLength)
	}
	if period.EndDatetime.Sub(period.StartDatetime) > domain.MaxUnavailabilityDays*24*time.Hour {
		return nil, fmt.Errorf("period exceeds %d days", domain.MaxUnavailabilityDays)
	}
	return period, nil
}

// Response модели

// PeriodResponse ответ с данными периода
type PeriodResponse struct {
	ID                int64      `json:"id"`
	ContractorID      int64      `json:"contractorId"`
	StartDatetime     time.Time  `json:"startDatetime"`
	EndDatetime       time.Time  `json:"endDatetime"`
	ReasonType        string     `json:"reasonType"`
	Reason            *string    `json:"reason,omitempty"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurrencePattern *string    `json:"recurrencePattern,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate,omitempty"`
	IsActive          bool       `json:"isActive"`
}

// OccurrenceResponse вхождение периода в запрошенном окне
type OccurrenceResponse struct {
	PeriodID   int64     `json:"periodId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ReasonType string    `json:"reasonType"`
	Reason     *string   `json:"reason,omitempty"`
}

// OccurrenceListResponse ответ со списком вхождений
type OccurrenceListResponse struct {
	ContractorID int64                `json:"contractorId"`
	From         time.Time            `json:"from"`
	To           time.Time            `json:"to"`
	Occurrences  []OccurrenceResponse `json:"occurrences"`
}

// Методы конвертации

// FromDomainPeriod конвертирует domain модель в DTO
func FromDomainPeriod(p *domain.UnavailabilityPeriod) *PeriodResponse {
	if p == nil {
		return nil
	}
	resp := &PeriodResponse{
		ID:                p.ID,
		ContractorID:      p.ContractorID,
		StartDatetime:     p.StartDatetime,
		EndDatetime:       p.EndDatetime,
		ReasonType:        string(p.ReasonType),
		Reason:            p.Reason,
		IsRecurring:       p.IsRecurring,
		RecurrenceEndDate: p.RecurrenceEndDate,
		IsActive:          p.IsActive,
	}
	if p.RecurrencePattern != nil {
		pattern := string(*p.RecurrencePattern)
		resp.RecurrencePattern = &pattern
	}
	return resp
}

// FromDomainOccurrence конвертирует вхождение в DTO
func FromDomainOccurrence(o domain.UnavailabilityOccurrence) OccurrenceResponse {
	return OccurrenceResponse{
		PeriodID:   o.PeriodID,
		Start:      o.Interval.Start,
		End:        o.Interval.End,
		ReasonType: string(o.ReasonType),
		Reason:     o.Reason,
	}
}
