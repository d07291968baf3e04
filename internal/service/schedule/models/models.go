package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var (
	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidDay возвращается при некорректном дне недели
	ErrInvalidDay = errors.New("invalid day of week, expected 0..6")
)

// Request модели

// AddEntryRequest запрос на добавление окна доступности
type AddEntryRequest struct {
	ContractorID   int64   `json:"-"`
	DayOfWeek      int     `json:"dayOfWeek"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	IsRecurring    *bool   `json:"isRecurring,omitempty"`
	EffectiveFrom  *string `json:"effectiveFrom,omitempty"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty"`
}

// UpdateEntryRequest запрос на изменение окна; пустые поля не меняются
type UpdateEntryRequest struct {
	StartTime      *string `json:"startTime,omitempty"`
	EndTime        *string `json:"endTime,omitempty"`
	IsRecurring    *bool   `json:"isRecurring,omitempty"`
	EffectiveFrom  *string `json:"effectiveFrom,omitempty"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty"`
}

// ToDomainEntry конвертирует запрос в запись; today используется как effectiveFrom по умолчанию
func (r *AddEntryRequest) ToDomainEntry(today time.Time) (*domain.ScheduleEntry, error) {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return nil, ErrInvalidDay
	}

	tr, err := ParseTimeRange(r.StartTime, r.EndTime)
	if err != nil {
		return nil, err
	}

	entry := &domain.ScheduleEntry{
		ContractorID:  r.ContractorID,
		DayOfWeek:     time.Weekday(r.DayOfWeek),
		TimeRange:     tr,
		IsRecurring:   true,
		EffectiveFrom: domain.DateOnly(today),
		IsActive:      true,
	}
	if r.IsRecurring != nil {
		entry.IsRecurring = *r.IsRecurring
	}
	if r.EffectiveFrom != nil {
		from, err := ParseDate(*r.EffectiveFrom)
		if err != nil {
			return nil, err
		}
		entry.EffectiveFrom = from
	}
	if r.EffectiveUntil != nil {
		until, err := ParseDate(*r.EffectiveUntil)
		if err != nil {
			return nil, err
		}
		entry.EffectiveUntil = &until
	}
	return entry, nil
}

// ApplyTo применяет изменения к существующей записи
func (r *UpdateEntryRequest) ApplyTo(entry *domain.ScheduleEntry) error {
	start, end := entry.TimeRange.Start.String(), entry.TimeRange.End.String()
	if r.StartTime != nil {
		start = *r.StartTime
	}
	if r.EndTime != nil {
		end = *r.EndTime
	}
	tr, err := ParseTimeRange(start, end)
	if err != nil {
		return err
	}
	entry.TimeRange = tr

	if r.IsRecurring != nil {
		entry.IsRecurring = *r.IsRecurring
	}
	if r.EffectiveFrom != nil {
		from, err := ParseDate(*r.EffectiveFrom)
		if err != nil {
			return err
		}
		entry.EffectiveFrom = from
	}
	if r.EffectiveUntil != nil {
		if *r.EffectiveUntil == "" {
			entry.EffectiveUntil = nil
		} else {
			until, err := ParseDate(*r.EffectiveUntil)
			if err != nil {
				return err
			}
			entry.EffectiveUntil = &until
		}
	}
	return nil
}

// Response модели

// EntryResponse ответ с данными записи расписания
type EntryResponse struct {
	ID             int64            `json:"id"`
	ContractorID   int64            `json:"contractorId"`
	DayOfWeek      int              `json:"dayOfWeek"`
	StartTime      types.TimeString `json:"startTime"`
	EndTime        types.TimeString `json:"endTime"`
	IsRecurring    bool             `json:"isRecurring"`
	EffectiveFrom  string           `json:"effectiveFrom"`
	EffectiveUntil *string          `json:"effectiveUntil,omitempty"`
	IsActive       bool             `json:"isActive"`
}

// WeeklyScheduleResponse расписание по дням недели (всегда 7 ключей)
type WeeklyScheduleResponse struct {
	ContractorID int64                      `json:"contractorId"`
	Days         map[string][]EntryResponse `json:"days"`
}

// Методы конвертации

// FromDomainEntry конвертирует domain модель в DTO
func FromDomainEntry(e *domain.ScheduleEntry) *EntryResponse {
	if e == nil {
		return nil
	}

	resp := &EntryResponse{
		ID:            e.ID,
		ContractorID:  e.ContractorID,
		DayOfWeek:     int(e.DayOfWeek),
		StartTime:     e.TimeRange.Start,
		EndTime:       e.TimeRange.End,
		IsRecurring:   e.IsRecurring,
		EffectiveFrom: e.EffectiveFrom.Format(domain.DateFormat),
		IsActive:      e.IsActive,
	}
	if e.EffectiveUntil != nil {
		until := e.EffectiveUntil.Format(domain.DateFormat)
		resp.EffectiveUntil = &until
	}
	return resp
}

// FromDomainWeekly конвертирует недельное расписание в DTO
func FromDomainWeekly(contractorID int64, schedule domain.WeeklySchedule) *WeeklyScheduleResponse {
	resp := &WeeklyScheduleResponse{
		ContractorID: contractorID,
		Days:         make(map[string][]EntryResponse, len(schedule)),
	}
	for day, entries := range schedule {
		list := make([]EntryResponse, 0, len(entries))
		for _, e := range entries {
			list = append(list, *FromDomainEntry(e))
		}
		resp.Days[DayName(day)] = list
	}
	return resp
}

// DayName название дня недели в нижнем регистре
func DayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// ParseTimeRange разбирает пару "HH:MM" в интервал
func ParseTimeRange(start, end string) (domain.TimeRange, error) {
	s, err := types.NewTimeStringFromString(start)
	if err != nil {
		return domain.TimeRange{}, err
	}
	e, err := types.NewTimeStringFromString(end)
	if err != nil {
		return domain.TimeRange{}, err
	}
	return domain.NewTimeRange(s, e)
}

// ParseDate разбирает дату YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
