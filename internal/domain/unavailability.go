package domain

import (
	"errors"
	"fmt"
	"time"
)

// ReasonType причина недоступности
type ReasonType string

const (
	ReasonVacation   ReasonType = "vacation"
	ReasonPersonal   ReasonType = "personal"
	ReasonLunchBreak ReasonType = "lunch_break"
	ReasonSick       ReasonType = "sick"
	ReasonOther      ReasonType = "other"
)

// IsValid проверяет, что причина входит в перечисление
func (r ReasonType) IsValid() bool {
	switch r {
	case ReasonVacation, ReasonPersonal, ReasonLunchBreak, ReasonSick, ReasonOther:
		return true
	}
	return false
}

// RecurrencePattern периодичность повторения недоступности
type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// IsValid проверяет, что периодичность входит в перечисление
func (p RecurrencePattern) IsValid() bool {
	switch p {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

var (
	ErrInvalidUnavailability = errors.New("domain: invalid unavailability period")
	ErrInvalidReasonType     = errors.New("domain: invalid reason type")
	ErrInvalidRecurrence     = errors.New("domain: invalid recurrence pattern")
)

// maxOccurrences ограничение на разворачивание повторов за один запрос
const maxOccurrences = 5000

// UnavailabilityPeriod период недоступности исполнителя (абсолютное время, UTC)
type UnavailabilityPeriod struct {
	ID                int64
	ContractorID      int64
	StartDatetime     time.Time
	EndDatetime       time.Time
	ReasonType        ReasonType
	Reason            *string
	IsRecurring       bool
	RecurrencePattern *RecurrencePattern
	RecurrenceEndDate *time.Time
	IsActive          bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize убирает параметры повторения у неповторяющегося периода
func (p *UnavailabilityPeriod) Normalize() {
	p.StartDatetime = p.StartDatetime.UTC()
	p.EndDatetime = p.EndDatetime.UTC()
	if !p.IsRecurring {
		p.RecurrencePattern = nil
		p.RecurrenceEndDate = nil
	}
}

// Validate проверяет инварианты периода
func (p *UnavailabilityPeriod) Validate() error {
	if !p.EndDatetime.After(p.StartDatetime) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidUnavailability)
	}
	if !p.ReasonType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReasonType, p.ReasonType)
	}
	if !p.IsRecurring {
		return nil
	}
	if p.RecurrencePattern == nil || !p.RecurrencePattern.IsValid() {
		return fmt.Errorf("%w: recurring period requires daily, weekly or monthly", ErrInvalidRecurrence)
	}
	if p.RecurrenceEndDate != nil && DateOnly(*p.RecurrenceEndDate).Before(DateOnly(p.StartDatetime)) {
		return fmt.Errorf("%w: recurrence end date before start", ErrInvalidRecurrence)
	}
	return nil
}

// Interval первое вхождение периода
func (p *UnavailabilityPeriod) Interval() Interval {
	return Interval{Start: p.StartDatetime, End: p.EndDatetime}
}

// UnavailabilityOccurrence конкретное вхождение (развернутый повтор) периода
type UnavailabilityOccurrence struct {
	PeriodID   int64
	Interval   Interval
	ReasonType ReasonType
	Reason     *string
}

// Occurrences возвращает вхождения периода, пересекающиеся с окном [from, to).
// Повторы отсчитываются от исходного начала с сохранением длительности.
func (p *UnavailabilityPeriod) Occurrences(from, to time.Time) []UnavailabilityOccurrence {
	window := Interval{Start: from, End: to}
	if !p.IsActive || !window.IsValid() {
		return nil
	}

	if !p.IsRecurring || p.RecurrencePattern == nil {
		if p.Interval().Overlaps(window) {
			return []UnavailabilityOccurrence{p.occurrence(p.Interval())}
		}
		return nil
	}

	duration := p.EndDatetime.Sub(p.StartDatetime)
	var result []UnavailabilityOccurrence

	first := p.firstCandidate(from)
	for n := first; n < first+maxOccurrences; n++ {
		start := p.shift(n)
		if !start.Before(to) {
			break
		}
		if p.RecurrenceEndDate != nil && DateOnly(start).After(DateOnly(*p.RecurrenceEndDate)) {
			break
		}
		occ := Interval{Start: start, End: start.Add(duration)}
		if occ.Overlaps(window) {
			result = append(result, p.occurrence(occ))
		}
	}

	return result
}

// firstCandidate номер повтора, с которого имеет смысл начинать перебор
func (p *UnavailabilityPeriod) firstCandidate(from time.Time) int {
	var step time.Duration
	switch *p.RecurrencePattern {
	case RecurrenceDaily:
		step = 24 * time.Hour
	case RecurrenceWeekly:
		step = 7 * 24 * time.Hour
	default:
		return 0
	}
	gap := from.Sub(p.EndDatetime)
	if gap <= 0 {
		return 0
	}
	return int(gap / step)
}

// shift начало n-го повтора
func (p *UnavailabilityPeriod) shift(n int) time.Time {
	switch *p.RecurrencePattern {
	case RecurrenceDaily:
		return p.StartDatetime.AddDate(0, 0, n)
	case RecurrenceWeekly:
		return p.StartDatetime.AddDate(0, 0, 7*n)
	default:
		return addMonthsClamped(p.StartDatetime, n)
	}
}

func (p *UnavailabilityPeriod) occurrence(i Interval) UnavailabilityOccurrence {
	return UnavailabilityOccurrence{
		PeriodID:   p.ID,
		Interval:   i,
		ReasonType: p.ReasonType,
		Reason:     p.Reason,
	}
}

// addMonthsClamped прибавляет месяцы; 31 января + 1 месяц = последний день февраля
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := firstOfMonth.AddDate(0, months, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
