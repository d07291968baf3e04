package domain

import (
	"fmt"
	"time"
)

// SlotQuery кандидат на бронирование: исполнитель, дата и интервал в часовом поясе Location
type SlotQuery struct {
	ContractorID int64
	Date         time.Time
	TimeRange    TimeRange
	Location     *time.Location
}

// Interval абсолютный интервал слота в UTC
func (q SlotQuery) Interval() Interval {
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	return Interval{
		Start: q.TimeRange.Start.OnDate(q.Date, loc).UTC(),
		End:   q.TimeRange.End.OnDate(q.Date, loc).UTC(),
	}
}

// Weekday день недели календарной даты слота
func (q SlotQuery) Weekday() time.Weekday {
	return q.Date.Weekday()
}

// SlotReason результат проверки слота
type SlotReason string

const (
	SlotAvailable               SlotReason = "available"
	SlotNotInSchedule           SlotReason = "not_in_schedule"
	SlotBlockedByUnavailability SlotReason = "blocked_by_unavailability"
	SlotBookingConflict         SlotReason = "booking_conflict"
)

// SlotVerdict результат проверки слота с указанием блокирующей сущности
type SlotVerdict struct {
	Reason    SlotReason
	PeriodID  *int64 // для SlotBlockedByUnavailability
	BookingID *int64 // для SlotBookingConflict
}

// IsAvailable слот свободен
func (v SlotVerdict) IsAvailable() bool {
	return v.Reason == SlotAvailable
}

func (v SlotVerdict) String() string {
	switch {
	case v.BookingID != nil:
		return fmt.Sprintf("%s(booking=%d)", v.Reason, *v.BookingID)
	case v.PeriodID != nil:
		return fmt.Sprintf("%s(unavailability=%d)", v.Reason, *v.PeriodID)
	default:
		return string(v.Reason)
	}
}
