package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// QuietHours интервал времени суток без напоминаний, [Start, End).
// Start > End означает переход через полночь ("22:00"-"08:00").
// Пустой интервал или Start == End не запрещает ничего.
type QuietHours struct {
	Start types.TimeString
	End   types.TimeString
}

// Contains попадает ли локальное время в тихие часы
func (q QuietHours) Contains(local time.Time) bool {
	if q.Start.IsZero() || q.End.IsZero() {
		return false
	}
	start, end := q.Start.Minutes(), q.End.Minutes()
	if start < 0 || end < 0 || start == end {
		return false
	}

	m := local.Hour()*60 + local.Minute()
	if start < end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

// ReminderDue подтвержденное бронирование начинается в (now, now+lead]
func (b *Booking) ReminderDue(now time.Time, lead time.Duration) bool {
	if b.Status != StatusConfirmed {
		return false
	}
	return b.ScheduledAt.After(now) && !b.ScheduledAt.After(now.Add(lead))
}

// LocalTime момент t в часовом поясе бронирования
func (b *Booking) LocalTime(t time.Time) time.Time {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}
