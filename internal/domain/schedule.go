package domain

import (
	"sort"
	"time"
)

// ScheduleEntry повторяющееся окно доступности исполнителя в определенный день недели
type ScheduleEntry struct {
	ID             int64
	ContractorID   int64
	DayOfWeek      time.Weekday // 0 = воскресенье
	TimeRange      TimeRange
	IsRecurring    bool
	EffectiveFrom  time.Time  // дата (без времени)
	EffectiveUntil *time.Time // nil = бессрочно
	IsActive       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// effectiveEnd последняя дата действия записи, nil = бессрочно.
// IsRecurring на период действия не влияет.
func (e *ScheduleEntry) effectiveEnd() *time.Time {
	if e.EffectiveUntil == nil {
		return nil
	}
	end := DateOnly(*e.EffectiveUntil)
	return &end
}

// EffectiveOn запись активна и действует в указанную дату
func (e *ScheduleEntry) EffectiveOn(date time.Time) bool {
	if !e.IsActive || date.Weekday() != e.DayOfWeek {
		return false
	}
	day := DateOnly(date)
	if day.Before(DateOnly(e.EffectiveFrom)) {
		return false
	}
	end := e.effectiveEnd()
	return end == nil || !day.After(*end)
}

// WindowIntersects периоды действия двух записей пересекаются
func (e *ScheduleEntry) WindowIntersects(other *ScheduleEntry) bool {
	aEnd, bEnd := e.effectiveEnd(), other.effectiveEnd()
	if aEnd != nil && aEnd.Before(DateOnly(other.EffectiveFrom)) {
		return false
	}
	if bEnd != nil && bEnd.Before(DateOnly(e.EffectiveFrom)) {
		return false
	}
	return true
}

// ConflictsWith две активные записи одного исполнителя на один день недели
// с пересекающимися периодами действия и пересекающимися интервалами времени
func (e *ScheduleEntry) ConflictsWith(other *ScheduleEntry) bool {
	if e.ID != 0 && e.ID == other.ID {
		return false
	}
	if !e.IsActive || !other.IsActive {
		return false
	}
	if e.ContractorID != other.ContractorID || e.DayOfWeek != other.DayOfWeek {
		return false
	}
	return e.WindowIntersects(other) && e.TimeRange.Overlaps(other.TimeRange)
}

// FindScheduleConflict возвращает первую запись из existing, конфликтующую с candidate
func FindScheduleConflict(candidate *ScheduleEntry, existing []*ScheduleEntry) *ScheduleEntry {
	for _, entry := range existing {
		if candidate.ConflictsWith(entry) {
			return entry
		}
	}
	return nil
}

// WeeklySchedule расписание исполнителя по дням недели.
// Всегда содержит все 7 ключей.
type WeeklySchedule map[time.Weekday][]*ScheduleEntry

// NewWeeklySchedule группирует записи по дням недели и сортирует по времени начала
func NewWeeklySchedule(entries []*ScheduleEntry) WeeklySchedule {
	schedule := make(WeeklySchedule, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		schedule[day] = []*ScheduleEntry{}
	}

	for _, entry := range entries {
		schedule[entry.DayOfWeek] = append(schedule[entry.DayOfWeek], entry)
	}

	for day := range schedule {
		list := schedule[day]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].TimeRange.Start.Minutes() < list[j].TimeRange.Start.Minutes()
		})
	}

	return schedule
}

// DateOnly отбрасывает время, оставляя календарную дату в UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
