package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mondayEntry(id int64, start, end string) *ScheduleEntry {
	return &ScheduleEntry{
		ID:            id,
		ContractorID:  7,
		DayOfWeek:     time.Monday,
		TimeRange:     tr(start, end),
		IsRecurring:   true,
		EffectiveFrom: date(2025, 1, 1),
		IsActive:      true,
	}
}

func TestScheduleEntry_EffectiveOn(t *testing.T) {
	entry := mondayEntry(1, "09:00", "12:00")
	entry.EffectiveUntil = ptr.Ptr(date(2025, 6, 30))

	assert.True(t, entry.EffectiveOn(date(2025, 6, 2)))    // понедельник
	assert.False(t, entry.EffectiveOn(date(2025, 6, 3)))   // вторник
	assert.False(t, entry.EffectiveOn(date(2024, 12, 30))) // до начала действия
	assert.True(t, entry.EffectiveOn(date(2025, 6, 30)))   // последний день включительно
	assert.False(t, entry.EffectiveOn(date(2025, 7, 7)))

	entry.IsActive = false
	assert.False(t, entry.EffectiveOn(date(2025, 6, 2)))
}

func TestScheduleEntry_OpenEndedIgnoresRecurrenceFlag(t *testing.T) {
	for _, recurring := range []bool{true, false} {
		entry := mondayEntry(1, "09:00", "12:00")
		entry.IsRecurring = recurring
		entry.EffectiveFrom = date(2025, 6, 2)

		assert.True(t, entry.EffectiveOn(date(2025, 6, 2)), "recurring=%t", recurring)
		assert.True(t, entry.EffectiveOn(date(2025, 6, 16)), "recurring=%t", recurring)
		assert.True(t, entry.EffectiveOn(date(2026, 6, 1)), "recurring=%t", recurring)
		assert.False(t, entry.EffectiveOn(date(2025, 5, 26)), "recurring=%t", recurring)
	}

	// неповторяющаяся запись с датой окончания действует до нее включительно
	bounded := mondayEntry(2, "09:00", "12:00")
	bounded.IsRecurring = false
	bounded.EffectiveFrom = date(2025, 6, 2)
	bounded.EffectiveUntil = ptr.Ptr(date(2025, 6, 23))
	assert.True(t, bounded.EffectiveOn(date(2025, 6, 23)))
	assert.False(t, bounded.EffectiveOn(date(2025, 6, 30)))

	// открытые периоды пересекаются независимо от флага
	oneOff := mondayEntry(3, "10:00", "11:00")
	oneOff.IsRecurring = false
	oneOff.EffectiveFrom = date(2025, 6, 2)
	later := mondayEntry(4, "10:00", "11:00")
	later.EffectiveFrom = date(2025, 9, 1)
	assert.True(t, oneOff.WindowIntersects(later))
}

func TestFindScheduleConflict(t *testing.T) {
	existing := []*ScheduleEntry{mondayEntry(1, "09:00", "12:00")}

	conflict := FindScheduleConflict(mondayEntry(0, "11:00", "13:00"), existing)
	require.NotNil(t, conflict)
	assert.Equal(t, int64(1), conflict.ID)

	assert.Nil(t, FindScheduleConflict(mondayEntry(0, "12:00", "14:00"), existing))

	// самого себя не учитываем при обновлении
	assert.Nil(t, FindScheduleConflict(mondayEntry(1, "10:00", "13:00"), existing))

	// не пересекающиеся периоды действия
	later := mondayEntry(0, "10:00", "11:00")
	later.EffectiveFrom = date(2025, 7, 1)
	bounded := mondayEntry(2, "09:00", "12:00")
	bounded.EffectiveUntil = ptr.Ptr(date(2025, 6, 30))
	assert.Nil(t, FindScheduleConflict(later, []*ScheduleEntry{bounded}))

	// неактивные записи не конфликтуют
	inactive := mondayEntry(3, "09:00", "12:00")
	inactive.IsActive = false
	assert.Nil(t, FindScheduleConflict(mondayEntry(0, "10:00", "11:00"), []*ScheduleEntry{inactive}))
}

func TestNewWeeklySchedule(t *testing.T) {
	late := mondayEntry(2, "14:00", "18:00")
	early := mondayEntry(1, "08:00", "12:00")

	schedule := NewWeeklySchedule([]*ScheduleEntry{late, early})

	assert.Len(t, schedule, 7)
	assert.Empty(t, schedule[time.Sunday])
	require.Len(t, schedule[time.Monday], 2)
	assert.Equal(t, int64(1), schedule[time.Monday][0].ID)
}
