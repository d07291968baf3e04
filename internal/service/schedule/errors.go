package schedule

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrEntryNotFound возвращается, когда запись расписания не найдена
	ErrEntryNotFound = errors.New("schedule entry not found")

	// ErrScheduleConflict возвращается при пересечении с активной записью
	ErrScheduleConflict = errors.New("schedule entry overlaps an active entry")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// ConflictError пересечение с конкретной записью.
// Entry равен nil, если конфликт обнаружен ограничением БД.
type ConflictError struct {
	Entry *domain.ScheduleEntry
}

func (e *ConflictError) Error() string {
	if e.Entry == nil {
		return ErrScheduleConflict.Error()
	}
	return fmt.Sprintf("%s: entry id=%d %s %s", ErrScheduleConflict.Error(), e.Entry.ID, e.Entry.DayOfWeek, e.Entry.TimeRange)
}

func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}
