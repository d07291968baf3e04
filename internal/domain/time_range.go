package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// ErrInvalidTimeRange возвращается для диапазона с end <= start или некорректным временем
var ErrInvalidTimeRange = errors.New("domain: invalid time range")

// TimeRange интервал внутри суток [Start, End)
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// NewTimeRange создает и валидирует интервал
func NewTimeRange(start, end types.TimeString) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if !r.IsValid() {
		return TimeRange{}, fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return r, nil
}

// IsValid оба конца в [00:00, 24:00) и end > start
func (r TimeRange) IsValid() bool {
	if r.Start.Validate() != nil || r.End.Validate() != nil {
		return false
	}
	return r.End.Minutes() > r.Start.Minutes()
}

// Overlaps строгое пересечение: касание границ пересечением не считается
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Minutes() < other.End.Minutes() && other.Start.Minutes() < r.End.Minutes()
}

// Contains other целиком лежит внутри r
func (r TimeRange) Contains(other TimeRange) bool {
	return r.Start.Minutes() <= other.Start.Minutes() && other.End.Minutes() <= r.End.Minutes()
}

// DurationMinutes длительность интервала
func (r TimeRange) DurationMinutes() int {
	return r.End.Minutes() - r.Start.Minutes()
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Interval абсолютный интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid end > start
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Overlaps строгое пересечение абсолютных интервалов
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}
