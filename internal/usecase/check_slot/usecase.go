package check_slot

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// UseCase проверка доступности слота исполнителя
type UseCase struct {
	scheduleRepo       ScheduleRepository
	unavailabilityRepo UnavailabilityRepository
	bookingRepo        BookingRepository
	metrics            Metrics
	defaultLocation    *time.Location
	logger             Logger
}

// NewUseCase создает новый экземпляр use case.
// defaultLocation используется для запросов без часового пояса.
func NewUseCase(
	scheduleRepo ScheduleRepository,
	unavailabilityRepo UnavailabilityRepository,
	bookingRepo BookingRepository,
	metrics Metrics,
	defaultLocation *time.Location,
	logger Logger,
) *UseCase {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &UseCase{
		scheduleRepo:       scheduleRepo,
		unavailabilityRepo: unavailabilityRepo,
		bookingRepo:        bookingRepo,
		metrics:            metrics,
		defaultLocation:    defaultLocation,
		logger:             logger,
	}
}

// Execute выполняет use case проверки слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckSlot: contractor=%d, date=%s, time=%s-%s, tz=%s",
		req.ContractorID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime, req.Timezone)

	// 1. Валидация входных данных
	query, err := buildQuery(req, uc.defaultLocation)
	if err != nil {
		uc.logger.Warn("CheckSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверка слота
	verdict, err := uc.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CheckSlot: contractor=%d slot %s %s is %s",
		req.ContractorID, query.Date.Format(domain.DateFormat), query.TimeRange, verdict)

	return &Response{
		ContractorID: query.ContractorID,
		Date:         query.Date,
		StartTime:    query.TimeRange.Start.String(),
		EndTime:      query.TimeRange.End.String(),
		Timezone:     query.Location.String(),
		Available:    verdict.IsAvailable(),
		Reason:       string(verdict.Reason),
		PeriodID:     verdict.PeriodID,
		BookingID:    verdict.BookingID,
	}, nil
}

// Resolve проверяет слот по трем правилам в порядке:
// окно расписания полностью содержит слот, слот не пересекает недоступность, слот не пересекает бронирования.
func (uc *UseCase) Resolve(ctx context.Context, query domain.SlotQuery) (domain.SlotVerdict, error) {
	verdict, err := uc.resolve(ctx, query)
	if err != nil {
		uc.logger.Error("CheckSlot: contractor=%d resolve failed: %v", query.ContractorID, err)
		return domain.SlotVerdict{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if uc.metrics != nil {
		uc.metrics.RecordSlotCheck(string(verdict.Reason))
	}
	return verdict, nil
}

func (uc *UseCase) resolve(ctx context.Context, query domain.SlotQuery) (domain.SlotVerdict, error) {
	// 1. Окно расписания на этот день, содержащее слот целиком
	entries, err := uc.scheduleRepo.ListEffective(ctx, query.ContractorID, query.Date)
	if err != nil {
		return domain.SlotVerdict{}, fmt.Errorf("list schedule: %w", err)
	}
	if !withinSchedule(entries, query) {
		return domain.SlotVerdict{Reason: domain.SlotNotInSchedule}, nil
	}

	interval := query.Interval()

	// 2. Периоды недоступности (с развернутыми повторами)
	periods, err := uc.unavailabilityRepo.ListActiveInRange(ctx, query.ContractorID, interval.Start, interval.End)
	if err != nil {
		return domain.SlotVerdict{}, fmt.Errorf("list unavailabilities: %w", err)
	}
	for _, p := range periods {
		if occ := p.Occurrences(interval.Start, interval.End); len(occ) > 0 {
			return domain.SlotVerdict{Reason: domain.SlotBlockedByUnavailability, PeriodID: ptr.Ptr(p.ID)}, nil
		}
	}

	// 3. Существующие бронирования исполнителя
	bookings, err := uc.bookingRepo.ListOccupying(ctx, query.ContractorID, interval.Start, interval.End)
	if err != nil {
		return domain.SlotVerdict{}, fmt.Errorf("list bookings: %w", err)
	}
	for _, b := range bookings {
		if b.IsActive() && b.Interval().Overlaps(interval) {
			return domain.SlotVerdict{Reason: domain.SlotBookingConflict, BookingID: ptr.Ptr(b.ID)}, nil
		}
	}

	return domain.SlotVerdict{Reason: domain.SlotAvailable}, nil
}

// withinSchedule хотя бы одна действующая запись содержит интервал слота
func withinSchedule(entries []*domain.ScheduleEntry, query domain.SlotQuery) bool {
	for _, e := range entries {
		if e.EffectiveOn(query.Date) && e.TimeRange.Contains(query.TimeRange) {
			return true
		}
	}
	return false
}
