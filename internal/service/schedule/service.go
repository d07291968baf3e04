package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-SchedulingService/internal/service/schedule/models"
)

// Service сервис недельного расписания исполнителей
type Service struct {
	scheduleRepo ScheduleRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестирования)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// AddEntry добавляет окно доступности.
// Доступно владельцу-исполнителю и администратору.
// Проверка пересечений выполняется в serializable транзакции с блокировкой записей дня.
func (s *Service) AddEntry(ctx context.Context, actor domain.Actor, req *models.AddEntryRequest) (*models.EntryResponse, error) {
	s.logger.Info("AddEntry: contractor=%d day=%d %s-%s by user=%d",
		req.ContractorID, req.DayOfWeek, req.StartTime, req.EndTime, actor.UserID)

	// 1. Проверяем права доступа
	if !actor.CanManageContractor(req.ContractorID) {
		s.logger.Warn("AddEntry: user=%d cannot manage contractor=%d", actor.UserID, req.ContractorID)
		return nil, ErrAccessDenied
	}

	// 2. Валидируем и конвертируем запрос
	entry, err := req.ToDomainEntry(s.timeProvider.Now())
	if err != nil {
		s.logger.Warn("AddEntry: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := normalizeWindow(entry); err != nil {
		s.logger.Warn("AddEntry: validation failed: %v", err)
		return nil, err
	}

	// 3. Проверяем пересечения и сохраняем атомарно
	var created *domain.ScheduleEntry
	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.checkConflict(ctx, entry); err != nil {
			return err
		}

		var err error
		created, err = s.scheduleRepo.Create(ctx, entry)
		return err
	})
	if err != nil {
		return nil, s.mapError("AddEntry", err)
	}

	s.logger.Info("AddEntry: created entry id=%d for contractor=%d", created.ID, created.ContractorID)
	return models.FromDomainEntry(created), nil
}

// UpdateEntry изменяет интервал и/или период действия записи.
// Пересечения проверяются со всеми остальными активными записями (сама запись исключается).
func (s *Service) UpdateEntry(ctx context.Context, actor domain.Actor, id int64, req *models.UpdateEntryRequest) (*models.EntryResponse, error) {
	s.logger.Info("UpdateEntry: entry id=%d by user=%d", id, actor.UserID)

	var updated *domain.ScheduleEntry
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// 1. Получаем запись (FOR UPDATE внутри транзакции)
		entry, err := s.scheduleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !entry.IsActive {
			return scheduleRepo.ErrEntryNotFound
		}

		// 2. Проверяем права доступа
		if !actor.CanManageContractor(entry.ContractorID) {
			return ErrAccessDenied
		}

		// 3. Применяем изменения и валидируем
		if err := req.ApplyTo(entry); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := normalizeWindow(entry); err != nil {
			return err
		}

		// 4. Проверяем пересечения и сохраняем
		if err := s.checkConflict(ctx, entry); err != nil {
			return err
		}
		if err := s.scheduleRepo.Update(ctx, entry); err != nil {
			return err
		}

		updated = entry
		return nil
	})
	if err != nil {
		return nil, s.mapError("UpdateEntry", err)
	}

	s.logger.Info("UpdateEntry: updated entry id=%d", id)
	return models.FromDomainEntry(updated), nil
}

// DeactivateEntry мягко удаляет запись
func (s *Service) DeactivateEntry(ctx context.Context, actor domain.Actor, id int64) error {
	s.logger.Info("DeactivateEntry: entry id=%d by user=%d", id, actor.UserID)

	entry, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return s.mapError("DeactivateEntry", err)
	}
	if !actor.CanManageContractor(entry.ContractorID) {
		s.logger.Warn("DeactivateEntry: user=%d cannot manage contractor=%d", actor.UserID, entry.ContractorID)
		return ErrAccessDenied
	}

	if err := s.scheduleRepo.Deactivate(ctx, id); err != nil {
		return s.mapError("DeactivateEntry", err)
	}

	s.logger.Info("DeactivateEntry: deactivated entry id=%d", id)
	return nil
}

// GetWeeklySchedule активные записи исполнителя по дням недели.
// Публичный метод; дни без записей присутствуют с пустым списком.
func (s *Service) GetWeeklySchedule(ctx context.Context, contractorID int64) (*models.WeeklyScheduleResponse, error) {
	s.logger.Info("GetWeeklySchedule: contractor=%d", contractorID)

	entries, err := s.scheduleRepo.ListByContractor(ctx, contractorID)
	if err != nil {
		s.logger.Error("GetWeeklySchedule: repository error for contractor=%d: %v", contractorID, err)
		return nil, fmt.Errorf("%w: GetWeeklySchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWeekly(contractorID, domain.NewWeeklySchedule(entries)), nil
}

// checkConflict ищет пересечение среди активных записей того же дня
func (s *Service) checkConflict(ctx context.Context, entry *domain.ScheduleEntry) error {
	existing, err := s.scheduleRepo.ListActiveByContractorDay(ctx, entry.ContractorID, entry.DayOfWeek)
	if err != nil {
		return err
	}
	if conflict := domain.FindScheduleConflict(entry, existing); conflict != nil {
		return &ConflictError{Entry: conflict}
	}
	return nil
}

func (s *Service) mapError(op string, err error) error {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		s.logger.Warn("%s: %v", op, conflict)
		return conflict
	case errors.Is(err, scheduleRepo.ErrScheduleConflict):
		s.logger.Warn("%s: rejected by exclusion constraint: %v", op, err)
		return &ConflictError{}
	case errors.Is(err, scheduleRepo.ErrEntryNotFound):
		s.logger.Warn("%s: entry not found", op)
		return ErrEntryNotFound
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrInvalidInput):
		s.logger.Warn("%s: %v", op, err)
		return err
	default:
		s.logger.Error("%s: repository error: %v", op, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// normalizeWindow проверяет период действия и фиксирует неделю для разовой записи
func normalizeWindow(entry *domain.ScheduleEntry) error {
	entry.EffectiveFrom = domain.DateOnly(entry.EffectiveFrom)
	if entry.EffectiveUntil != nil {
		until := domain.DateOnly(*entry.EffectiveUntil)
		if until.Before(entry.EffectiveFrom) {
			return fmt.Errorf("%w: effectiveUntil before effectiveFrom", ErrInvalidInput)
		}
		entry.EffectiveUntil = &until
	}
	return nil
}
