package unavailability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	unavailabilityRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/unavailability"
	"github.com/m04kA/SMC-SchedulingService/internal/service/unavailability/models"
)

// Service сервис периодов недоступности исполнителей
type Service struct {
	repo   UnavailabilityRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса
func NewService(repo UnavailabilityRepository, logger Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Create добавляет период недоступности.
// Пересекающиеся периоды допускаются.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateRequest) (*models.PeriodResponse, error) {
	s.logger.Info("Create: contractor=%d %s..%s reason=%s by user=%d",
		req.ContractorID, req.StartDatetime.Format(time.RFC3339), req.EndDatetime.Format(time.RFC3339), req.ReasonType, actor.UserID)

	if !actor.CanManageContractor(req.ContractorID) {
		s.logger.Warn("Create: user=%d cannot manage contractor=%d", actor.UserID, req.ContractorID)
		return nil, ErrAccessDenied
	}

	period, err := req.ToDomainPeriod()
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.repo.Create(ctx, period)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created period id=%d for contractor=%d", created.ID, created.ContractorID)
	return models.FromDomainPeriod(created), nil
}

// ListActive вхождения активных периодов, пересекающиеся с окном [from, to), по возрастанию начала
func (s *Service) ListActive(ctx context.Context, actor domain.Actor, contractorID int64, from, to time.Time) (*models.OccurrenceListResponse, error) {
	s.logger.Info("ListActive: contractor=%d window=%s..%s", contractorID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	if !actor.CanManageContractor(contractorID) {
		s.logger.Warn("ListActive: user=%d cannot manage contractor=%d", actor.UserID, contractorID)
		return nil, ErrAccessDenied
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: window end must be after start", ErrInvalidInput)
	}

	occurrences, err := ActiveOccurrences(ctx, s.repo, contractorID, from, to)
	if err != nil {
		s.logger.Error("ListActive: repository error for contractor=%d: %v", contractorID, err)
		return nil, fmt.Errorf("%w: ListActive - repository error: %v", ErrInternal, err)
	}

	resp := &models.OccurrenceListResponse{
		ContractorID: contractorID,
		From:         from.UTC(),
		To:           to.UTC(),
		Occurrences:  make([]models.OccurrenceResponse, 0, len(occurrences)),
	}
	for _, o := range occurrences {
		resp.Occurrences = append(resp.Occurrences, models.FromDomainOccurrence(o))
	}
	return resp, nil
}

// Deactivate мягко удаляет период
func (s *Service) Deactivate(ctx context.Context, actor domain.Actor, id int64) error {
	s.logger.Info("Deactivate: period id=%d by user=%d", id, actor.UserID)

	period, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapRepoError("Deactivate", err)
	}
	if !actor.CanManageContractor(period.ContractorID) {
		s.logger.Warn("Deactivate: user=%d cannot manage contractor=%d", actor.UserID, period.ContractorID)
		return ErrAccessDenied
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return s.mapRepoError("Deactivate", err)
	}

	s.logger.Info("Deactivate: deactivated period id=%d", id)
	return nil
}

func (s *Service) mapRepoError(op string, err error) error {
	if errors.Is(err, unavailabilityRepo.ErrPeriodNotFound) {
		s.logger.Warn("%s: period not found", op)
		return ErrPeriodNotFound
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// ActiveOccurrences разворачивает активные периоды исполнителя в вхождения внутри [from, to)
func ActiveOccurrences(ctx context.Context, repo UnavailabilityRepository, contractorID int64, from, to time.Time) ([]domain.UnavailabilityOccurrence, error) {
	periods, err := repo.ListActiveInRange(ctx, contractorID, from, to)
	if err != nil {
		return nil, err
	}

	var occurrences []domain.UnavailabilityOccurrence
	for _, p := range periods {
		occurrences = append(occurrences, p.Occurrences(from, to)...)
	}
	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Interval.Start.Before(occurrences[j].Interval.Start)
	})
	return occurrences, nil
}
