package assign_contractor

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// UseCase подбор исполнителя на слот
type UseCase struct {
	contractorRepo  ContractorRepository
	resolver        SlotResolver
	tieBreak        TieBreak
	defaultLocation *time.Location
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	contractorRepo ContractorRepository,
	resolver SlotResolver,
	tieBreak TieBreak,
	defaultLocation *time.Location,
	logger Logger,
) *UseCase {
	if tieBreak == "" {
		tieBreak = TieBreakByID
	}
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &UseCase{
		contractorRepo:  contractorRepo,
		resolver:        resolver,
		tieBreak:        tieBreak,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

// Execute выполняет use case подбора исполнителя
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AssignContractor: date=%s, time=%s-%s, category=%q",
		req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime, req.ServiceCategory)

	// 1. Валидация входных данных
	query, err := uc.buildQuery(req)
	if err != nil {
		uc.logger.Warn("AssignContractor: validation failed: %v", err)
		return nil, err
	}

	// 2. Ранжирование свободных исполнителей
	ranked, err := uc.RankAvailable(ctx, query, req.ServiceCategory, req.Location)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		uc.logger.Warn("AssignContractor: no contractor available on %s %s",
			query.Date.Format(domain.DateFormat), query.TimeRange)
		return nil, ErrNoContractorAvailable
	}

	recommended, alternatives := split(ranked, domain.DefaultAlternativesNumber)

	uc.logger.Info("AssignContractor: recommended contractor=%d score=%d, alternatives=%d, total=%d",
		recommended.ContractorID, recommended.Score, len(alternatives), len(ranked))

	return &Response{
		Recommended:    recommended,
		Alternatives:   alternatives,
		TotalAvailable: len(ranked),
	}, nil
}

// RankAvailable активные исполнители, свободные в слот query, в порядке убывания балла.
// ContractorID в query игнорируется.
func (uc *UseCase) RankAvailable(ctx context.Context, query domain.SlotQuery, category string, location *domain.GeoPoint) ([]Candidate, error) {
	contractors, err := uc.contractorRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Error("AssignContractor: failed to list contractors: %v", err)
		return nil, fmt.Errorf("%w: failed to list contractors: %v", ErrInternal, err)
	}

	available := make([]*domain.Contractor, 0, len(contractors))
	for _, c := range contractors {
		q := query
		q.ContractorID = c.ID

		verdict, err := uc.resolver.Resolve(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to check contractor %d: %v", ErrInternal, c.ID, err)
		}
		if verdict.IsAvailable() {
			available = append(available, c)
		}
	}

	return Rank(available, category, location, uc.tieBreak), nil
}

func (uc *UseCase) buildQuery(req *Request) (domain.SlotQuery, error) {
	if req.Date.IsZero() {
		return domain.SlotQuery{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}
	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: endTime: %v", ErrInvalidInput, err)
	}
	tr, err := domain.NewTimeRange(start, end)
	if err != nil {
		return domain.SlotQuery{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	loc := uc.defaultLocation
	if req.Timezone != "" {
		if loc, err = time.LoadLocation(req.Timezone); err != nil {
			return domain.SlotQuery{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, req.Timezone)
		}
	}

	return domain.SlotQuery{
		Date:      domain.DateOnly(req.Date),
		TimeRange: tr,
		Location:  loc,
	}, nil
}
