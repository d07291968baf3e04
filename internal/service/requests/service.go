package requests

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/requests/models"
)

// Service сервис запросов на бронирование, ожидающих ответа
type Service struct {
	requestRepo  RequestRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(requestRepo RequestRepository, bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		requestRepo:  requestRepo,
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестирования)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetPending неистекшие pending запросы исполнителя, ближайшие к истечению первыми
func (s *Service) GetPending(ctx context.Context, actor domain.Actor, contractorID int64) (*models.PendingRequestListResponse, error) {
	s.logger.Info("GetPending: contractor=%d by user=%d", contractorID, actor.UserID)

	if !actor.CanManageContractor(contractorID) {
		s.logger.Warn("GetPending: user=%d cannot view requests of contractor=%d", actor.UserID, contractorID)
		return nil, ErrAccessDenied
	}

	pending, err := s.requestRepo.ListPendingByContractor(ctx, contractorID, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("GetPending: repository error for contractor=%d: %v", contractorID, err)
		return nil, fmt.Errorf("%w: GetPending - repository error: %v", ErrInternal, err)
	}

	resp := &models.PendingRequestListResponse{
		ContractorID: contractorID,
		Requests:     make([]models.PendingRequestResponse, 0, len(pending)),
	}
	for _, req := range pending {
		booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
		if err != nil {
			s.logger.Error("GetPending: failed to load booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: GetPending - load booking: %v", ErrInternal, err)
		}
		resp.Requests = append(resp.Requests, models.FromDomain(req, booking))
	}

	s.logger.Info("GetPending: %d pending requests for contractor=%d", len(resp.Requests), contractorID)
	return resp, nil
}
