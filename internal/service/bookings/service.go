package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// Service сервис для чтения бронирований и их жизненного цикла после подтверждения
type Service struct {
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
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

// GetByID получает бронирование по ID.
// Доступно клиенту, назначенному исполнителю и администратору.
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, actor.UserID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !actor.CanViewBooking(booking) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetWeeklyPlanning назначенные исполнителю неотмененные бронирования с началом в [weekStart, weekStart+7d)
func (s *Service) GetWeeklyPlanning(ctx context.Context, actor domain.Actor, contractorID int64, weekStart time.Time) (*models.PlanningResponse, error) {
	from := domain.DateOnly(weekStart)
	to := from.AddDate(0, 0, 7)
	s.logger.Info("GetWeeklyPlanning: contractor=%d week=%s by user=%d", contractorID, from.Format(domain.DateFormat), actor.UserID)

	if !actor.CanManageContractor(contractorID) {
		s.logger.Warn("GetWeeklyPlanning: user=%d cannot view planning of contractor=%d", actor.UserID, contractorID)
		return nil, ErrAccessDenied
	}

	bookings, err := s.bookingRepo.ListByContractorInRange(ctx, contractorID, from, to)
	if err != nil {
		s.logger.Error("GetWeeklyPlanning: repository error for contractor=%d: %v", contractorID, err)
		return nil, fmt.Errorf("%w: GetWeeklyPlanning - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetWeeklyPlanning: fetched %d bookings for contractor=%d", len(bookings), contractorID)
	return &models.PlanningResponse{
		ContractorID: contractorID,
		WeekStart:    from.Format(domain.DateFormat),
		WeekEnd:      to.AddDate(0, 0, -1).Format(domain.DateFormat),
		Bookings:     models.FromDomainBookingList(bookings),
	}, nil
}

// AdvanceStatus продвигает подтвержденное бронирование:
// start и complete выполняет назначенный исполнитель, close - администратор после списания оплаты.
func (s *Service) AdvanceStatus(ctx context.Context, actor domain.Actor, id int64, req *models.AdvanceStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("AdvanceStatus: booking id=%d event=%s by user=%d", id, req.Event, actor.UserID)

	// 1. Валидируем событие
	event, err := req.ToDomainEvent()
	if err != nil {
		s.logger.Warn("AdvanceStatus: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Получаем бронирование
	booking, err := s.getBooking(ctx, "AdvanceStatus", id)
	if err != nil {
		return nil, err
	}

	// 3. Проверяем права доступа
	if !canAdvance(actor, booking, event) {
		s.logger.Warn("AdvanceStatus: user=%d role=%s cannot %s booking id=%d", actor.UserID, actor.Role, event, id)
		return nil, ErrAccessDenied
	}

	// 4. Вычисляем следующий статус
	next, err := domain.NextBookingStatus(booking.Status, event)
	if err != nil {
		s.logger.Warn("AdvanceStatus: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if next == domain.StatusCompleted && booking.PaymentStatus != domain.PaymentCaptured {
		s.logger.Warn("AdvanceStatus: booking id=%d payment=%s is not captured", id, booking.PaymentStatus)
		return nil, fmt.Errorf("%w: payment is not captured", ErrInvalidTransition)
	}

	// 5. Условное обновление
	var completedAt *time.Time
	if next == domain.StatusCompletedByContractor {
		now := s.timeProvider.Now().UTC()
		completedAt = &now
	}
	if err := s.bookingRepo.TransitionStatus(ctx, id, booking.Status, next, completedAt); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusMismatch) {
			s.logger.Warn("AdvanceStatus: booking id=%d changed concurrently", id)
			return nil, ErrStatusChanged
		}
		s.logger.Error("AdvanceStatus: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: AdvanceStatus - repository error: %v", ErrInternal, err)
	}

	booking.Status = next
	if completedAt != nil {
		booking.CompletedAt = completedAt
	}

	s.logger.Info("AdvanceStatus: booking id=%d is now %s", id, next)
	return models.FromDomainBooking(booking), nil
}

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// canAdvance проверяет, что актор может применить событие к бронированию
func canAdvance(actor domain.Actor, booking *domain.Booking, event domain.BookingEvent) bool {
	if actor.IsPrivileged() {
		return true
	}
	if event == domain.EventClose {
		return false
	}
	return actor.Role == domain.RoleContractor && booking.ContractorID != nil && *booking.ContractorID == actor.UserID
}
