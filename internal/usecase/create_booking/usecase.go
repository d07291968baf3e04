package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/lock"
	contractorRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/contractor"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// Options параметры бронирования из конфигурации
type Options struct {
	RequestTTL      time.Duration  // Время жизни запроса исполнителю
	MinNotice       time.Duration  // Минимальный срок до начала слота
	DefaultLocation *time.Location // Часовой пояс для запросов без timezone
}

// candidate исполнитель, которому будет отправлен запрос
type candidate struct {
	ID    int64
	Name  string
	Email string
	Phone *string
}

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo    BookingRepository
	requestRepo    RequestRepository
	contractorRepo ContractorRepository
	resolver       SlotResolver
	ranker         ContractorRanker
	paymentClient  PaymentClient
	locker         Locker
	notifier       Notifier
	txManager      TransactionManager
	opts           Options
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	requestRepo RequestRepository,
	contractorRepo ContractorRepository,
	resolver SlotResolver,
	ranker ContractorRanker,
	paymentClient PaymentClient,
	locker Locker,
	notifier Notifier,
	txManager TransactionManager,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.RequestTTL <= 0 {
		opts.RequestTTL = domain.DefaultRequestTTL
	}
	if opts.DefaultLocation == nil {
		opts.DefaultLocation = time.UTC
	}
	return &UseCase{
		bookingRepo:    bookingRepo,
		requestRepo:    requestRepo,
		contractorRepo: contractorRepo,
		resolver:       resolver,
		ranker:         ranker,
		paymentClient:  paymentClient,
		locker:         locker,
		notifier:       notifier,
		txManager:      txManager,
		opts:           opts,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования.
// Сумма холдируется до записи в БД; если запись не удалась, авторизация отменяется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, service=%d, date=%s, time=%s, duration=%d",
		req.Actor.UserID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	// 1. Валидация входных данных
	query, err := validateRequest(req, uc.opts.DefaultLocation)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().UTC()
	interval := query.Interval()
	if err := validateNotice(interval.Start, now, uc.opts.MinNotice); err != nil {
		uc.logger.Warn("CreateBooking: notice validation failed: %v", err)
		return nil, err
	}

	// 2. Кандидаты: выбранный исполнитель или подбор по баллу
	candidates, err := uc.pickCandidates(ctx, req, query)
	if err != nil {
		return nil, err
	}

	// 3. Холдирование суммы
	intent, err := uc.authorize(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Запись бронирования и запросов под блокировкой календарей кандидатов
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	var (
		booking  *domain.Booking
		requests []*domain.BookingRequest
		offered  []candidate
	)
	err = uc.locker.WithContractorsLock(ctx, ids, func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			booking, requests, offered = nil, nil, nil

			available, err := uc.recheck(txCtx, query, candidates)
			if err != nil {
				return err
			}

			created, err := uc.bookingRepo.Create(txCtx, uc.newBooking(req, interval, intent))
			if err != nil {
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}
			booking = created

			for _, c := range available {
				br, err := domain.NewBookingRequest(booking.ID, c.ID, now, uc.opts.RequestTTL)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrInternal, err)
				}
				savedReq, err := uc.requestRepo.Create(txCtx, br)
				if err != nil {
					return fmt.Errorf("%w: failed to create request for contractor %d: %v", ErrInternal, c.ID, err)
				}
				requests = append(requests, savedReq)
				offered = append(offered, c)
			}
			return nil
		})
	})

	// 5. Компенсация: снимаем холд
	if err != nil {
		uc.releaseAuthorization(ctx, intent.ID)
		switch {
		case errors.Is(err, ErrSlotNotAvailable):
			uc.logger.Warn("CreateBooking: %v", err)
			return nil, err
		case errors.Is(err, lock.ErrLockNotAcquired):
			uc.logger.Warn("CreateBooking: contractor calendar is busy: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrContractorBusy, err)
		case errors.Is(err, ErrInternal):
			uc.logger.Error("CreateBooking: %v", err)
			return nil, err
		default:
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d with %d request(s)", booking.ID, len(requests))

	// 6. Уведомления исполнителям
	for i, c := range offered {
		uc.notifier.Notify(ctx, notifier.Recipient{
			UserID: c.ID,
			Name:   c.Name,
			Email:  c.Email,
			Phone:  c.Phone,
		}, notifier.KindRequestCreated, notifier.Payload{
			BookingID:      booking.ID,
			RequestID:      requests[i].ID,
			ServiceName:    booking.Snapshot.ServiceName,
			ScheduledAt:    booking.ScheduledAt,
			Timezone:       booking.Timezone,
			ClientName:     booking.Snapshot.ClientName,
			ContractorName: c.Name,
			Address:        ptr.Value(booking.Snapshot.Address),
			ExpiresAt:      requests[i].ExpiresAt,
		})
	}

	return toResponse(booking, requests), nil
}

// pickCandidates выбранный исполнитель или лучший по баллу с альтернативами
func (uc *UseCase) pickCandidates(ctx context.Context, req *Request, query domain.SlotQuery) ([]candidate, error) {
	if req.ContractorID != nil {
		c, err := uc.contractorRepo.GetByID(ctx, *req.ContractorID)
		if err != nil {
			if errors.Is(err, contractorRepo.ErrContractorNotFound) {
				uc.logger.Warn("CreateBooking: contractor id=%d not found", *req.ContractorID)
				return nil, ErrContractorNotFound
			}
			uc.logger.Error("CreateBooking: failed to get contractor id=%d: %v", *req.ContractorID, err)
			return nil, fmt.Errorf("%w: failed to get contractor: %v", ErrInternal, err)
		}
		if !c.IsActive {
			uc.logger.Warn("CreateBooking: contractor id=%d is inactive", c.ID)
			return nil, ErrContractorNotFound
		}
		return []candidate{{ID: c.ID, Name: c.FullName, Email: c.Email, Phone: c.Phone}}, nil
	}

	ranked, err := uc.ranker.RankAvailable(ctx, query, req.ServiceCategory, req.Location)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to rank contractors: %v", err)
		return nil, fmt.Errorf("%w: failed to rank contractors: %v", ErrInternal, err)
	}
	if len(ranked) == 0 {
		uc.logger.Warn("CreateBooking: no contractor available for the slot")
		return nil, &SlotUnavailableError{Verdict: domain.SlotVerdict{Reason: domain.SlotNotInSchedule}}
	}
	if len(ranked) > domain.DefaultAlternativesNumber+1 {
		ranked = ranked[:domain.DefaultAlternativesNumber+1]
	}

	out := make([]candidate, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, candidate{ID: r.ContractorID, Name: r.FullName, Email: r.Email, Phone: r.Phone})
	}
	return out, nil
}

// recheck повторная проверка слота под блокировкой
func (uc *UseCase) recheck(ctx context.Context, query domain.SlotQuery, candidates []candidate) ([]candidate, error) {
	available := make([]candidate, 0, len(candidates))
	var last domain.SlotVerdict
	for _, c := range candidates {
		q := query
		q.ContractorID = c.ID

		verdict, err := uc.resolver.Resolve(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to check contractor %d: %v", ErrInternal, c.ID, err)
		}
		if verdict.IsAvailable() {
			available = append(available, c)
			continue
		}
		uc.logger.Info("CreateBooking: contractor=%d is %s", c.ID, verdict)
		last = verdict
	}

	if len(available) == 0 {
		return nil, &SlotUnavailableError{Verdict: last}
	}
	return available, nil
}

// releaseAuthorization отмена холда; ошибка только логируется, бронирование не создано
func (uc *UseCase) releaseAuthorization(ctx context.Context, intentID string) {
	if err := uc.paymentClient.CancelAuthorization(ctx, intentID, "cancel-authorization-"+intentID); err != nil {
		uc.logger.Error("CreateBooking: failed to cancel authorization %s: %v", intentID, err)
	}
}

func (uc *UseCase) authorize(ctx context.Context, req *Request) (*payment.Intent, error) {
	intent, err := uc.paymentClient.Authorize(ctx, payment.AuthorizeParams{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Customer:       req.PaymentCustomer,
		PaymentMethod:  req.PaymentMethod,
		Description:    req.ServiceName,
		IdempotencyKey: payment.NewIdempotencyKey("authorize"),
	})
	if err != nil {
		if payment.IsDeclined(err) {
			uc.logger.Warn("CreateBooking: authorization declined for client=%d: %v", req.Actor.UserID, err)
			return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
		}
		uc.logger.Error("CreateBooking: authorization failed for client=%d: %v", req.Actor.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	return intent, nil
}

func (uc *UseCase) newBooking(req *Request, interval domain.Interval, intent *payment.Intent) *domain.Booking {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &domain.Booking{
		ClientID:        req.Actor.UserID,
		ServiceID:       req.ServiceID,
		ScheduledAt:     interval.Start,
		Timezone:        locationName(req.Timezone, uc.opts.DefaultLocation),
		DurationMinutes: req.DurationMinutes,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentAuthorized,
		ServiceAmount:   req.Amount,
		Currency:        currency,
		PaymentIntentID: ptr.Ptr(intent.ID),
		Snapshot: domain.BookingSnapshot{
			ClientName:      req.ClientName,
			ClientEmail:     req.ClientEmail,
			ClientPhone:     req.ClientPhone,
			ServiceName:     req.ServiceName,
			ServiceCategory: req.ServiceCategory,
			Address:         req.Address,
		},
		Notes: req.Notes,
	}
}

func locationName(tz string, defaultLocation *time.Location) string {
	if tz != "" {
		return tz
	}
	return defaultLocation.String()
}

func toResponse(b *domain.Booking, requests []*domain.BookingRequest) *Response {
	resp := &Response{
		ID:              b.ID,
		ClientID:        b.ClientID,
		ServiceID:       b.ServiceID,
		ScheduledAt:     b.ScheduledAt,
		Timezone:        b.Timezone,
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		ServiceAmount:   b.ServiceAmount,
		Currency:        b.Currency,
		ServiceName:     b.Snapshot.ServiceName,
		Notes:           b.Notes,
		Requests:        make([]RequestSummary, 0, len(requests)),
		CreatedAt:       b.CreatedAt,
	}
	for _, r := range requests {
		resp.Requests = append(resp.Requests, RequestSummary{
			ID:           r.ID,
			ContractorID: r.ContractorID,
			ExpiresAt:    r.ExpiresAt,
		})
	}
	return resp
}
