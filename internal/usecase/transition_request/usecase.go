package transition_request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/bookingrequest"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// Исходы переходов для метрик
const (
	outcomeOK           = "ok"
	outcomeLostRace     = "lost_race"
	outcomeExpired      = "expired"
	outcomePaymentError = "payment_error"
	outcomeRejected     = "rejected"
	outcomeError        = "error"
)

// UseCase переходы запроса на бронирование: принятие, отказ, истечение
type UseCase struct {
	bookingRepo    BookingRepository
	requestRepo    RequestRepository
	contractorRepo ContractorRepository
	paymentClient  PaymentClient
	notifier       Notifier
	txManager      TransactionManager
	metrics        Metrics
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	requestRepo RequestRepository,
	contractorRepo ContractorRepository,
	paymentClient PaymentClient,
	notifier Notifier,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		requestRepo:    requestRepo,
		contractorRepo: contractorRepo,
		paymentClient:  paymentClient,
		notifier:       notifier,
		txManager:      txManager,
		metrics:        metrics,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Accept исполнитель принимает запрос.
// Блокировка бронирования, условный переход, списание, подтверждение и истечение
// остальных запросов выполняются в одной транзакции. Ошибка списания откатывает все шаги.
func (uc *UseCase) Accept(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AcceptRequest: request=%d, actor=%d", req.RequestID, req.Actor.UserID)

	// 1. Валидация входных данных
	if err := validateMessage(req.Message); err != nil {
		uc.logger.Warn("AcceptRequest: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().UTC()

	// 2. Запрос и права исполнителя
	br, err := uc.load(ctx, "AcceptRequest", req)
	if err != nil {
		return nil, err
	}

	// 3. Проверка перехода по текущему состоянию
	if _, err := br.Transition(domain.ActionAccept, now); err != nil {
		return nil, uc.rejectAccept(ctx, br, now, err)
	}

	contractor, err := uc.contractorRepo.GetByID(ctx, br.ContractorID)
	if err != nil {
		uc.logger.Error("AcceptRequest: failed to get contractor id=%d: %v", br.ContractorID, err)
		uc.record(domain.ActionAccept, outcomeError)
		return nil, fmt.Errorf("%w: failed to get contractor: %v", ErrInternal, err)
	}

	// 4. Транзакция принятия
	var (
		booking  *domain.Booking
		accepted *domain.BookingRequest
		captured bool
	)
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		captured = false

		// 4.1. Блокировка бронирования
		b, err := uc.bookingRepo.LockByID(txCtx, br.BookingID)
		if err != nil {
			return fmt.Errorf("%w: failed to lock booking id=%d: %v", ErrInternal, br.BookingID, err)
		}
		if b.Status != domain.StatusPending {
			return fmt.Errorf("%w: booking id=%d status=%s", ErrBookingNotPending, b.ID, b.Status)
		}
		if b.PaymentIntentID == nil {
			return fmt.Errorf("%w: booking id=%d has no payment authorization", ErrInternal, b.ID)
		}

		// 4.2. Условный переход pending -> accepted
		updated, err := uc.requestRepo.Transition(txCtx, bookingrequest.TransitionParams{
			ID:                br.ID,
			To:                domain.RequestAccepted,
			Now:               now,
			ContractorMessage: req.Message,
		})
		if err != nil {
			return mapTransitionError(updated, now, err)
		}

		// 4.3. Списание захолдированной суммы
		if _, err := uc.paymentClient.Capture(txCtx, *b.PaymentIntentID, b.ServiceAmount, captureKey(br.ID)); err != nil {
			return mapPaymentError(err)
		}
		captured = true

		// 4.4. Подтверждение бронирования
		if err := uc.bookingRepo.Confirm(txCtx, b.ID, br.ContractorID, contractor.FullName); err != nil {
			return fmt.Errorf("%w: failed to confirm booking id=%d: %v", ErrInternal, b.ID, err)
		}

		// 4.5. Остальные запросы больше не актуальны
		superseded, err := uc.requestRepo.ExpireSiblings(txCtx, b.ID, br.ID, now, domain.ReasonSuperseded)
		if err != nil {
			return fmt.Errorf("%w: failed to expire sibling requests: %v", ErrInternal, err)
		}
		if superseded > 0 {
			uc.logger.Info("AcceptRequest: booking=%d, %d sibling request(s) superseded", b.ID, superseded)
		}

		b.Status = domain.StatusConfirmed
		b.PaymentStatus = domain.PaymentCaptured
		b.ContractorID = ptr.Ptr(br.ContractorID)
		b.Snapshot.ContractorName = ptr.Ptr(contractor.FullName)
		booking, accepted = b, updated
		return nil
	})
	if err != nil {
		if captured {
			uc.logger.Error("AcceptRequest: payment for booking=%d captured but not recorded: %v", br.BookingID, err)
			uc.recordReconciliation("capture_not_recorded")
		}
		if errors.Is(err, ErrRequestExpired) {
			uc.expireQuietly(ctx, br, now)
		}
		return nil, uc.fail(domain.ActionAccept, "AcceptRequest", br.ID, err)
	}

	uc.record(domain.ActionAccept, outcomeOK)
	uc.logger.Info("AcceptRequest: request=%d accepted, booking=%d confirmed for contractor=%d",
		accepted.ID, booking.ID, br.ContractorID)

	// 5. Уведомления после коммита
	uc.notifier.Notify(ctx, contractorRecipient(contractor), notifier.KindRequestAccepted, payloadFor(booking, accepted, req.Message))
	uc.notifier.Notify(ctx, clientRecipient(booking), notifier.KindBookingConfirmed, payloadFor(booking, accepted, req.Message))

	return toResponse(accepted, booking), nil
}

// Refuse исполнитель отказывается от запроса.
// Если других pending запросов у бронирования нет, бронирование отменяется и холд снимается.
func (uc *UseCase) Refuse(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RefuseRequest: request=%d, actor=%d", req.RequestID, req.Actor.UserID)

	// 1. Валидация входных данных
	if err := validateReason(req.Reason); err != nil {
		uc.logger.Warn("RefuseRequest: validation failed: %v", err)
		return nil, err
	}
	if err := validateMessage(req.Message); err != nil {
		uc.logger.Warn("RefuseRequest: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().UTC()

	// 2. Запрос и права исполнителя
	br, err := uc.load(ctx, "RefuseRequest", req)
	if err != nil {
		return nil, err
	}

	// 3. Проверка перехода по текущему состоянию
	if _, err := br.Transition(domain.ActionRefuse, now); err != nil {
		uc.record(domain.ActionRefuse, outcomeLostRace)
		uc.logger.Warn("RefuseRequest: request=%d rejected: %v", br.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrRequestNotPending, err)
	}

	// 4. Переход и отмена бронирования
	return uc.terminate(ctx, br, domain.ActionRefuse, now, req.Reason, req.Message)
}

// Expire истечение запроса системой (expiry sweep или истечение при чтении)
func (uc *UseCase) Expire(ctx context.Context, requestID int64) (*Response, error) {
	now := uc.timeProvider.Now().UTC()

	br, err := uc.load(ctx, "ExpireRequest", &Request{Actor: domain.SystemActor(), RequestID: requestID})
	if err != nil {
		return nil, err
	}

	if _, err := br.Transition(domain.ActionExpire, now); err != nil {
		if errors.Is(err, domain.ErrRequestNotExpired) {
			return nil, fmt.Errorf("%w: %v", ErrRequestNotExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRequestNotPending, err)
	}

	return uc.terminate(ctx, br, domain.ActionExpire, now, nil, nil)
}

// Sweep истекает до limit просроченных pending запросов.
// Запросы, уже переведенные параллельным действием, пропускаются. Возвращает число истекших.
func (uc *UseCase) Sweep(ctx context.Context, limit int) (int, error) {
	now := uc.timeProvider.Now().UTC()
	if limit <= 0 {
		limit = domain.DefaultSweepBatchSize
	}

	due, err := uc.requestRepo.FindExpiredPending(ctx, now, limit)
	if err != nil {
		uc.logger.Error("Sweep: failed to find expired requests: %v", err)
		uc.recordSweep("error", 0)
		return 0, fmt.Errorf("%w: failed to find expired requests: %v", ErrInternal, err)
	}

	expired, failed := 0, 0
	for _, br := range due {
		_, err := uc.terminate(ctx, br, domain.ActionExpire, now, nil, nil)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, ErrRequestNotPending):
			uc.logger.Info("Sweep: request=%d already transitioned, skipped", br.ID)
		default:
			failed++
			uc.logger.Error("Sweep: failed to expire request=%d: %v", br.ID, err)
		}
	}

	result := "ok"
	if failed > 0 {
		result = "partial"
	}
	uc.recordSweep(result, expired)

	if len(due) > 0 {
		uc.logger.Info("Sweep: found=%d, expired=%d, failed=%d", len(due), expired, failed)
	}
	return expired, nil
}

// terminate переход в refused/expired в одной транзакции с отменой бронирования,
// затем снятие холда и уведомление клиента
func (uc *UseCase) terminate(
	ctx context.Context,
	br *domain.BookingRequest,
	action domain.RequestAction,
	now time.Time,
	reason, message *string,
) (*Response, error) {
	op, to, cancelReason := "RefuseRequest", domain.RequestRefused, domain.ReasonRefused
	if action == domain.ActionExpire {
		op, to, cancelReason = "ExpireRequest", domain.RequestExpired, domain.ReasonExpired
		reason = ptr.Ptr(domain.ReasonExpired)
	}

	var (
		booking   *domain.Booking
		updated   *domain.BookingRequest
		cancelled bool
	)
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		cancelled = false

		// 1. Блокировка бронирования
		b, err := uc.bookingRepo.LockByID(txCtx, br.BookingID)
		if err != nil {
			return fmt.Errorf("%w: failed to lock booking id=%d: %v", ErrInternal, br.BookingID, err)
		}

		// 2. Условный переход из pending
		res, err := uc.requestRepo.Transition(txCtx, bookingrequest.TransitionParams{
			ID:                br.ID,
			To:                to,
			Now:               now,
			RefusalReason:     reason,
			ContractorMessage: message,
		})
		if err != nil {
			return mapTransitionError(res, now, err)
		}

		// 3. Последний pending запрос: бронирование отменяется
		remaining, err := uc.requestRepo.CountPendingByBooking(txCtx, b.ID, br.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to count pending requests: %v", ErrInternal, err)
		}
		if remaining == 0 && b.Status == domain.StatusPending {
			if err := uc.bookingRepo.Cancel(txCtx, b.ID, domain.StatusPending, cancelReason, now); err != nil {
				return fmt.Errorf("%w: failed to cancel booking id=%d: %v", ErrInternal, b.ID, err)
			}
			b.Status = domain.StatusCancelled
			b.CancellationReason = ptr.Ptr(cancelReason)
			b.CancelledAt = ptr.Ptr(now)
			cancelled = true
		}

		booking, updated = b, res
		return nil
	})
	if err != nil {
		return nil, uc.fail(action, op, br.ID, err)
	}

	uc.record(action, outcomeOK)
	uc.logger.Info("%s: request=%d is %s, booking=%d status=%s", op, updated.ID, updated.Status, booking.ID, booking.Status)

	if cancelled {
		// 4. Снятие холда после коммита
		uc.releasePayment(ctx, op, booking, action)

		// 5. Уведомление клиента
		kind := notifier.KindRequestRefused
		if action == domain.ActionExpire {
			kind = notifier.KindRequestExpired
		}
		payload := payloadFor(booking, updated, message)
		payload.Reason = ptr.Value(reason)
		uc.notifier.Notify(ctx, clientRecipient(booking), kind, payload)
	}

	return toResponse(updated, booking), nil
}

// releasePayment отменяет авторизацию отмененного бронирования.
// Ошибка провайдера не откатывает отмену: бронирование помечается для ручной сверки.
func (uc *UseCase) releasePayment(ctx context.Context, op string, b *domain.Booking, action domain.RequestAction) {
	if b.PaymentIntentID == nil || b.PaymentStatus != domain.PaymentAuthorized {
		return
	}

	if err := uc.paymentClient.CancelAuthorization(ctx, *b.PaymentIntentID, cancelKey(b.ID)); err != nil {
		uc.logger.Error("%s: failed to cancel authorization %s for booking=%d, reconciliation required: %v",
			op, *b.PaymentIntentID, b.ID, err)
		uc.recordReconciliation(string(action))
		b.PaymentReconciliationRequired = true
		if err := uc.bookingRepo.UpdatePaymentStatus(ctx, b.ID, domain.PaymentAuthorized, true); err != nil {
			uc.logger.Error("%s: failed to flag booking=%d for reconciliation: %v", op, b.ID, err)
		}
		return
	}

	b.PaymentStatus = domain.PaymentCancelled
	if err := uc.bookingRepo.UpdatePaymentStatus(ctx, b.ID, domain.PaymentCancelled, false); err != nil {
		uc.logger.Error("%s: authorization cancelled but booking=%d payment status not updated: %v", op, b.ID, err)
	}
}

// load получает запрос и проверяет, что действующий исполнитель - адресат запроса
func (uc *UseCase) load(ctx context.Context, op string, req *Request) (*domain.BookingRequest, error) {
	if req.RequestID <= 0 {
		return nil, fmt.Errorf("%w: requestId must be positive", ErrInvalidInput)
	}

	br, err := uc.requestRepo.GetByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, bookingrequest.ErrRequestNotFound) {
			uc.logger.Warn("%s: request id=%d not found", op, req.RequestID)
			return nil, ErrRequestNotFound
		}
		uc.logger.Error("%s: failed to get request id=%d: %v", op, req.RequestID, err)
		return nil, fmt.Errorf("%w: failed to get request: %v", ErrInternal, err)
	}

	if !req.Actor.CanManageContractor(br.ContractorID) {
		uc.logger.Warn("%s: actor=%d role=%s cannot act on request=%d of contractor=%d",
			op, req.Actor.UserID, req.Actor.Role, br.ID, br.ContractorID)
		return nil, ErrAccessDenied
	}
	return br, nil
}

// rejectAccept причина отказа в принятии; истекший pending запрос переводится в expired
func (uc *UseCase) rejectAccept(ctx context.Context, br *domain.BookingRequest, now time.Time, err error) error {
	if errors.Is(err, domain.ErrRequestExpired) {
		uc.logger.Warn("AcceptRequest: request=%d expired at %s", br.ID, br.ExpiresAt.Format(time.RFC3339))
		uc.record(domain.ActionAccept, outcomeExpired)
		uc.expireQuietly(ctx, br, now)
		return fmt.Errorf("%w: %v", ErrRequestExpired, err)
	}

	uc.logger.Warn("AcceptRequest: request=%d rejected: %v", br.ID, err)
	uc.record(domain.ActionAccept, outcomeLostRace)
	return fmt.Errorf("%w: %v", ErrRequestNotPending, err)
}

// expireQuietly истечение при чтении; проигранная гонка не является ошибкой
func (uc *UseCase) expireQuietly(ctx context.Context, br *domain.BookingRequest, now time.Time) {
	if _, err := uc.terminate(ctx, br, domain.ActionExpire, now, nil, nil); err != nil && !errors.Is(err, ErrRequestNotPending) {
		uc.logger.Error("AcceptRequest: failed to expire request=%d: %v", br.ID, err)
	}
}

// fail логирует ошибку перехода и записывает исход
func (uc *UseCase) fail(action domain.RequestAction, op string, requestID int64, err error) error {
	switch {
	case errors.Is(err, ErrRequestNotPending), errors.Is(err, ErrBookingNotPending):
		uc.logger.Warn("%s: request=%d lost race: %v", op, requestID, err)
		uc.record(action, outcomeLostRace)
	case errors.Is(err, ErrRequestExpired):
		uc.logger.Warn("%s: request=%d expired: %v", op, requestID, err)
		uc.record(action, outcomeExpired)
	case errors.Is(err, ErrPaymentDeclined), errors.Is(err, ErrPaymentUnavailable):
		uc.logger.Warn("%s: request=%d payment failed, transition rolled back: %v", op, requestID, err)
		uc.record(action, outcomePaymentError)
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrRequestNotExpired):
		uc.logger.Warn("%s: request=%d rejected: %v", op, requestID, err)
		uc.record(action, outcomeRejected)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("%s: request=%d: %v", op, requestID, err)
		uc.record(action, outcomeError)
	default:
		uc.logger.Error("%s: request=%d transaction failed: %v", op, requestID, err)
		uc.record(action, outcomeError)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return err
}

func (uc *UseCase) record(action domain.RequestAction, outcome string) {
	if uc.metrics != nil {
		uc.metrics.RecordTransition(string(action), outcome)
	}
}

func (uc *UseCase) recordReconciliation(reason string) {
	if uc.metrics != nil {
		uc.metrics.RecordReconciliation(reason)
	}
}

func (uc *UseCase) recordSweep(result string, expired int) {
	if uc.metrics != nil {
		uc.metrics.RecordSweep(result, expired)
	}
}

// mapTransitionError ошибка условного перехода репозитория в ошибку use case
func mapTransitionError(current *domain.BookingRequest, now time.Time, err error) error {
	switch {
	case errors.Is(err, bookingrequest.ErrRequestNotFound):
		return ErrRequestNotFound
	case errors.Is(err, bookingrequest.ErrStatusMismatch):
		if current != nil && current.Status == domain.RequestPending {
			if current.IsExpiredAt(now) {
				return fmt.Errorf("%w: expired at %s", ErrRequestExpired, current.ExpiresAt.Format(time.RFC3339))
			}
			return fmt.Errorf("%w: expires at %s", ErrRequestNotExpired, current.ExpiresAt.Format(time.RFC3339))
		}
		return fmt.Errorf("%w: %v", ErrRequestNotPending, err)
	default:
		return fmt.Errorf("%w: failed to transition request: %v", ErrInternal, err)
	}
}

func mapPaymentError(err error) error {
	if payment.IsDeclined(err) {
		return fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}
	return fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
}

func captureKey(requestID int64) string {
	return fmt.Sprintf("capture-request-%d", requestID)
}

func cancelKey(bookingID int64) string {
	return fmt.Sprintf("cancel-booking-%d", bookingID)
}
