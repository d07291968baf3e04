package send_reminders

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// Исходы обработки напоминания для метрик
const (
	outcomeSent        = "sent"
	outcomeQuietHours  = "quiet_hours"
	outcomeAlreadySent = "already_sent"
	outcomeError       = "error"
)

// UseCase напоминания клиентам о подтвержденных бронированиях
type UseCase struct {
	bookingRepo  BookingRepository
	notifier     Notifier
	metrics      Metrics
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	notifier Notifier,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.Lead <= 0 {
		opts.Lead = domain.DefaultReminderLead
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		notifier:     notifier,
		metrics:      metrics,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Sweep отправляет напоминания по подтвержденным бронированиям, начинающимся в ближайшие Lead.
// Отправка отмечается до уведомления: каждое бронирование получает не больше одного напоминания
// даже при нескольких воркерах. В тихие часы бронирование пропускается до следующего прогона.
func (uc *UseCase) Sweep(ctx context.Context, limit int) (int, error) {
	now := uc.timeProvider.Now().UTC()
	if limit <= 0 {
		limit = domain.DefaultSweepBatchSize
	}

	due, err := uc.bookingRepo.ListDueReminders(ctx, now, now.Add(uc.opts.Lead), limit)
	if err != nil {
		uc.logger.Error("SendReminders: failed to list due bookings: %v", err)
		uc.record(outcomeError)
		return 0, fmt.Errorf("%w: failed to list due bookings: %v", ErrInternal, err)
	}

	sent, quiet, failed := 0, 0, 0
	for _, b := range due {
		if uc.opts.Quiet.Contains(b.LocalTime(now)) {
			quiet++
			uc.record(outcomeQuietHours)
			continue
		}

		claimed, err := uc.bookingRepo.MarkReminderSent(ctx, b.ID, now)
		if err != nil {
			failed++
			uc.record(outcomeError)
			uc.logger.Error("SendReminders: failed to mark booking=%d: %v", b.ID, err)
			continue
		}
		if !claimed {
			uc.record(outcomeAlreadySent)
			uc.logger.Debug("SendReminders: booking=%d already reminded, skipped", b.ID)
			continue
		}

		uc.notifier.Notify(ctx, clientRecipient(b), notifier.KindBookingReminder, payloadFor(b))
		uc.record(outcomeSent)
		sent++
	}

	if len(due) > 0 {
		uc.logger.Info("SendReminders: found=%d, sent=%d, quiet=%d, failed=%d", len(due), sent, quiet, failed)
	}
	return sent, nil
}

func (uc *UseCase) record(outcome string) {
	if uc.metrics != nil {
		uc.metrics.RecordReminder(outcome)
	}
}

func clientRecipient(b *domain.Booking) notifier.Recipient {
	return notifier.Recipient{
		UserID: b.ClientID,
		Name:   b.Snapshot.ClientName,
		Email:  b.Snapshot.ClientEmail,
		Phone:  b.Snapshot.ClientPhone,
	}
}

func payloadFor(b *domain.Booking) notifier.Payload {
	return notifier.Payload{
		BookingID:      b.ID,
		ServiceName:    b.Snapshot.ServiceName,
		ScheduledAt:    b.ScheduledAt,
		Timezone:       b.Timezone,
		ClientName:     b.Snapshot.ClientName,
		ContractorName: ptr.Value(b.Snapshot.ContractorName),
		Address:        ptr.Value(b.Snapshot.Address),
	}
}
