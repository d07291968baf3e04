package send_reminders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*domain.Booking, error)
	// MarkReminderSent условный UPDATE; false - напоминание уже отмечено
	MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) (bool, error)
}

// Notifier отправка уведомлений
type Notifier interface {
	Notify(ctx context.Context, recipient notifier.Recipient, kind notifier.Kind, payload notifier.Payload)
}

// Metrics счетчик напоминаний
type Metrics interface {
	RecordReminder(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
