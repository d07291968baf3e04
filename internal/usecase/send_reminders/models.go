package send_reminders

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Options параметры рассылки напоминаний
type Options struct {
	Lead  time.Duration     // за сколько до начала напоминать
	Quiet domain.QuietHours // в часовом поясе бронирования
}
