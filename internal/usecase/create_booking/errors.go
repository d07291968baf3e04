package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrContractorNotFound возвращается, когда выбранный исполнитель не найден или неактивен
	ErrContractorNotFound = errors.New("create_booking: contractor not found")

	// ErrSlotInPast возвращается при попытке забронировать прошедшее время
	ErrSlotInPast = errors.New("create_booking: slot is in the past")

	// ErrTooLateToBook возвращается, когда до начала слота меньше минимального срока
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда ни один исполнитель не свободен в слот
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrContractorBusy возвращается, когда календарь исполнителя заблокирован параллельным бронированием
	ErrContractorBusy = errors.New("create_booking: contractor calendar is busy, retry later")

	// ErrPaymentDeclined возвращается, когда провайдер отклонил авторизацию
	ErrPaymentDeclined = errors.New("create_booking: payment authorization declined")

	// ErrPaymentUnavailable возвращается, когда провайдер не ответил
	ErrPaymentUnavailable = errors.New("create_booking: payment provider unavailable")

	// ErrAccessDenied возвращается, когда бронирование создает не клиент
	ErrAccessDenied = errors.New("create_booking: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidTimezone возвращается при неизвестном часовом поясе
	ErrInvalidTimezone = errors.New("create_booking: unknown timezone")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// SlotUnavailableError слот занят; Verdict - причина для выбранного исполнителя
// (для подбора - причина последнего проверенного кандидата)
type SlotUnavailableError struct {
	Verdict domain.SlotVerdict
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSlotNotAvailable.Error(), e.Verdict)
}

func (e *SlotUnavailableError) Unwrap() error {
	return ErrSlotNotAvailable
}
