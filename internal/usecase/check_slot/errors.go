package check_slot

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("check_slot: invalid input data")

	// ErrInvalidTimezone возвращается при неизвестном часовом поясе
	ErrInvalidTimezone = errors.New("check_slot: unknown timezone")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_slot: internal error")
)
