package unavailability

import "errors"

var (
	// ErrPeriodNotFound возвращается, когда период недоступности не найден
	ErrPeriodNotFound = errors.New("unavailability period not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
