package payment

import "errors"

var (
	// ErrDeclined возвращается, когда платежный провайдер явно отклонил операцию (4xx)
	ErrDeclined = errors.New("payment client: operation declined")

	// ErrUnavailable возвращается при таймауте, сетевой ошибке или ответе 5xx
	ErrUnavailable = errors.New("payment client: processor unavailable")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("payment client: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payment client: internal error")
)
