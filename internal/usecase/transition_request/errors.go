package transition_request

import "errors"

var (
	// ErrRequestNotFound возвращается, когда запрос на бронирование не найден
	ErrRequestNotFound = errors.New("transition_request: booking request not found")

	// ErrRequestNotPending возвращается, когда запрос уже принят, отклонен или истек
	ErrRequestNotPending = errors.New("transition_request: booking request is no longer pending")

	// ErrRequestExpired возвращается при попытке принять истекший запрос
	ErrRequestExpired = errors.New("transition_request: booking request has expired")

	// ErrRequestNotExpired возвращается при попытке истечь запрос до expiresAt
	ErrRequestNotExpired = errors.New("transition_request: booking request has not expired yet")

	// ErrBookingNotPending возвращается, когда бронирование уже подтверждено или отменено
	ErrBookingNotPending = errors.New("transition_request: booking is no longer pending")

	// ErrPaymentDeclined возвращается, когда провайдер отклонил списание
	ErrPaymentDeclined = errors.New("transition_request: payment capture declined")

	// ErrPaymentUnavailable возвращается, когда провайдер не ответил на списание
	ErrPaymentUnavailable = errors.New("transition_request: payment provider unavailable")

	// ErrAccessDenied возвращается, когда запрос адресован другому исполнителю
	ErrAccessDenied = errors.New("transition_request: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("transition_request: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("transition_request: internal error")
)
