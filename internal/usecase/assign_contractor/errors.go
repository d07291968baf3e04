package assign_contractor

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("assign_contractor: invalid input data")

	// ErrInvalidTimezone возвращается при неизвестном часовом поясе
	ErrInvalidTimezone = errors.New("assign_contractor: unknown timezone")

	// ErrNoContractorAvailable возвращается, когда ни один исполнитель не свободен в этот слот
	ErrNoContractorAvailable = errors.New("assign_contractor: no contractor available for the slot")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("assign_contractor: internal error")
)
