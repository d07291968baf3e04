package bookingrequest

import "errors"

var (
	// ErrRequestNotFound возвращается, когда запрос на бронирование не найден
	ErrRequestNotFound = errors.New("bookingrequest.repository: booking request not found")

	// ErrStatusMismatch возвращается, когда запрос уже не pending или не прошел проверку срока
	ErrStatusMismatch = errors.New("bookingrequest.repository: booking request status mismatch")

	// ErrDuplicatePending возвращается при второй pending заявке на ту же пару (бронирование, исполнитель)
	ErrDuplicatePending = errors.New("bookingrequest.repository: pending request already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("bookingrequest.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("bookingrequest.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("bookingrequest.repository: failed to scan row")
)
