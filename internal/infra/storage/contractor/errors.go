package contractor

import "errors"

var (
	// ErrContractorNotFound возвращается, когда исполнитель не найден
	ErrContractorNotFound = errors.New("contractor.repository: contractor not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("contractor.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("contractor.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("contractor.repository: failed to scan row")
)
