package capacity

import "errors"

var (
	// ErrEntryNotFound возвращается, когда запись capacity ledger не найдена
	ErrEntryNotFound = errors.New("capacity.repository: ledger entry not found")

	// ErrEntryFrozen возвращается при попытке изменить замороженную запись
	ErrEntryFrozen = errors.New("capacity.repository: ledger entry is frozen")

	// ErrInsufficientCapacity возвращается, когда списание опустило бы
	// remaining ниже нуля
	ErrInsufficientCapacity = errors.New("capacity.repository: insufficient capacity")

	// ErrWouldExceedTotal возвращается, когда возврат превысил бы исходное
	// количество столиков - признак повреждения ledger
	ErrWouldExceedTotal = errors.New("capacity.repository: release would exceed total quantity")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("capacity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("capacity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("capacity.repository: failed to scan row")
)
