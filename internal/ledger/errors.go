package ledger

import "errors"

var (
	// ErrCapacityExceeded возвращается, когда на ключе слота не осталось мест
	ErrCapacityExceeded = errors.New("ledger: capacity exceeded for slot")

	// ErrKeyFrozen возвращается при операции над замороженным ключом
	ErrKeyFrozen = errors.New("ledger: slot key is frozen pending investigation")

	// ErrLedgerCorruption возвращается, когда возврат места превысил бы
	// исходное количество столиков. Ключ замораживается - это баг ledger,
	// а не ошибочный ввод
	ErrLedgerCorruption = errors.New("ledger: corruption detected, release would exceed total")

	// ErrInternal возвращается при внутренних ошибках ledger
	ErrInternal = errors.New("ledger: internal error")
)
