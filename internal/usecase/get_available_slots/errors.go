package get_available_slots

import "errors"

var (
	// ErrVenueNotFound возвращается, когда ресторан не найден
	ErrVenueNotFound = errors.New("get_available_slots: venue not found")

	// ErrInvalidDate возвращается при дате в прошлом или некорректной дате
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrUnknownTableType возвращается при неизвестном типе столика
	ErrUnknownTableType = errors.New("get_available_slots: unknown table type")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
