package request_booking

import "errors"

var (
	// ErrVenueNotFound возвращается, когда ресторан не найден
	ErrVenueNotFound = errors.New("request_booking: venue not found")

	// ErrDraftNotFound возвращается, когда черновик не найден или истек
	ErrDraftNotFound = errors.New("request_booking: draft not found")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("request_booking: invalid booking date")

	// ErrInvalidTimeSlot возвращается, когда время не попадает в сетку слотов
	// или выходит за рабочие часы ресторана
	ErrInvalidTimeSlot = errors.New("request_booking: invalid time slot")

	// ErrPolicyViolation возвращается, когда размер компании не помещается за
	// столик или длительность превышает максимум правил ресторана
	ErrPolicyViolation = errors.New("request_booking: policy violation")

	// ErrSlotUnavailable возвращается, когда на слот не осталось столиков.
	// Клиент должен выбрать другой слот - автоматических ретраев и подмен нет
	ErrSlotUnavailable = errors.New("request_booking: slot not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("request_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("request_booking: internal error")
)
