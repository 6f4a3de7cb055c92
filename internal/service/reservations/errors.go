package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrVenueNotFound возвращается, когда ресторан не найден
	ErrVenueNotFound = errors.New("venue not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusConflict возвращается, когда статус бронирования изменился
	// конкурентно во время операции
	ErrStatusConflict = errors.New("reservation status changed concurrently")

	// ErrHoldExpired возвращается при попытке подтвердить бронирование
	// с истекшим hold
	ErrHoldExpired = errors.New("reservation hold has expired")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("reservation cannot be cancelled")

	// ErrGracePeriodExpired возвращается при попытке check-in после истечения
	// допустимого опоздания
	ErrGracePeriodExpired = errors.New("grace period for check-in has expired")

	// ErrTooEarlyToCheckIn возвращается при попытке check-in задолго до начала брони
	ErrTooEarlyToCheckIn = errors.New("too early to check in")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
