package request_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/types"
)

// Request модель запроса на бронирование столика
// Если указан DraftID, параметры бронирования берутся из черновика визарда
type Request struct {
	CustomerID          int64            // ID клиента
	DraftID             *uuid.UUID       // ID черновика (опционально)
	VenueID             int64            // ID ресторана
	Date                time.Time        // Дата бронирования (без времени)
	StartTime           types.TimeString // Время начала слота, например "19:00"
	TableType           domain.TableType // Тип столика (количество мест)
	PartySize           int              // Размер компании
	DurationMinutes     int              // Длительность, 0 = максимум по правилам
	SpecialInstructions *string          // Пожелания гостя (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              uuid.UUID        // ID бронирования
	VenueID         int64            // ID ресторана
	CustomerID      int64            // ID клиента
	Date            time.Time        // Дата бронирования
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	TableType       domain.TableType // Тип столика
	PartySize       int              // Размер компании
	Status          string           // Статус (held)
	HoldExpiresAt   time.Time        // Дедлайн подтверждения оплаты
	PenaltyFee      float64          // Штраф по снимку правил
	CreatedAt       time.Time        // Время создания
}
