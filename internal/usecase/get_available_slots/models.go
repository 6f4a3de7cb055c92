package get_available_slots

import (
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	VenueID   int64             // ID ресторана
	Date      time.Time         // Дата для получения слотов (без времени)
	TableType *domain.TableType // Фильтр по типу столика (nil = все типы)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	VenueID int64     // ID ресторана
	Date    time.Time // Дата, на которую запрашивались слоты
	Slots   []Slot    // Слоты в порядке времени начала и типа столика
}

// Slot временной слот с доступностью одного типа столика
type Slot struct {
	StartTime types.TimeString // Время начала слота, например "19:00"
	TableType domain.TableType // Тип столика
	Remaining int              // Свободных столиков
	Total     int              // Всего столиков этого типа
}
