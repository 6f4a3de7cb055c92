package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tablehub/reservation-service/internal/api/handlers"
	"github.com/tablehub/reservation-service/internal/domain"
	getAvailableSlots "github.com/tablehub/reservation-service/internal/usecase/get_available_slots"
)

const (
	msgInvalidVenueID   = "некорректный ID ресторана"
	msgMissingDate      = "отсутствует обязательный параметр date"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTableType = "некорректный тип столика"
	msgVenueNotFound    = "ресторан не найден"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/venues/{venueId}/available-slots?date=YYYY-MM-DD&tableType=4
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	venueID, err := strconv.ParseInt(vars["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /venues/{venueId}/available-slots - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /venues/{venueId}/available-slots - Missing date: venue_id=%d", venueID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /venues/{venueId}/available-slots - Invalid date %q: %v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Фильтр по типу столика (опционально)
	var tableType *domain.TableType
	if raw := r.URL.Query().Get("tableType"); raw != "" {
		seats, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /venues/{venueId}/available-slots - Invalid table type %q: %v", raw, err)
			handlers.RespondBadRequest(w, msgInvalidTableType)
			return
		}
		tt := domain.TableType(seats)
		tableType = &tt
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		VenueID:   venueID,
		Date:      date,
		TableType: tableType,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrVenueNotFound):
			h.logger.Warn("GET /venues/{venueId}/available-slots - Venue not found: venue_id=%d", venueID)
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, getAvailableSlots.ErrUnknownTableType):
			h.logger.Warn("GET /venues/{venueId}/available-slots - Unknown table type: venue_id=%d", venueID)
			handlers.RespondBadRequest(w, msgInvalidTableType)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate), errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /venues/{venueId}/available-slots - Invalid request: venue_id=%d, error=%v", venueID, err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("GET /venues/{venueId}/available-slots - Failed to get slots: venue_id=%d, error=%v", venueID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /venues/{venueId}/available-slots - Slots retrieved successfully: venue_id=%d, date=%s, count=%d",
		venueID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
