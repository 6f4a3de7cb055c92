package request_booking

import (
	"errors"
	"net/http"

	"github.com/tablehub/reservation-service/internal/api/handlers"
	"github.com/tablehub/reservation-service/internal/api/middleware"
	requestBooking "github.com/tablehub/reservation-service/internal/usecase/request_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgVenueNotFound      = "ресторан не найден"
	msgDraftNotFound      = "черновик бронирования не найден или истек"
	msgInvalidDate        = "некорректная дата бронирования"
	msgInvalidTimeSlot    = "время не попадает в сетку слотов ресторана"
	msgPolicyViolation    = "запрос нарушает правила бронирования ресторана"
	msgSlotUnavailable    = "на выбранный слот не осталось столиков"
)

type Handler struct {
	useCase RequestBookingUseCase
	logger  Logger
}

func NewHandler(useCase RequestBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RequestBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, requestBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /reservations - Slot unavailable: customer_id=%d, venue_id=%d", customerID, req.VenueID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, requestBooking.ErrVenueNotFound):
			h.logger.Warn("POST /reservations - Venue not found: venue_id=%d", req.VenueID)
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, requestBooking.ErrDraftNotFound):
			h.logger.Warn("POST /reservations - Draft not found: customer_id=%d", customerID)
			handlers.RespondNotFound(w, msgDraftNotFound)

		case errors.Is(err, requestBooking.ErrInvalidDate):
			h.logger.Warn("POST /reservations - Invalid date: customer_id=%d, venue_id=%d", customerID, req.VenueID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, requestBooking.ErrInvalidTimeSlot):
			h.logger.Warn("POST /reservations - Invalid time slot: customer_id=%d, venue_id=%d", customerID, req.VenueID)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, requestBooking.ErrPolicyViolation):
			h.logger.Warn("POST /reservations - Policy violation: customer_id=%d, venue_id=%d", customerID, req.VenueID)
			handlers.RespondBadRequest(w, msgPolicyViolation)

		case errors.Is(err, requestBooking.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: customer_id=%d, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: customer_id=%d, venue_id=%d, error=%v",
				customerID, req.VenueID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%s, customer_id=%d, venue_id=%d",
		result.ID, customerID, result.VenueID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
