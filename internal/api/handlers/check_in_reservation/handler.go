package check_in_reservation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tablehub/reservation-service/internal/api/handlers"
	"github.com/tablehub/reservation-service/internal/api/middleware"
	"github.com/tablehub/reservation-service/internal/service/reservations"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgInvalidTransition    = "check-in невозможен в текущем статусе бронирования"
	msgTooEarly             = "слишком рано для check-in"
	msgGraceExpired         = "допустимое время опоздания истекло"
	msgStatusConflict       = "статус бронирования изменился, повторите запрос"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/check-in
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	reservationID, err := uuid.Parse(vars["reservationId"])
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/check-in - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations/{id}/check-in - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.CheckIn(r.Context(), reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/check-in - Not found: reservation_id=%s", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("POST /reservations/{id}/check-in - Access denied: reservation_id=%s, user_id=%d",
				reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrTooEarlyToCheckIn):
			h.logger.Warn("POST /reservations/{id}/check-in - Too early: reservation_id=%s", reservationID)
			handlers.RespondConflict(w, msgTooEarly)

		case errors.Is(err, reservations.ErrGracePeriodExpired):
			h.logger.Warn("POST /reservations/{id}/check-in - Grace period expired: reservation_id=%s", reservationID)
			handlers.RespondConflict(w, msgGraceExpired)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("POST /reservations/{id}/check-in - Invalid transition: reservation_id=%s", reservationID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, reservations.ErrStatusConflict):
			h.logger.Warn("POST /reservations/{id}/check-in - Status conflict: reservation_id=%s", reservationID)
			handlers.RespondConflict(w, msgStatusConflict)

		default:
			h.logger.Error("POST /reservations/{id}/check-in - Failed to check in: reservation_id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/check-in - Checked in successfully: reservation_id=%s, user_id=%d",
		reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
