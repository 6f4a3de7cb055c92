package complete_reservation

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/service/reservations/models"
)

type ReservationService interface {
	Complete(ctx context.Context, id uuid.UUID, userID int64) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
