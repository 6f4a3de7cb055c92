package get_draft

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/service/drafts/models"
)

type DraftService interface {
	Get(ctx context.Context, id uuid.UUID, userID int64) (*models.DraftResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
