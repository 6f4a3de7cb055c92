package create_draft

import (
	"errors"
	"net/http"

	"github.com/tablehub/reservation-service/internal/api/handlers"
	"github.com/tablehub/reservation-service/internal/api/middleware"
	"github.com/tablehub/reservation-service/internal/service/drafts"
	"github.com/tablehub/reservation-service/internal/service/drafts/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgVenueNotFound      = "ресторан не найден"
	msgInvalidDraftData   = "некорректные данные черновика"
)

type Handler struct {
	service DraftService
	logger  Logger
}

func NewHandler(service DraftService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/drafts
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /drafts - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /drafts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.CustomerID = customerID

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, drafts.ErrVenueNotFound):
			h.logger.Warn("POST /drafts - Venue not found: venue_id=%d", req.VenueID)
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, drafts.ErrInvalidInput):
			h.logger.Warn("POST /drafts - Invalid draft data: customer_id=%d, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidDraftData)

		default:
			h.logger.Error("POST /drafts - Failed to create draft: customer_id=%d, error=%v", customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /drafts - Draft created successfully: draft_id=%s, customer_id=%d", result.ID, customerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
