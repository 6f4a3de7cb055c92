package get_venue_reservations

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(
	venueID int64,
	userID int64,
	statusStr string,
	dateStr string,
	tableTypeStr string,
	includeInactiveStr string,
) (*models.GetVenueReservationsRequest, error) {
	req := &models.GetVenueReservationsRequest{
		UserID:          userID,
		VenueID:         venueID,
		IncludeInactive: false, // По умолчанию только активные
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
		req.EndDate = &date
	}

	if tableTypeStr != "" {
		tableType, err := strconv.Atoi(tableTypeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid tableType value: %w", err)
		}
		req.TableType = &tableType
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
