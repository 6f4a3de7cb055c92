package update_venue_policy

import (
	"github.com/tablehub/reservation-service/internal/service/policies/models"
)

// UpdatePolicyRequest HTTP request model, nil-поля не изменяются
type UpdatePolicyRequest struct {
	GracePeriodMinutes     *int     `json:"gracePeriodMinutes,omitempty"`
	PenaltyFee             *float64 `json:"penaltyFee,omitempty"`
	MaxDurationMinutes     *int     `json:"maxDurationMinutes,omitempty"`
	FreeCancelHoursBefore  *int     `json:"freeCancelHoursBefore,omitempty"`
	AutoCancelAfterMinutes *int     `json:"autoCancelAfterMinutes,omitempty"`
	HoldTTLMinutes         *int     `json:"holdTtlMinutes,omitempty"`
	SlotIntervalMinutes    *int     `json:"slotIntervalMinutes,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdatePolicyRequest) ToServiceRequest(userID int64) *models.UpdatePolicyRequest {
	return &models.UpdatePolicyRequest{
		UserID:                 userID,
		GracePeriodMinutes:     r.GracePeriodMinutes,
		PenaltyFee:             r.PenaltyFee,
		MaxDurationMinutes:     r.MaxDurationMinutes,
		FreeCancelHoursBefore:  r.FreeCancelHoursBefore,
		AutoCancelAfterMinutes: r.AutoCancelAfterMinutes,
		HoldTTLMinutes:         r.HoldTTLMinutes,
		SlotIntervalMinutes:    r.SlotIntervalMinutes,
	}
}
