package models

import (
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
)

// Request модели

// UpdatePolicyRequest запрос на обновление правил бронирования
// nil-поля не изменяются
type UpdatePolicyRequest struct {
	UserID                 int64    `json:"userId"`
	GracePeriodMinutes     *int     `json:"gracePeriodMinutes,omitempty"`
	PenaltyFee             *float64 `json:"penaltyFee,omitempty"`
	MaxDurationMinutes     *int     `json:"maxDurationMinutes,omitempty"`
	FreeCancelHoursBefore  *int     `json:"freeCancelHoursBefore,omitempty"`
	AutoCancelAfterMinutes *int     `json:"autoCancelAfterMinutes,omitempty"`
	HoldTTLMinutes         *int     `json:"holdTtlMinutes,omitempty"`
	SlotIntervalMinutes    *int     `json:"slotIntervalMinutes,omitempty"`
}

// ApplyTo накладывает изменения из request на конфигурацию
func (r *UpdatePolicyRequest) ApplyTo(cfg *domain.PolicyConfig) {
	if r.GracePeriodMinutes != nil {
		cfg.GracePeriodMinutes = *r.GracePeriodMinutes
	}
	if r.PenaltyFee != nil {
		cfg.PenaltyFee = *r.PenaltyFee
	}
	if r.MaxDurationMinutes != nil {
		cfg.MaxDurationMinutes = *r.MaxDurationMinutes
	}
	if r.FreeCancelHoursBefore != nil {
		cfg.FreeCancelHoursBefore = *r.FreeCancelHoursBefore
	}
	if r.AutoCancelAfterMinutes != nil {
		cfg.AutoCancelAfterMinutes = *r.AutoCancelAfterMinutes
	}
	if r.HoldTTLMinutes != nil {
		cfg.HoldTTLMinutes = *r.HoldTTLMinutes
	}
	if r.SlotIntervalMinutes != nil {
		cfg.SlotIntervalMinutes = *r.SlotIntervalMinutes
	}
}

// Response модели

// PolicyResponse ответ с правилами бронирования ресторана
type PolicyResponse struct {
	VenueID                int64      `json:"venueId"`
	GracePeriodMinutes     int        `json:"gracePeriodMinutes"`
	PenaltyFee             float64    `json:"penaltyFee"`
	MaxDurationMinutes     int        `json:"maxDurationMinutes"`
	FreeCancelHoursBefore  int        `json:"freeCancelHoursBefore"`
	AutoCancelAfterMinutes int        `json:"autoCancelAfterMinutes"`
	HoldTTLMinutes         int        `json:"holdTtlMinutes"`
	SlotIntervalMinutes    int        `json:"slotIntervalMinutes"`
	IsDefault              bool       `json:"isDefault"` // true, если у ресторана нет собственной конфигурации
	UpdatedAt              *time.Time `json:"updatedAt,omitempty"`
}

// Методы конвертации

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(cfg *domain.PolicyConfig, isDefault bool) *PolicyResponse {
	if cfg == nil {
		return nil
	}

	resp := &PolicyResponse{
		VenueID:                cfg.VenueID,
		GracePeriodMinutes:     cfg.GracePeriodMinutes,
		PenaltyFee:             cfg.PenaltyFee,
		MaxDurationMinutes:     cfg.MaxDurationMinutes,
		FreeCancelHoursBefore:  cfg.FreeCancelHoursBefore,
		AutoCancelAfterMinutes: cfg.AutoCancelAfterMinutes,
		HoldTTLMinutes:         cfg.HoldTTLMinutes,
		SlotIntervalMinutes:    cfg.SlotIntervalMinutes,
		IsDefault:              isDefault,
	}

	if !isDefault {
		updatedAt := cfg.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}
