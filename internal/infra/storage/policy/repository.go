package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/dbmetrics"
	"github.com/tablehub/reservation-service/pkg/psqlbuilder"
)

var policyColumns = []string{
	"id",
	"venue_id",
	"grace_period_minutes",
	"penalty_fee",
	"max_duration_minutes",
	"free_cancel_hours_before",
	"auto_cancel_after_minutes",
	"hold_ttl_minutes",
	"slot_interval_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий конфигураций правил бронирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByVenueID получает конфигурацию правил ресторана
func (r *Repository) GetByVenueID(ctx context.Context, venueID int64) (*domain.PolicyConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("policy_configs").
		Where(squirrel.Eq{"venue_id": venueID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueID - build select query: %w", ErrBuildQuery, err)
	}

	cfg, err := scanPolicy(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueID - scan policy: %w", ErrScanRow, err)
	}

	return cfg, nil
}

// Upsert создает или обновляет конфигурацию правил ресторана
// Снимок правил на существующих бронированиях при этом не меняется
func (r *Repository) Upsert(ctx context.Context, cfg *domain.PolicyConfig) (*domain.PolicyConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("policy_configs").
		Columns(
			"venue_id",
			"grace_period_minutes",
			"penalty_fee",
			"max_duration_minutes",
			"free_cancel_hours_before",
			"auto_cancel_after_minutes",
			"hold_ttl_minutes",
			"slot_interval_minutes",
		).
		Values(
			cfg.VenueID,
			cfg.GracePeriodMinutes,
			cfg.PenaltyFee,
			cfg.MaxDurationMinutes,
			cfg.FreeCancelHoursBefore,
			cfg.AutoCancelAfterMinutes,
			cfg.HoldTTLMinutes,
			cfg.SlotIntervalMinutes,
		).
		Suffix(`ON CONFLICT (venue_id) DO UPDATE SET
			grace_period_minutes = EXCLUDED.grace_period_minutes,
			penalty_fee = EXCLUDED.penalty_fee,
			max_duration_minutes = EXCLUDED.max_duration_minutes,
			free_cancel_hours_before = EXCLUDED.free_cancel_hours_before,
			auto_cancel_after_minutes = EXCLUDED.auto_cancel_after_minutes,
			hold_ttl_minutes = EXCLUDED.hold_ttl_minutes,
			slot_interval_minutes = EXCLUDED.slot_interval_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&cfg.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return cfg, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (*domain.PolicyConfig, error) {
	var (
		cfg       domain.PolicyConfig
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&cfg.ID,
		&cfg.VenueID,
		&cfg.GracePeriodMinutes,
		&cfg.PenaltyFee,
		&cfg.MaxDurationMinutes,
		&cfg.FreeCancelHoursBefore,
		&cfg.AutoCancelAfterMinutes,
		&cfg.HoldTTLMinutes,
		&cfg.SlotIntervalMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}
