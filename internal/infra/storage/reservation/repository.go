package reservation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/dbmetrics"
	"github.com/tablehub/reservation-service/pkg/psqlbuilder"
)

// reservationColumns полный список колонок таблицы reservations
var reservationColumns = []string{
	"id",
	"venue_id",
	"customer_id",
	"reservation_date",
	"start_time",
	"duration_minutes",
	"table_type",
	"party_size",
	"status",
	"grace_period_minutes",
	"penalty_fee",
	"max_duration_minutes",
	"free_cancel_hours_before",
	"auto_cancel_after_minutes",
	"hold_ttl_minutes",
	"hold_expires_at",
	"special_instructions",
	"cancellation_reason",
	"cancelled_by",
	"penalty_charged",
	"cancelled_at",
	"checked_in_at",
	"completed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её.
// Создание всегда должно идти в одной транзакции со списанием места
// в capacity ledger - иначе возможна потеря места при сбое между шагами.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"id",
			"venue_id",
			"customer_id",
			"reservation_date",
			"start_time",
			"duration_minutes",
			"table_type",
			"party_size",
			"status",
			"grace_period_minutes",
			"penalty_fee",
			"max_duration_minutes",
			"free_cancel_hours_before",
			"auto_cancel_after_minutes",
			"hold_ttl_minutes",
			"hold_expires_at",
			"special_instructions",
		).
		Values(
			res.ID,
			res.VenueID,
			res.CustomerID,
			res.Date,
			res.StartTime,
			res.DurationMinutes,
			int(res.TableType),
			res.PartySize,
			res.Status,
			res.Policy.GracePeriodMinutes,
			res.Policy.PenaltyFee,
			res.Policy.MaxDurationMinutes,
			res.Policy.FreeCancelHoursBefore,
			res.Policy.AutoCancelAfterMinutes,
			res.Policy.HoldTTLMinutes,
			res.HoldExpiresAt,
			res.SpecialInstructions,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// GetByCustomerID получает список бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("reservation_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetByVenueWithFilter получает бронирования ресторана с гибкой фильтрацией
// Внутри транзакции для выборки на конкретную дату добавляет FOR UPDATE -
// блокировка нужна при проверке доступности слота перед созданием брони
func (r *Repository) GetByVenueWithFilter(ctx context.Context, filter domain.VenueReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"venue_id": filter.VenueID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"reservation_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"reservation_date": *filter.EndDate})
	}
	if filter.TableType != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"table_type": int(*filter.TableType)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactive := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactive[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactive})
	}

	singleDate := filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate)
	if singleDate {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("reservation_date DESC, start_time DESC")
	}

	if dbmetrics.IsInTransaction(ctx) && singleDate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueWithFilter - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateStatusGuarded выполняет guarded-переход статуса: строка обновляется
// только если текущий статус равен from. Ноль затронутых строк означает
// проигранную гонку (ErrStatusConflict) или отсутствие брони (ErrReservationNotFound).
// Опциональные поля перехода передаются через extra.
func (r *Repository) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus, extra map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("reservations").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from})

	for column, value := range extra {
		updateBuilder = updateBuilder.Set(column, value)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatusGuarded - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatusGuarded - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatusGuarded - rows affected: %w", ErrExecQuery, err)
	}
	if affected > 0 {
		return nil
	}

	// Различаем "нет такой брони" и "статус уже другой"
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrReservationNotFound
	}
	return ErrStatusConflict
}

// ListExpiredHolds возвращает held-бронирования с истекшим hold-дедлайном
func (r *Repository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"status": domain.StatusHeld}).
		Where(squirrel.Lt{"hold_expires_at": now}).
		OrderBy("hold_expires_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredHolds - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredHolds - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListNoShowCandidates возвращает confirmed-бронирования, прошедшие порог
// авто-перевода в no-show (start + auto_cancel_after_minutes < now)
func (r *Repository) ListNoShowCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Expr(
			"reservation_date + start_time + make_interval(mins => auto_cancel_after_minutes) < ?",
			now,
		)).
		OrderBy("reservation_date ASC, start_time ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListNoShowCandidates - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListNoShowCandidates - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

func (r *Repository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: exists - build select query: %w", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: exists - scan: %w", ErrScanRow, err)
	}
	return true, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res       domain.Reservation
		tableType int
		cancelled sql.NullString
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.VenueID,
		&res.CustomerID,
		&res.Date,
		&res.StartTime,
		&res.DurationMinutes,
		&tableType,
		&res.PartySize,
		&res.Status,
		&res.Policy.GracePeriodMinutes,
		&res.Policy.PenaltyFee,
		&res.Policy.MaxDurationMinutes,
		&res.Policy.FreeCancelHoursBefore,
		&res.Policy.AutoCancelAfterMinutes,
		&res.Policy.HoldTTLMinutes,
		&res.HoldExpiresAt,
		&res.SpecialInstructions,
		&res.CancellationReason,
		&cancelled,
		&res.PenaltyCharged,
		&res.CancelledAt,
		&res.CheckedInAt,
		&res.CompletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.TableType = domain.TableType(tableType)
	if cancelled.Valid {
		by := domain.CancelledBy(cancelled.String)
		res.CancelledBy = &by
	}
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan reservation row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate reservation rows: %w", ErrScanRow, err)
	}

	return reservations, nil
}
