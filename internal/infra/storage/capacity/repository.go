package capacity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/dbmetrics"
	"github.com/tablehub/reservation-service/pkg/psqlbuilder"
)

// Entry строка capacity ledger для одного ключа (venue, date, time, tableType)
type Entry struct {
	Remaining int
	Total     int
	Frozen    bool
}

// Repository репозиторий capacity ledger
//
// Списание и возврат реализованы условными UPDATE: атомарность строки в
// postgres гарантирует сериализуемость конкурентных операций по одному
// ключу - из двух одновременных списаний последнего места пройдет ровно одно.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория capacity ledger
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Ensure лениво создает запись ledger для ключа слота с исходным total
// Существующую запись не трогает
func (r *Repository) Ensure(ctx context.Context, slot domain.Slot, total int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("capacity_entries").
		Columns("venue_id", "slot_date", "start_time", "table_type", "remaining", "total").
		Values(slot.VenueID, slot.Date, slot.StartTime, int(slot.TableType), total, total).
		Suffix("ON CONFLICT (venue_id, slot_date, start_time, table_type) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Ensure - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Ensure - execute insert: %w", ErrExecQuery, err)
	}
	return nil
}

// Reserve атомарно списывает quantity мест с ключа слота
// Ноль затронутых строк означает нехватку мест, заморозку или отсутствие записи
func (r *Repository) Reserve(ctx context.Context, slot domain.Slot, quantity int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("capacity_entries").
		Set("remaining", squirrel.Expr("remaining - ?", quantity)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(slotKeyEq(slot)).
		Where(squirrel.Expr("NOT frozen")).
		Where(squirrel.GtOrEq{"remaining": quantity}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reserve - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reserve - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reserve - rows affected: %w", ErrExecQuery, err)
	}
	if affected > 0 {
		return nil
	}

	return r.classifyFailure(ctx, slot, ErrInsufficientCapacity)
}

// Release атомарно возвращает quantity мест на ключ слота
// Возврат сверх total не выполняется: это повреждение ledger, не обычный случай
func (r *Repository) Release(ctx context.Context, slot domain.Slot, quantity int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("capacity_entries").
		Set("remaining", squirrel.Expr("remaining + ?", quantity)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(slotKeyEq(slot)).
		Where(squirrel.Expr("NOT frozen")).
		Where(squirrel.Expr("remaining + ? <= total", quantity)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - rows affected: %w", ErrExecQuery, err)
	}
	if affected > 0 {
		return nil
	}

	return r.classifyFailure(ctx, slot, ErrWouldExceedTotal)
}

// Freeze замораживает ключ слота: все дальнейшие Reserve/Release отклоняются
// до ручного разбирательства
func (r *Repository) Freeze(ctx context.Context, slot domain.Slot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("capacity_entries").
		Set("frozen", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(slotKeyEq(slot)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Freeze - build update query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Freeze - execute update: %w", ErrExecQuery, err)
	}
	return nil
}

// Get возвращает текущее состояние ключа слота
func (r *Repository) Get(ctx context.Context, slot domain.Slot) (*Entry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("remaining", "total", "frozen").
		From("capacity_entries").
		Where(slotKeyEq(slot)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %w", ErrBuildQuery, err)
	}

	var entry Entry
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.Remaining, &entry.Total, &entry.Frozen)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan entry: %w", ErrScanRow, err)
	}

	return &entry, nil
}

// classifyFailure уточняет причину нулевого числа затронутых строк
func (r *Repository) classifyFailure(ctx context.Context, slot domain.Slot, capacityErr error) error {
	entry, err := r.Get(ctx, slot)
	if err != nil {
		return err
	}
	if entry.Frozen {
		return ErrEntryFrozen
	}
	return capacityErr
}

func slotKeyEq(slot domain.Slot) squirrel.Eq {
	return squirrel.Eq{
		"venue_id":   slot.VenueID,
		"slot_date":  slot.Date,
		"start_time": slot.StartTime,
		"table_type": int(slot.TableType),
	}
}
