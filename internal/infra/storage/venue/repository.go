package venue

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/dbmetrics"
	"github.com/tablehub/reservation-service/pkg/psqlbuilder"
)

// Repository репозиторий для работы с ресторанами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ресторанов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает ресторан вместе с количеством столиков каждого типа
func (r *Repository) Create(ctx context.Context, v *domain.Venue) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("venues").
		Columns("name", "address", "cuisine", "open_time", "close_time", "manager_ids").
		Values(v.Name, v.Address, v.Cuisine, v.OpenTime, v.CloseTime, pq.Array(v.ManagerIDs)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&v.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	if err := r.replaceTables(ctx, v.ID, v.Tables); err != nil {
		return nil, err
	}

	return v, nil
}

// Update обновляет ресторан и состав столиков
func (r *Repository) Update(ctx context.Context, v *domain.Venue) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("venues").
		Set("name", v.Name).
		Set("address", v.Address).
		Set("cuisine", v.Cuisine).
		Set("open_time", v.OpenTime).
		Set("close_time", v.CloseTime).
		Set("manager_ids", pq.Array(v.ManagerIDs)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": v.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - rows affected: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrVenueNotFound
	}

	return r.replaceTables(ctx, v.ID, v.Tables)
}

// GetByID получает ресторан по ID вместе со столиками
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "name", "address", "cuisine", "open_time", "close_time", "manager_ids", "created_at", "updated_at",
	).
		From("venues").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	v, err := scanVenue(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan venue: %w", ErrScanRow, err)
	}

	tables, err := r.getTables(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Tables = tables

	return v, nil
}

// List возвращает все рестораны платформы (без столиков)
func (r *Repository) List(ctx context.Context) ([]*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "name", "address", "cuisine", "open_time", "close_time", "manager_ids", "created_at", "updated_at",
	).
		From("venues").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan venue row: %w", ErrScanRow, err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - iterate rows: %w", ErrScanRow, err)
	}

	return venues, nil
}

func (r *Repository) getTables(ctx context.Context, venueID int64) ([]domain.TableTypeQuantity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("table_type", "quantity").
		From("venue_table_types").
		Where(squirrel.Eq{"venue_id": venueID}).
		OrderBy("table_type ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getTables - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getTables - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	tables := make([]domain.TableTypeQuantity, 0)
	for rows.Next() {
		var tableType, quantity int
		if err := rows.Scan(&tableType, &quantity); err != nil {
			return nil, fmt.Errorf("%w: getTables - scan row: %w", ErrScanRow, err)
		}
		tables = append(tables, domain.TableTypeQuantity{
			TableType: domain.TableType(tableType),
			Quantity:  quantity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getTables - iterate rows: %w", ErrScanRow, err)
	}

	return tables, nil
}

func (r *Repository) replaceTables(ctx context.Context, venueID int64, tables []domain.TableTypeQuantity) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("venue_table_types").
		Where(squirrel.Eq{"venue_id": venueID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceTables - build delete query: %w", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: replaceTables - execute delete: %w", ErrExecQuery, err)
	}

	if len(tables) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("venue_table_types").
		Columns("venue_id", "table_type", "quantity")
	for _, tq := range tables {
		insertBuilder = insertBuilder.Values(venueID, int(tq.TableType), tq.Quantity)
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceTables - build insert query: %w", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: replaceTables - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVenue(row rowScanner) (*domain.Venue, error) {
	var (
		v          domain.Venue
		managerIDs pq.Int64Array
		createdAt  sql.NullTime
		updatedAt  sql.NullTime
	)

	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Address,
		&v.Cuisine,
		&v.OpenTime,
		&v.CloseTime,
		&managerIDs,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.ManagerIDs = []int64(managerIDs)
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	return &v, nil
}
